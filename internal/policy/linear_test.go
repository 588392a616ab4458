package policy

import (
	"errors"
	"math/rand"
	"testing"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

func mustRows(t *testing.T, rows [][]float64) nn.Matrix {
	t.Helper()
	m, err := nn.FromRows(rows)
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	return m
}

func TestLinearPolicyForwardShape(t *testing.T) {
	dims := model.Dimensions{DimT: 2, DimX: 3, DimU: 2}
	p, err := NewLinearPolicy(dims, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new linear policy: %v", err)
	}

	tb := mustRows(t, [][]float64{{0, 1}, {1, 0}, {0.5, 0.5}, {2, 2}})
	xb := mustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {0, 0, 0}})
	u, err := p.Forward(tb, xb)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if u.Rows != 4 || u.Cols != 2 {
		t.Fatalf("unexpected output shape: %dx%d", u.Rows, u.Cols)
	}
}

func TestLinearPolicyZeroParametersGiveZeroOutput(t *testing.T) {
	dims := model.Dimensions{DimT: 1, DimX: 2, DimU: 3}
	p, err := NewLinearPolicy(dims, nil)
	if err != nil {
		t.Fatalf("new linear policy: %v", err)
	}

	tb := mustRows(t, [][]float64{{5}, {-5}})
	xb := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	u, err := p.Forward(tb, xb)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for _, v := range u.Data {
		if v != 0 {
			t.Fatalf("zero-parameter policy must output zero, got %v", u.Data)
		}
	}
}

func TestLinearPolicyShapeErrors(t *testing.T) {
	dims := model.Dimensions{DimT: 1, DimX: 3, DimU: 2}
	p, err := NewLinearPolicy(dims, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("new linear policy: %v", err)
	}

	tb := mustRows(t, [][]float64{{1}, {2}})
	narrowX := mustRows(t, [][]float64{{1, 2}, {3, 4}})
	if _, err := p.Forward(tb, narrowX); !errors.Is(err, nn.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch for narrow x, got %v", err)
	}

	shortX := mustRows(t, [][]float64{{1, 2, 3}})
	if _, err := p.Forward(tb, shortX); !errors.Is(err, nn.ErrShapeMismatch) {
		t.Fatalf("expected row count mismatch, got %v", err)
	}
}

func TestLinearPolicyConstructionErrors(t *testing.T) {
	if _, err := NewLinearPolicy(model.Dimensions{DimT: 0, DimX: 1, DimU: 1}, nil); !errors.Is(err, nn.ErrInvalidDimension) {
		t.Fatalf("expected invalid dimension, got %v", err)
	}
	if _, err := NewLinearPolicy(model.Dimensions{DimT: 1, DimX: 1, DimU: -2}, nil); !errors.Is(err, nn.ErrInvalidDimension) {
		t.Fatalf("expected invalid dimension, got %v", err)
	}
}
