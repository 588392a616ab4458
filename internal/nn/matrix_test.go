package nn

import (
	"errors"
	"testing"
)

func TestNewMatrixValidation(t *testing.T) {
	if _, err := NewMatrix(0, 2, nil); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected invalid dimension error, got %v", err)
	}
	if _, err := NewMatrix(2, 2, []float64{1, 2, 3}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch error, got %v", err)
	}
	m, err := NewMatrix(2, 2, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("new matrix: %v", err)
	}
	if m.At(1, 0) != 3 {
		t.Fatalf("unexpected element: %f", m.At(1, 0))
	}
}

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]float64{{1, 2}, {3, 4}, {5, 6}})
	if err != nil {
		t.Fatalf("from rows: %v", err)
	}
	if m.Rows != 3 || m.Cols != 2 {
		t.Fatalf("unexpected shape: %dx%d", m.Rows, m.Cols)
	}
	if m.At(2, 1) != 6 {
		t.Fatalf("unexpected element: %f", m.At(2, 1))
	}

	if _, err := FromRows(nil); !errors.Is(err, ErrInvalidDimension) {
		t.Fatalf("expected invalid dimension for empty input, got %v", err)
	}
	if _, err := FromRows([][]float64{{1, 2}, {3}}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch for ragged rows, got %v", err)
	}
}

func TestToRowsRoundTrip(t *testing.T) {
	rows := [][]float64{{1, 2, 3}, {4, 5, 6}}
	m, err := FromRows(rows)
	if err != nil {
		t.Fatalf("from rows: %v", err)
	}
	back := m.ToRows()
	if len(back) != 2 || back[1][2] != 6 {
		t.Fatalf("unexpected round trip: %v", back)
	}
	back[0][0] = 99
	if m.At(0, 0) == 99 {
		t.Fatal("to rows must copy, not alias")
	}
}

func TestConcatColumns(t *testing.T) {
	a, _ := FromRows([][]float64{{1}, {2}})
	b, _ := FromRows([][]float64{{10, 11}, {20, 21}})

	joined, err := ConcatColumns(a, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if joined.Rows != 2 || joined.Cols != 3 {
		t.Fatalf("unexpected concat shape: %dx%d", joined.Rows, joined.Cols)
	}
	if joined.At(1, 0) != 2 || joined.At(1, 2) != 21 {
		t.Fatalf("unexpected concat values: %v", joined.Data)
	}

	c, _ := FromRows([][]float64{{1, 2}})
	if _, err := ConcatColumns(a, c); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected row count mismatch, got %v", err)
	}
}
