package nn

import (
	"fmt"
	"math"
	"math/rand"
)

// AffineMap is one learnable layer computing W*v + b per sample. Parameters
// are plain slices; an external trainer replaces them in bulk between
// forward passes.
type AffineMap struct {
	In  int
	Out int

	// Weight is Out x In, row major. Bias has length Out.
	Weight []float64
	Bias   []float64
}

func NewAffineMap(in, out int) (*AffineMap, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("%w: affine map in=%d out=%d", ErrInvalidDimension, in, out)
	}
	return &AffineMap{
		In:     in,
		Out:    out,
		Weight: make([]float64, out*in),
		Bias:   make([]float64, out),
	}, nil
}

// Randomize draws weights and biases uniformly from [-1/sqrt(in), 1/sqrt(in)],
// the scale distilled parameters are trained at.
func (m *AffineMap) Randomize(rng *rand.Rand) {
	bound := 1.0 / math.Sqrt(float64(m.In))
	for i := range m.Weight {
		m.Weight[i] = (rng.Float64()*2 - 1) * bound
	}
	for i := range m.Bias {
		m.Bias[i] = (rng.Float64()*2 - 1) * bound
	}
}

// Apply computes the transform independently for every input row.
func (m *AffineMap) Apply(input Matrix) (Matrix, error) {
	if input.Cols != m.In {
		return Matrix{}, fmt.Errorf("%w: input has %d features, affine map expects %d", ErrShapeMismatch, input.Cols, m.In)
	}
	out := Zeros(input.Rows, m.Out)
	for r := 0; r < input.Rows; r++ {
		row := input.Row(r)
		for o := 0; o < m.Out; o++ {
			sum := m.Bias[o]
			weights := m.Weight[o*m.In : (o+1)*m.In]
			for i, v := range row {
				sum += weights[i] * v
			}
			out.Set(r, o, sum)
		}
	}
	return out, nil
}

// SetParameters replaces the layer's weight matrix and bias vector in full.
func (m *AffineMap) SetParameters(weight, bias []float64) error {
	if len(weight) != m.Out*m.In {
		return fmt.Errorf("%w: weight has %d values, want %d", ErrShapeMismatch, len(weight), m.Out*m.In)
	}
	if len(bias) != m.Out {
		return fmt.Errorf("%w: bias has %d values, want %d", ErrShapeMismatch, len(bias), m.Out)
	}
	copy(m.Weight, weight)
	copy(m.Bias, bias)
	return nil
}
