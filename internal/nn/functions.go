package nn

import (
	"fmt"
	"math"
)

// Tanh applies the bounded activation elementwise. Output is strictly
// within (-1, 1).
func Tanh(input Matrix) Matrix {
	out := Zeros(input.Rows, input.Cols)
	for i, v := range input.Data {
		out.Data[i] = math.Tanh(v)
	}
	return out
}

// Activate applies a registered activation elementwise.
func Activate(name string, input Matrix) (Matrix, error) {
	fn, err := GetActivation(name)
	if err != nil {
		return Matrix{}, err
	}
	out := Zeros(input.Rows, input.Cols)
	for i, v := range input.Data {
		out.Data[i] = fn(v)
	}
	return out, nil
}

// SoftmaxRows normalizes every row of logits onto the probability simplex.
// The row maximum is subtracted before exponentiating so rows stay valid
// distributions under extreme input magnitudes.
func SoftmaxRows(logits Matrix) Matrix {
	out := Zeros(logits.Rows, logits.Cols)
	for r := 0; r < logits.Rows; r++ {
		row := logits.Row(r)
		max := row[0]
		for _, v := range row[1:] {
			if v > max {
				max = v
			}
		}
		sum := 0.0
		outRow := out.Row(r)
		for i, v := range row {
			e := math.Exp(v - max)
			outRow[i] = e
			sum += e
		}
		for i := range outRow {
			outRow[i] /= sum
		}
	}
	return out
}

// Stack holds one candidate output per expert: Rows samples, Cols output
// features, Depth experts. Data is indexed row, then column, then expert.
type Stack struct {
	Rows  int
	Cols  int
	Depth int
	Data  []float64
}

func (s Stack) At(row, col, expert int) float64 {
	return s.Data[(row*s.Cols+col)*s.Depth+expert]
}

// StackCandidates places per-expert outputs into a candidate stack, ordered
// by position in the slice. All candidates must share one shape.
func StackCandidates(candidates []Matrix) (Stack, error) {
	if len(candidates) == 0 {
		return Stack{}, fmt.Errorf("%w: at least one candidate is required", ErrInvalidDimension)
	}
	rows, cols := candidates[0].Rows, candidates[0].Cols
	stack := Stack{
		Rows:  rows,
		Cols:  cols,
		Depth: len(candidates),
		Data:  make([]float64, rows*cols*len(candidates)),
	}
	for e, candidate := range candidates {
		if candidate.Rows != rows || candidate.Cols != cols {
			return Stack{}, fmt.Errorf("%w: candidate %d is %dx%d, want %dx%d",
				ErrShapeMismatch, e, candidate.Rows, candidate.Cols, rows, cols)
		}
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				stack.Data[(r*cols+c)*stack.Depth+e] = candidate.At(r, c)
			}
		}
	}
	return stack, nil
}

// Combine reduces a candidate stack to one output per sample: a batched
// matrix-vector product where each sample's matrix has expert candidates as
// columns and the vector is that sample's gating weights. Summation runs in
// expert order so results are reproducible.
func Combine(candidates Stack, weights Matrix) (Matrix, error) {
	if weights.Rows != candidates.Rows {
		return Matrix{}, fmt.Errorf("%w: weight rows %d != candidate rows %d", ErrShapeMismatch, weights.Rows, candidates.Rows)
	}
	if weights.Cols != candidates.Depth {
		return Matrix{}, fmt.Errorf("%w: %d weights per sample, %d experts", ErrShapeMismatch, weights.Cols, candidates.Depth)
	}
	out := Zeros(candidates.Rows, candidates.Cols)
	for r := 0; r < candidates.Rows; r++ {
		weightRow := weights.Row(r)
		for c := 0; c < candidates.Cols; c++ {
			sum := 0.0
			base := (r*candidates.Cols + c) * candidates.Depth
			for e := 0; e < candidates.Depth; e++ {
				sum += weightRow[e] * candidates.Data[base+e]
			}
			out.Set(r, c, sum)
		}
	}
	return out, nil
}
