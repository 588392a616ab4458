package nn

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrInvalidDimension = errors.New("invalid dimension")
)

// Matrix is a dense row-major batch of samples: Rows samples, Cols features.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

func NewMatrix(rows, cols int, data []float64) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("%w: rows=%d cols=%d", ErrInvalidDimension, rows, cols)
	}
	if len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, len(data), rows*cols)
	}
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

// Zeros returns a rows x cols matrix of zeroes. Callers validate dimensions.
func Zeros(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// FromRows builds a matrix from per-sample feature slices. Every row must
// have the same length.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, fmt.Errorf("%w: at least one row is required", ErrInvalidDimension)
	}
	cols := len(rows[0])
	if cols == 0 {
		return Matrix{}, fmt.Errorf("%w: rows must not be empty", ErrInvalidDimension)
	}
	out := Zeros(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrShapeMismatch, i, len(row), cols)
		}
		copy(out.Data[i*cols:(i+1)*cols], row)
	}
	return out, nil
}

func (m Matrix) At(row, col int) float64 {
	return m.Data[row*m.Cols+col]
}

func (m Matrix) Set(row, col int, value float64) {
	m.Data[row*m.Cols+col] = value
}

// Row returns a view of one sample's features.
func (m Matrix) Row(row int) []float64 {
	return m.Data[row*m.Cols : (row+1)*m.Cols]
}

func (m Matrix) Clone() Matrix {
	out := Zeros(m.Rows, m.Cols)
	copy(out.Data, m.Data)
	return out
}

// ToRows converts the matrix back to per-sample slices.
func (m Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.Rows)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}

// ConcatColumns joins two batches along the feature axis. Both must carry
// the same number of samples.
func ConcatColumns(a, b Matrix) (Matrix, error) {
	if a.Rows != b.Rows {
		return Matrix{}, fmt.Errorf("%w: row counts differ: %d != %d", ErrShapeMismatch, a.Rows, b.Rows)
	}
	out := Zeros(a.Rows, a.Cols+b.Cols)
	for i := 0; i < a.Rows; i++ {
		copy(out.Data[i*out.Cols:], a.Row(i))
		copy(out.Data[i*out.Cols+a.Cols:], b.Row(i))
	}
	return out, nil
}
