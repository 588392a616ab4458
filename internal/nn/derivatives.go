package nn

import (
	"fmt"
	"math"
)

// Derivative evaluates d/dx of a built-in activation. Exposed for the
// external trainer's gradient code; the inference path never calls it.
func Derivative(name string, x float64) (float64, error) {
	switch name {
	case "identity":
		return 1, nil
	case "relu":
		if x > 0 {
			return 1, nil
		}
		return 0, nil
	case "tanh":
		y := math.Tanh(x)
		return 1 - (y * y), nil
	case "sigmoid":
		s := 1 / (1 + math.Exp(-x))
		return s * (1 - s), nil
	default:
		return 0, fmt.Errorf("unsupported derivative: %s", name)
	}
}

// SoftmaxJacobian returns the Jacobian of softmax for one probability row:
// J[i][j] = p_i*(delta_ij - p_j).
func SoftmaxJacobian(probabilities []float64) [][]float64 {
	n := len(probabilities)
	jacobian := make([][]float64, n)
	for i := 0; i < n; i++ {
		jacobian[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				jacobian[i][j] = probabilities[i] * (1 - probabilities[j])
			} else {
				jacobian[i][j] = -probabilities[i] * probabilities[j]
			}
		}
	}
	return jacobian
}
