// Package policy implements the runtime inference side of a policy
// distillation pipeline: small parametric approximators mapping a
// generalized-time vector and a relative-state vector to a control input,
// optionally with per-expert mixture weights. Training lives elsewhere;
// this package only evaluates and transfers parameters.
package policy

import (
	"errors"
	"fmt"
	"math/rand"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

var (
	ErrUnknownVariant     = errors.New("unknown policy variant")
	ErrIncompatibleParams = errors.New("incompatible parameter blob")
)

// Policy is a constructed approximator ready for repeated forward calls.
// Forward is safe for concurrent use; ImportParameters takes exclusive
// access, so no in-flight forward pass observes a partial update.
type Policy interface {
	Name() string
	Variant() string
	Dims() model.Dimensions
	Forward(t, x nn.Matrix) (nn.Matrix, error)
	ExportParameters() model.PolicyParams
	ImportParameters(params model.PolicyParams) error
}

// MixturePolicy additionally exposes the gating weights of a forward pass.
type MixturePolicy interface {
	Policy
	ForwardMixture(t, x nn.Matrix) (u, p nn.Matrix, err error)
}

// New constructs a policy of the given variant with randomly initialized
// parameters. The activation names the hidden nonlinearity of the nonlinear
// variants; empty means tanh.
func New(variant string, dims model.Dimensions, activation string, rng *rand.Rand) (Policy, error) {
	switch variant {
	case model.VariantLinear:
		return NewLinearPolicy(dims, rng)
	case model.VariantNonlinear:
		return NewNonlinearPolicy(dims, activation, rng)
	case model.VariantMixtureLinear:
		return NewMixtureOfLinearExpertsPolicy(dims, rng)
	case model.VariantMixtureNonlinear:
		return NewMixtureOfNonlinearExpertsPolicy(dims, activation, rng)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
}

// FromParams rebuilds a policy from an exported parameter blob.
func FromParams(params model.PolicyParams) (Policy, error) {
	p, err := New(params.Variant, params.Dims, params.Activation, rand.New(rand.NewSource(0)))
	if err != nil {
		return nil, err
	}
	if err := p.ImportParameters(params); err != nil {
		return nil, err
	}
	return p, nil
}

func validateDims(dims model.Dimensions, mixture bool) error {
	if dims.DimT <= 0 || dims.DimX <= 0 || dims.DimU <= 0 {
		return fmt.Errorf("%w: dim_t=%d dim_x=%d dim_u=%d", nn.ErrInvalidDimension, dims.DimT, dims.DimX, dims.DimU)
	}
	if mixture && dims.NumExperts <= 0 {
		return fmt.Errorf("%w: num_experts=%d", nn.ErrInvalidDimension, dims.NumExperts)
	}
	return nil
}

func resolveActivation(name string) (string, error) {
	if name == "" {
		name = "tanh"
	}
	if _, err := nn.GetActivation(name); err != nil {
		return "", err
	}
	return name, nil
}

// concatInput validates the per-batch feature widths and joins [t, x] along
// the feature axis. Row count mismatches surface from ConcatColumns.
func concatInput(t, x nn.Matrix, dims model.Dimensions) (nn.Matrix, error) {
	if t.Cols != dims.DimT {
		return nn.Matrix{}, fmt.Errorf("%w: t has %d features, want %d", nn.ErrShapeMismatch, t.Cols, dims.DimT)
	}
	if x.Cols != dims.DimX {
		return nn.Matrix{}, fmt.Errorf("%w: x has %d features, want %d", nn.ErrShapeMismatch, x.Cols, dims.DimX)
	}
	return nn.ConcatColumns(t, x)
}
