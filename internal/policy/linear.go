package policy

import (
	"math/rand"
	"sync"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

// LinearPolicy maps the concatenated [t, x] input through one affine layer.
type LinearPolicy struct {
	name string
	dims model.Dimensions

	mu     sync.RWMutex
	linear *nn.AffineMap
}

func NewLinearPolicy(dims model.Dimensions, rng *rand.Rand) (*LinearPolicy, error) {
	if err := validateDims(dims, false); err != nil {
		return nil, err
	}
	linear, err := nn.NewAffineMap(dims.DimIn(), dims.DimU)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear.Randomize(rng)
	}
	return &LinearPolicy{name: "LinearPolicy", dims: dims, linear: linear}, nil
}

func (p *LinearPolicy) Name() string           { return p.name }
func (p *LinearPolicy) Variant() string        { return model.VariantLinear }
func (p *LinearPolicy) Dims() model.Dimensions { return p.dims }

func (p *LinearPolicy) Forward(t, x nn.Matrix) (nn.Matrix, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	input, err := concatInput(t, x, p.dims)
	if err != nil {
		return nn.Matrix{}, err
	}
	return p.linear.Apply(input)
}

func (p *LinearPolicy) ExportParameters() model.PolicyParams {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return newParams(model.VariantLinear, p.dims, "", []model.LayerParams{
		exportAffine("linear", p.linear),
	})
}

func (p *LinearPolicy) ImportParameters(params model.PolicyParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return importLayers(params, model.VariantLinear, p.dims, []*nn.AffineMap{p.linear})
}
