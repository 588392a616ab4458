package policy

import (
	"math/rand"
	"sync"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

// NonlinearPolicy maps [t, x] through affine -> bounded activation ->
// affine. The hidden width is the integer mean of input and output widths.
type NonlinearPolicy struct {
	name       string
	dims       model.Dimensions
	hidden     int
	activation string

	mu      sync.RWMutex
	linear1 *nn.AffineMap
	linear2 *nn.AffineMap
}

func NewNonlinearPolicy(dims model.Dimensions, activation string, rng *rand.Rand) (*NonlinearPolicy, error) {
	if err := validateDims(dims, false); err != nil {
		return nil, err
	}
	activation, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	hidden := (dims.DimIn() + dims.DimU) / 2
	linear1, err := nn.NewAffineMap(dims.DimIn(), hidden)
	if err != nil {
		return nil, err
	}
	linear2, err := nn.NewAffineMap(hidden, dims.DimU)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear1.Randomize(rng)
		linear2.Randomize(rng)
	}
	return &NonlinearPolicy{
		name:       "NonlinearPolicy",
		dims:       dims,
		hidden:     hidden,
		activation: activation,
		linear1:    linear1,
		linear2:    linear2,
	}, nil
}

func (p *NonlinearPolicy) Name() string           { return p.name }
func (p *NonlinearPolicy) Variant() string        { return model.VariantNonlinear }
func (p *NonlinearPolicy) Dims() model.Dimensions { return p.dims }
func (p *NonlinearPolicy) HiddenDim() int         { return p.hidden }

func (p *NonlinearPolicy) Forward(t, x nn.Matrix) (nn.Matrix, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	input, err := concatInput(t, x, p.dims)
	if err != nil {
		return nn.Matrix{}, err
	}
	z, err := p.linear1.Apply(input)
	if err != nil {
		return nn.Matrix{}, err
	}
	h, err := nn.Activate(p.activation, z)
	if err != nil {
		return nn.Matrix{}, err
	}
	return p.linear2.Apply(h)
}

func (p *NonlinearPolicy) ExportParameters() model.PolicyParams {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return newParams(model.VariantNonlinear, p.dims, p.activation, []model.LayerParams{
		exportAffine("linear1", p.linear1),
		exportAffine("linear2", p.linear2),
	})
}

func (p *NonlinearPolicy) ImportParameters(params model.PolicyParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return importLayers(params, model.VariantNonlinear, p.dims, []*nn.AffineMap{p.linear1, p.linear2})
}
