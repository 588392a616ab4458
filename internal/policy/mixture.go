package policy

import (
	"math/rand"
	"sync"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

// MixtureOfExpertsPolicy composes a gating network with a fixed array of
// experts, indexed 0..NumExperts-1. Experts evaluate concurrently; their
// candidates are placed into the stack by index so the combined output is
// reproducible.
type MixtureOfExpertsPolicy struct {
	name       string
	variant    string
	dims       model.Dimensions
	activation string

	mu      sync.RWMutex
	gating  *GatingNetwork
	experts []Expert
}

func NewMixtureOfLinearExpertsPolicy(dims model.Dimensions, rng *rand.Rand) (*MixtureOfExpertsPolicy, error) {
	if err := validateDims(dims, true); err != nil {
		return nil, err
	}
	gating, err := NewLinearGatingNetwork(dims.DimIn(), dims.NumExperts, rng)
	if err != nil {
		return nil, err
	}
	experts := make([]Expert, dims.NumExperts)
	for i := range experts {
		expert, err := NewLinearExpert(i, dims.DimIn(), dims.DimU, rng)
		if err != nil {
			return nil, err
		}
		experts[i] = expert
	}
	return &MixtureOfExpertsPolicy{
		name:    "MixtureOfLinearExpertsPolicy",
		variant: model.VariantMixtureLinear,
		dims:    dims,
		gating:  gating,
		experts: experts,
	}, nil
}

// NewMixtureOfNonlinearExpertsPolicy builds nonlinear experts of hidden
// width (dimIn+dimU)/2 and a nonlinear gate of hidden width
// (dimIn+numExperts)/2. The two widths are generally different.
func NewMixtureOfNonlinearExpertsPolicy(dims model.Dimensions, activation string, rng *rand.Rand) (*MixtureOfExpertsPolicy, error) {
	if err := validateDims(dims, true); err != nil {
		return nil, err
	}
	activation, err := resolveActivation(activation)
	if err != nil {
		return nil, err
	}
	gating, err := NewNonlinearGatingNetwork(dims.DimIn(), dims.NumExperts, activation, rng)
	if err != nil {
		return nil, err
	}
	hiddenExpert := (dims.DimIn() + dims.DimU) / 2
	experts := make([]Expert, dims.NumExperts)
	for i := range experts {
		expert, err := NewNonlinearExpert(i, dims.DimIn(), hiddenExpert, dims.DimU, activation, rng)
		if err != nil {
			return nil, err
		}
		experts[i] = expert
	}
	return &MixtureOfExpertsPolicy{
		name:       "MixtureOfNonlinearExpertsPolicy",
		variant:    model.VariantMixtureNonlinear,
		dims:       dims,
		activation: activation,
		gating:     gating,
		experts:    experts,
	}, nil
}

func (p *MixtureOfExpertsPolicy) Name() string           { return p.name }
func (p *MixtureOfExpertsPolicy) Variant() string        { return p.variant }
func (p *MixtureOfExpertsPolicy) Dims() model.Dimensions { return p.dims }
func (p *MixtureOfExpertsPolicy) Gating() *GatingNetwork { return p.gating }
func (p *MixtureOfExpertsPolicy) Experts() []Expert      { return p.experts }

func (p *MixtureOfExpertsPolicy) Forward(t, x nn.Matrix) (nn.Matrix, error) {
	u, _, err := p.ForwardMixture(t, x)
	return u, err
}

// ForwardMixture returns the combined control output and the gating
// weights, so callers can inspect which experts dominate.
func (p *MixtureOfExpertsPolicy) ForwardMixture(t, x nn.Matrix) (nn.Matrix, nn.Matrix, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	input, err := concatInput(t, x, p.dims)
	if err != nil {
		return nn.Matrix{}, nn.Matrix{}, err
	}
	weights, err := p.gating.Apply(input)
	if err != nil {
		return nn.Matrix{}, nn.Matrix{}, err
	}

	candidates := make([]nn.Matrix, len(p.experts))
	errs := make([]error, len(p.experts))
	var wg sync.WaitGroup
	for i, expert := range p.experts {
		wg.Add(1)
		go func(i int, expert Expert) {
			defer wg.Done()
			candidates[i], errs[i] = expert.Apply(input)
		}(i, expert)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nn.Matrix{}, nn.Matrix{}, err
		}
	}

	stack, err := nn.StackCandidates(candidates)
	if err != nil {
		return nn.Matrix{}, nn.Matrix{}, err
	}
	u, err := nn.Combine(stack, weights)
	if err != nil {
		return nn.Matrix{}, nn.Matrix{}, err
	}
	return u, weights, nil
}

func (p *MixtureOfExpertsPolicy) ExportParameters() model.PolicyParams {
	p.mu.RLock()
	defer p.mu.RUnlock()

	layers := make([]model.LayerParams, 0, 2+2*len(p.experts))
	for _, ref := range p.orderedLayers() {
		layers = append(layers, exportAffine(ref.name, ref.layer))
	}
	return newParams(p.variant, p.dims, p.activation, layers)
}

func (p *MixtureOfExpertsPolicy) ImportParameters(params model.PolicyParams) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	refs := p.orderedLayers()
	maps := make([]*nn.AffineMap, len(refs))
	for i, ref := range refs {
		maps[i] = ref.layer
	}
	return importLayers(params, p.variant, p.dims, maps)
}

// orderedLayers fixes the parameter traversal order: gating network first,
// then experts by ascending index.
func (p *MixtureOfExpertsPolicy) orderedLayers() []namedLayer {
	refs := p.gating.affineLayers()
	for _, expert := range p.experts {
		refs = append(refs, expert.affineLayers()...)
	}
	return refs
}
