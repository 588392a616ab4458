package policy

import (
	"math/rand"

	"mixnet/internal/nn"
)

// GatingNetwork maps the concatenated input to a probability simplex over
// experts. Rows of its output are non-negative and sum to 1 regardless of
// input magnitude.
type GatingNetwork struct {
	numExperts int
	hidden     int
	activation string

	linear1 *nn.AffineMap
	linear2 *nn.AffineMap // nil for the single-layer variant
}

func NewLinearGatingNetwork(dimIn, numExperts int, rng *rand.Rand) (*GatingNetwork, error) {
	linear, err := nn.NewAffineMap(dimIn, numExperts)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear.Randomize(rng)
	}
	return &GatingNetwork{numExperts: numExperts, linear1: linear}, nil
}

// NewNonlinearGatingNetwork inserts a bounded hidden layer of width
// (dimIn+numExperts)/2 before the simplex normalization.
func NewNonlinearGatingNetwork(dimIn, numExperts int, activation string, rng *rand.Rand) (*GatingNetwork, error) {
	hidden := (dimIn + numExperts) / 2
	linear1, err := nn.NewAffineMap(dimIn, hidden)
	if err != nil {
		return nil, err
	}
	linear2, err := nn.NewAffineMap(hidden, numExperts)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear1.Randomize(rng)
		linear2.Randomize(rng)
	}
	return &GatingNetwork{
		numExperts: numExperts,
		hidden:     hidden,
		activation: activation,
		linear1:    linear1,
		linear2:    linear2,
	}, nil
}

func (g *GatingNetwork) NumExperts() int { return g.numExperts }
func (g *GatingNetwork) HiddenDim() int  { return g.hidden }

func (g *GatingNetwork) Apply(input nn.Matrix) (nn.Matrix, error) {
	z, err := g.linear1.Apply(input)
	if err != nil {
		return nn.Matrix{}, err
	}
	if g.linear2 != nil {
		h, err := nn.Activate(g.activation, z)
		if err != nil {
			return nn.Matrix{}, err
		}
		z, err = g.linear2.Apply(h)
		if err != nil {
			return nn.Matrix{}, err
		}
	}
	return nn.SoftmaxRows(z), nil
}

func (g *GatingNetwork) affineLayers() []namedLayer {
	if g.linear2 == nil {
		return []namedLayer{{"gating.linear", g.linear1}}
	}
	return []namedLayer{
		{"gating.linear1", g.linear1},
		{"gating.linear2", g.linear2},
	}
}
