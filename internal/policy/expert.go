package policy

import (
	"fmt"
	"math/rand"

	"mixnet/internal/nn"
)

// Expert maps the concatenated input to one candidate control vector.
// The index is a stable identity used for parameter traversal and
// diagnostics; it never affects the computation.
type Expert interface {
	Index() int
	Name() string
	Apply(input nn.Matrix) (nn.Matrix, error)
	affineLayers() []namedLayer
}

type namedLayer struct {
	name  string
	layer *nn.AffineMap
}

// LinearExpert is a single affine candidate network.
type LinearExpert struct {
	index  int
	name   string
	linear *nn.AffineMap
}

func NewLinearExpert(index, dimIn, dimOut int, rng *rand.Rand) (*LinearExpert, error) {
	linear, err := nn.NewAffineMap(dimIn, dimOut)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear.Randomize(rng)
	}
	return &LinearExpert{
		index:  index,
		name:   fmt.Sprintf("LinearExpert%d", index),
		linear: linear,
	}, nil
}

func (e *LinearExpert) Index() int   { return e.index }
func (e *LinearExpert) Name() string { return e.name }

func (e *LinearExpert) Apply(input nn.Matrix) (nn.Matrix, error) {
	return e.linear.Apply(input)
}

func (e *LinearExpert) affineLayers() []namedLayer {
	return []namedLayer{{fmt.Sprintf("expert%d.linear", e.index), e.linear}}
}

// NonlinearExpert runs affine -> bounded activation -> affine with an
// explicitly supplied hidden width.
type NonlinearExpert struct {
	index      int
	name       string
	hidden     int
	activation string
	linear1    *nn.AffineMap
	linear2    *nn.AffineMap
}

func NewNonlinearExpert(index, dimIn, hidden, dimOut int, activation string, rng *rand.Rand) (*NonlinearExpert, error) {
	linear1, err := nn.NewAffineMap(dimIn, hidden)
	if err != nil {
		return nil, err
	}
	linear2, err := nn.NewAffineMap(hidden, dimOut)
	if err != nil {
		return nil, err
	}
	if rng != nil {
		linear1.Randomize(rng)
		linear2.Randomize(rng)
	}
	return &NonlinearExpert{
		index:      index,
		name:       fmt.Sprintf("NonlinearExpert%d", index),
		hidden:     hidden,
		activation: activation,
		linear1:    linear1,
		linear2:    linear2,
	}, nil
}

func (e *NonlinearExpert) Index() int     { return e.index }
func (e *NonlinearExpert) Name() string   { return e.name }
func (e *NonlinearExpert) HiddenDim() int { return e.hidden }

func (e *NonlinearExpert) Apply(input nn.Matrix) (nn.Matrix, error) {
	z, err := e.linear1.Apply(input)
	if err != nil {
		return nn.Matrix{}, err
	}
	h, err := nn.Activate(e.activation, z)
	if err != nil {
		return nn.Matrix{}, err
	}
	return e.linear2.Apply(h)
}

func (e *NonlinearExpert) affineLayers() []namedLayer {
	return []namedLayer{
		{fmt.Sprintf("expert%d.linear1", e.index), e.linear1},
		{fmt.Sprintf("expert%d.linear2", e.index), e.linear2},
	}
}
