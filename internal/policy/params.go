package policy

import (
	"fmt"

	"mixnet/internal/model"
	"mixnet/internal/nn"
)

func newParams(variant string, dims model.Dimensions, activation string, layers []model.LayerParams) model.PolicyParams {
	return model.PolicyParams{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		Variant:    variant,
		Dims:       dims,
		Activation: activation,
		Layers:     layers,
	}
}

func exportAffine(name string, m *nn.AffineMap) model.LayerParams {
	return model.LayerParams{
		Name:   name,
		In:     m.In,
		Out:    m.Out,
		Weight: append([]float64(nil), m.Weight...),
		Bias:   append([]float64(nil), m.Bias...),
	}
}

// importLayers validates the whole blob before touching any layer, so a
// rejected import leaves the policy's parameters unchanged.
func importLayers(params model.PolicyParams, variant string, dims model.Dimensions, maps []*nn.AffineMap) error {
	if params.SchemaVersion != model.CurrentSchemaVersion || params.CodecVersion != model.CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrIncompatibleParams, params.SchemaVersion, params.CodecVersion)
	}
	if params.Variant != variant {
		return fmt.Errorf("%w: blob is for variant %q, policy is %q", ErrIncompatibleParams, params.Variant, variant)
	}
	if params.Dims != dims {
		return fmt.Errorf("%w: blob dims %+v, policy dims %+v", ErrIncompatibleParams, params.Dims, dims)
	}
	if len(params.Layers) != len(maps) {
		return fmt.Errorf("%w: blob has %d layers, policy has %d", ErrIncompatibleParams, len(params.Layers), len(maps))
	}
	for i, layer := range params.Layers {
		m := maps[i]
		if layer.In != m.In || layer.Out != m.Out {
			return fmt.Errorf("%w: layer %d (%s) is %dx%d, want %dx%d",
				nn.ErrShapeMismatch, i, layer.Name, layer.Out, layer.In, m.Out, m.In)
		}
		if len(layer.Weight) != m.Out*m.In {
			return fmt.Errorf("%w: layer %d (%s) weight has %d values, want %d",
				nn.ErrShapeMismatch, i, layer.Name, len(layer.Weight), m.Out*m.In)
		}
		if len(layer.Bias) != m.Out {
			return fmt.Errorf("%w: layer %d (%s) bias has %d values, want %d",
				nn.ErrShapeMismatch, i, layer.Name, len(layer.Bias), m.Out)
		}
	}
	for i, layer := range params.Layers {
		if err := maps[i].SetParameters(layer.Weight, layer.Bias); err != nil {
			return err
		}
	}
	return nil
}
