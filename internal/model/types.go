package model

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Policy variants form a closed set; the variant string is the tag used in
// checkpoints and by the policy builder.
const (
	VariantLinear           = "linear"
	VariantNonlinear        = "nonlinear"
	VariantMixtureLinear    = "mixture_linear"
	VariantMixtureNonlinear = "mixture_nonlinear"
)

// Dimensions fixes a policy's input/output widths at construction.
// NumExperts is zero for the non-mixture variants.
type Dimensions struct {
	DimT       int `json:"dim_t"`
	DimX       int `json:"dim_x"`
	DimU       int `json:"dim_u"`
	NumExperts int `json:"num_experts,omitempty"`
}

// DimIn is the concatenated feature width fed to every sub-network.
func (d Dimensions) DimIn() int {
	return d.DimT + d.DimX
}

// LayerParams holds one affine layer's weight matrix (Out x In, row major)
// and bias vector (Out). Name is diagnostic metadata only.
type LayerParams struct {
	Name   string    `json:"name"`
	In     int       `json:"in"`
	Out    int       `json:"out"`
	Weight []float64 `json:"weight"`
	Bias   []float64 `json:"bias"`
}

// PolicyParams is the parameter blob exchanged with an external trainer.
// Layers follow a fixed traversal order: gating network layers first, then
// experts by ascending index, each net listed first layer to last.
type PolicyParams struct {
	VersionedRecord
	Variant    string        `json:"variant"`
	Dims       Dimensions    `json:"dims"`
	Activation string        `json:"activation,omitempty"`
	Layers     []LayerParams `json:"layers"`
}

// Checkpoint is a persisted snapshot of a policy's parameters.
type Checkpoint struct {
	VersionedRecord
	ID           string       `json:"id"`
	Params       PolicyParams `json:"params"`
	CreatedAtUTC string       `json:"created_at_utc"`
}

// CheckpointInfo is the listing view of a stored checkpoint.
type CheckpointInfo struct {
	ID           string `json:"id"`
	Variant      string `json:"variant"`
	CreatedAtUTC string `json:"created_at_utc"`
	SizeBytes    int64  `json:"size_bytes"`
}
