// Package mixnet is the public facade: build control policies, evaluate
// input batches, and persist parameter checkpoints.
package mixnet

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"mixnet/internal/model"
	"mixnet/internal/nn"
	"mixnet/internal/policy"
	"mixnet/internal/storage"
)

const defaultDBPath = "mixnet.db"

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store       storage.Store
	initialized bool
}

type BuildRequest struct {
	CheckpointID string
	Variant      string
	DimT         int
	DimX         int
	DimU         int
	NumExperts   int
	Activation   string
	Seed         int64
}

type BuildSummary struct {
	CheckpointID string
	Name         string
	Variant      string
	Dims         model.Dimensions
	LayerCount   int
}

type EvalRequest struct {
	CheckpointID string
	T            [][]float64
	X            [][]float64
}

type EvalResult struct {
	U       [][]float64
	Weights [][]float64 // nil for the non-mixture variants
}

type ImportRequest struct {
	CheckpointID string
	Params       model.PolicyParams
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureInit(ctx)
}

// BuildPolicy constructs a randomly initialized policy without persisting
// it, for in-process use by a training collaborator.
func BuildPolicy(req BuildRequest) (policy.Policy, error) {
	variant := req.Variant
	if variant == "" {
		variant = model.VariantLinear
	}
	dims := model.Dimensions{
		DimT:       req.DimT,
		DimX:       req.DimX,
		DimU:       req.DimU,
		NumExperts: req.NumExperts,
	}
	return policy.New(variant, dims, req.Activation, rand.New(rand.NewSource(req.Seed)))
}

// Build constructs a policy and saves its initial checkpoint.
func (c *Client) Build(ctx context.Context, req BuildRequest) (BuildSummary, error) {
	p, err := BuildPolicy(req)
	if err != nil {
		return BuildSummary{}, err
	}
	id := req.CheckpointID
	if id == "" {
		id = uuid.NewString()
	}
	params := p.ExportParameters()
	if err := c.saveCheckpoint(ctx, id, params); err != nil {
		return BuildSummary{}, err
	}
	return BuildSummary{
		CheckpointID: id,
		Name:         p.Name(),
		Variant:      p.Variant(),
		Dims:         p.Dims(),
		LayerCount:   len(params.Layers),
	}, nil
}

// Eval loads a checkpoint, rebuilds its policy, and runs one forward pass.
func (c *Client) Eval(ctx context.Context, req EvalRequest) (EvalResult, error) {
	if req.CheckpointID == "" {
		return EvalResult{}, errors.New("eval requires a checkpoint id")
	}
	p, err := c.loadPolicy(ctx, req.CheckpointID)
	if err != nil {
		return EvalResult{}, err
	}

	t, err := nn.FromRows(req.T)
	if err != nil {
		return EvalResult{}, fmt.Errorf("t batch: %w", err)
	}
	x, err := nn.FromRows(req.X)
	if err != nil {
		return EvalResult{}, fmt.Errorf("x batch: %w", err)
	}

	if mp, ok := p.(policy.MixturePolicy); ok {
		u, weights, err := mp.ForwardMixture(t, x)
		if err != nil {
			return EvalResult{}, err
		}
		return EvalResult{U: u.ToRows(), Weights: weights.ToRows()}, nil
	}
	u, err := p.Forward(t, x)
	if err != nil {
		return EvalResult{}, err
	}
	return EvalResult{U: u.ToRows()}, nil
}

func (c *Client) Checkpoints(ctx context.Context) ([]model.CheckpointInfo, error) {
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	return c.store.ListCheckpoints(ctx)
}

// ExportParameters returns a checkpoint's parameter blob for the trainer.
func (c *Client) ExportParameters(ctx context.Context, checkpointID string) (model.PolicyParams, error) {
	if checkpointID == "" {
		return model.PolicyParams{}, errors.New("export requires a checkpoint id")
	}
	if err := c.ensureInit(ctx); err != nil {
		return model.PolicyParams{}, err
	}
	checkpoint, ok, err := c.store.GetCheckpoint(ctx, checkpointID)
	if err != nil {
		return model.PolicyParams{}, err
	}
	if !ok {
		return model.PolicyParams{}, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	return checkpoint.Params, nil
}

// ImportParameters validates a trainer-produced blob by rebuilding its
// policy, then persists it as a checkpoint.
func (c *Client) ImportParameters(ctx context.Context, req ImportRequest) (BuildSummary, error) {
	p, err := policy.FromParams(req.Params)
	if err != nil {
		return BuildSummary{}, err
	}
	id := req.CheckpointID
	if id == "" {
		id = uuid.NewString()
	}
	if err := c.saveCheckpoint(ctx, id, req.Params); err != nil {
		return BuildSummary{}, err
	}
	return BuildSummary{
		CheckpointID: id,
		Name:         p.Name(),
		Variant:      p.Variant(),
		Dims:         p.Dims(),
		LayerCount:   len(req.Params.Layers),
	}, nil
}

func (c *Client) DeleteCheckpoint(ctx context.Context, checkpointID string) error {
	if checkpointID == "" {
		return errors.New("delete requires a checkpoint id")
	}
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	return c.store.DeleteCheckpoint(ctx, checkpointID)
}

func (c *Client) loadPolicy(ctx context.Context, checkpointID string) (policy.Policy, error) {
	if err := c.ensureInit(ctx); err != nil {
		return nil, err
	}
	checkpoint, ok, err := c.store.GetCheckpoint(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	return policy.FromParams(checkpoint.Params)
}

func (c *Client) saveCheckpoint(ctx context.Context, id string, params model.PolicyParams) error {
	if err := c.ensureInit(ctx); err != nil {
		return err
	}
	return c.store.SaveCheckpoint(ctx, model.Checkpoint{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		ID:           id,
		Params:       params,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (c *Client) ensureInit(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}
