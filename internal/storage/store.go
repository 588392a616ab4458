package storage

import (
	"context"

	"mixnet/internal/model"
)

// Store persists policy checkpoints for later reconstruction.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, id string) (model.Checkpoint, bool, error)
	ListCheckpoints(ctx context.Context) ([]model.CheckpointInfo, error)
	DeleteCheckpoint(ctx context.Context, id string) error
}
