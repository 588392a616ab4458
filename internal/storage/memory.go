package storage

import (
	"context"
	"sort"
	"sync"

	"mixnet/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string]model.Checkpoint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints = make(map[string]model.Checkpoint)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.ID] = cloneCheckpoint(checkpoint)
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, id string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoint, ok := s.checkpoints[id]
	if !ok {
		return model.Checkpoint{}, false, nil
	}
	return cloneCheckpoint(checkpoint), true, nil
}

func (s *MemoryStore) ListCheckpoints(_ context.Context) ([]model.CheckpointInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CheckpointInfo, 0, len(s.checkpoints))
	for _, checkpoint := range s.checkpoints {
		payload, err := EncodeCheckpoint(checkpoint)
		if err != nil {
			return nil, err
		}
		out = append(out, model.CheckpointInfo{
			ID:           checkpoint.ID,
			Variant:      checkpoint.Params.Variant,
			CreatedAtUTC: checkpoint.CreatedAtUTC,
			SizeBytes:    int64(len(payload)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC != out[j].CreatedAtUTC {
			return out[i].CreatedAtUTC > out[j].CreatedAtUTC
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteCheckpoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, id)
	return nil
}

func cloneCheckpoint(c model.Checkpoint) model.Checkpoint {
	out := c
	out.Params.Layers = make([]model.LayerParams, len(c.Params.Layers))
	for i, layer := range c.Params.Layers {
		copied := layer
		copied.Weight = append([]float64(nil), layer.Weight...)
		copied.Bias = append([]float64(nil), layer.Bias...)
		out.Params.Layers[i] = copied
	}
	return out
}
