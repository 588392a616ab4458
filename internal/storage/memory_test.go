package storage

import (
	"context"
	"testing"

	"mixnet/internal/model"
)

func testCheckpoint(id, createdAt string) model.Checkpoint {
	return model.Checkpoint{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: model.CurrentSchemaVersion,
			CodecVersion:  model.CurrentCodecVersion,
		},
		ID: id,
		Params: model.PolicyParams{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: model.CurrentSchemaVersion,
				CodecVersion:  model.CurrentCodecVersion,
			},
			Variant: model.VariantLinear,
			Dims:    model.Dimensions{DimT: 1, DimX: 2, DimU: 1},
			Layers: []model.LayerParams{{
				Name:   "linear",
				In:     3,
				Out:    1,
				Weight: []float64{0.1, 0.2, 0.3},
				Bias:   []float64{-0.5},
			}},
		},
		CreatedAtUTC: createdAt,
	}
}

func TestMemoryStoreCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := testCheckpoint("ckpt-1", "2026-08-01T00:00:00Z")
	if err := store.SaveCheckpoint(ctx, input); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	output, ok, err := store.GetCheckpoint(ctx, "ckpt-1")
	if err != nil {
		t.Fatalf("get checkpoint: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted checkpoint")
	}
	if output.ID != "ckpt-1" || len(output.Params.Layers) != 1 {
		t.Fatalf("unexpected checkpoint: %+v", output)
	}
	if output.Params.Layers[0].Weight[1] != 0.2 {
		t.Fatalf("unexpected layer weight: %v", output.Params.Layers[0].Weight)
	}

	// Mutating the loaded copy must not leak into the store.
	output.Params.Layers[0].Weight[0] = 99
	again, _, err := store.GetCheckpoint(ctx, "ckpt-1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.Params.Layers[0].Weight[0] == 99 {
		t.Fatal("store must hand out copies")
	}
}

func TestMemoryStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, ok, err := store.GetCheckpoint(ctx, "absent")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if ok {
		t.Fatal("expected missing checkpoint")
	}
}

func TestMemoryStoreListAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveCheckpoint(ctx, testCheckpoint("older", "2026-08-01T00:00:00Z")); err != nil {
		t.Fatalf("save older: %v", err)
	}
	if err := store.SaveCheckpoint(ctx, testCheckpoint("newer", "2026-08-02T00:00:00Z")); err != nil {
		t.Fatalf("save newer: %v", err)
	}

	infos, err := store.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("unexpected listing length: %d", len(infos))
	}
	if infos[0].ID != "newer" || infos[1].ID != "older" {
		t.Fatalf("unexpected listing order: %+v", infos)
	}
	if infos[0].Variant != model.VariantLinear || infos[0].SizeBytes <= 0 {
		t.Fatalf("unexpected listing entry: %+v", infos[0])
	}

	if err := store.DeleteCheckpoint(ctx, "older"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	infos, err = store.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "newer" {
		t.Fatalf("unexpected listing after delete: %+v", infos)
	}
}
