//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteStoreCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mixnet.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	input := testCheckpoint("ckpt-sqlite", "2026-08-01T00:00:00Z")
	if err := store.SaveCheckpoint(ctx, input); err != nil {
		t.Fatalf("save checkpoint: %v", err)
	}

	output, ok, err := store.GetCheckpoint(ctx, input.ID)
	if err != nil {
		t.Fatalf("get checkpoint: %v", err)
	}
	if !ok {
		t.Fatalf("expected checkpoint %s", input.ID)
	}
	if output.Params.Variant != input.Params.Variant || len(output.Params.Layers) != 1 {
		t.Fatalf("unexpected checkpoint loaded: %+v", output)
	}

	infos, err := store.ListCheckpoints(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != input.ID || infos[0].SizeBytes <= 0 {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	if err := store.DeleteCheckpoint(ctx, input.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, ok, err = store.GetCheckpoint(ctx, input.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if ok {
		t.Fatal("expected checkpoint to be deleted")
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "mixnet.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	first := testCheckpoint("ckpt-ow", "2026-08-01T00:00:00Z")
	if err := store.SaveCheckpoint(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	second := testCheckpoint("ckpt-ow", "2026-08-02T00:00:00Z")
	second.Params.Layers[0].Bias[0] = 2.5
	if err := store.SaveCheckpoint(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	output, ok, err := store.GetCheckpoint(ctx, "ckpt-ow")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected checkpoint")
	}
	if output.Params.Layers[0].Bias[0] != 2.5 || output.CreatedAtUTC != second.CreatedAtUTC {
		t.Fatalf("expected overwrite, got %+v", output)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "mixnet.db"))
	if _, _, err := store.GetCheckpoint(context.Background(), "x"); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected missing path error")
	}
}
