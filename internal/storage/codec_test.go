package storage

import (
	"errors"
	"testing"

	"mixnet/internal/model"
)

func TestCheckpointCodecRoundTrip(t *testing.T) {
	input := testCheckpoint("ckpt-codec", "2026-08-01T00:00:00Z")
	payload, err := EncodeCheckpoint(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	output, err := DecodeCheckpoint(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if output.ID != input.ID || output.Params.Variant != input.Params.Variant {
		t.Fatalf("unexpected decode: %+v", output)
	}
	if output.Params.Layers[0].Bias[0] != -0.5 {
		t.Fatalf("unexpected decoded bias: %v", output.Params.Layers[0].Bias)
	}
}

func TestDecodeCheckpointVersionMismatch(t *testing.T) {
	input := testCheckpoint("ckpt-old", "2026-08-01T00:00:00Z")
	input.SchemaVersion = model.CurrentSchemaVersion + 1
	payload, err := EncodeCheckpoint(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeCheckpoint(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeCheckpointMalformed(t *testing.T) {
	if _, err := DecodeCheckpoint([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
