package nn

import (
	"errors"
	"testing"
)

func TestBuiltInActivations(t *testing.T) {
	t.Cleanup(resetActivationRegistryForTests)

	tanh, err := GetActivation("tanh")
	if err != nil {
		t.Fatalf("get tanh: %v", err)
	}
	if got := tanh(0); got != 0 {
		t.Fatalf("tanh(0) = %f", got)
	}
	relu, err := GetActivation("relu")
	if err != nil {
		t.Fatalf("get relu: %v", err)
	}
	if got := relu(-3); got != 0 {
		t.Fatalf("relu(-3) = %f", got)
	}

	names := ListActivations()
	if len(names) != 4 {
		t.Fatalf("unexpected builtin count: %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("activation names not sorted: %v", names)
		}
	}
}

func TestRegisterActivation(t *testing.T) {
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivation("halved", func(x float64) float64 { return x / 2 }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterActivation("halved", func(x float64) float64 { return x }); !errors.Is(err, ErrActivationExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	fn, err := GetActivation("halved")
	if err != nil {
		t.Fatalf("get halved: %v", err)
	}
	if got := fn(4); got != 2 {
		t.Fatalf("halved(4) = %f", got)
	}
}

func TestRegisterActivationSpecValidation(t *testing.T) {
	t.Cleanup(resetActivationRegistryForTests)

	if err := RegisterActivationWithSpec(ActivationSpec{Name: "", Func: func(x float64) float64 { return x }}); err == nil {
		t.Fatal("expected missing name error")
	}
	if err := RegisterActivationWithSpec(ActivationSpec{Name: "noop"}); err == nil {
		t.Fatal("expected missing func error")
	}
	err := RegisterActivationWithSpec(ActivationSpec{
		Name:          "future",
		Func:          func(x float64) float64 { return x },
		SchemaVersion: SupportedSchemaVersion + 1,
		CodecVersion:  SupportedCodecVersion,
	})
	if !errors.Is(err, ErrActivationVersion) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestGetActivationMissing(t *testing.T) {
	if _, err := GetActivation("missing"); !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
