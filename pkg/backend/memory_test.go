package backend

import (
	"context"
	"testing"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/validate"
)

func TestMemorySubmit(t *testing.T) {
	t.Parallel()

	memory := NewMemory()
	ref := form.BackendRef{
		Module:   "memory",
		Function: "submit",
		Config:   []form.ConfigEntry{{Key: "collection", Value: "signups"}},
	}

	result, err := memory.Submit(context.Background(), ref, validate.Record{"email": "a@b.com"})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if !result.OK() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Payload["collection"] != "signups" || result.Payload["position"] != 1 {
		t.Fatalf("unexpected payload: %+v", result.Payload)
	}

	records := memory.Records("signups")
	if len(records) != 1 || records[0]["email"] != "a@b.com" {
		t.Fatalf("record not stored: %+v", records)
	}
}

func TestMemorySubmitDefaultCollection(t *testing.T) {
	t.Parallel()

	memory := NewMemory()
	if _, err := memory.Submit(context.Background(), form.BackendRef{}, validate.Record{}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(memory.Records("")) != 1 {
		t.Fatal("record should land in the default collection")
	}
}

func TestMemorySubmitCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	memory := NewMemory()
	if _, err := memory.Submit(ctx, form.BackendRef{}, validate.Record{}); err == nil {
		t.Fatal("cancelled context should abort the submit")
	}
}
