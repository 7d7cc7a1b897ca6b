package backend

import (
	"context"
	"sync"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/validate"
)

// Memory is an in-process backend that appends accepted records to named
// collections. It exists for tests, demos, and as the reference Backend
// implementation; the "collection" config key selects the target collection.
type Memory struct {
	mu          sync.Mutex
	collections map[string][]validate.Record
}

// NewMemory constructs an empty in-process backend.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]validate.Record)}
}

// Submit stores the record and returns its collection and position.
func (m *Memory) Submit(ctx context.Context, ref form.BackendRef, record validate.Record) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	collection := ConfigString(ref, "collection")
	if collection == "" {
		collection = "default"
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], record)
	position := len(m.collections[collection])
	m.mu.Unlock()

	return Result{Payload: map[string]any{
		"collection": collection,
		"position":   position,
	}}, nil
}

// Records returns a copy of the collection's stored records.
func (m *Memory) Records(collection string) []validate.Record {
	if collection == "" {
		collection = "default"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.collections[collection]
	out := make([]validate.Record, len(stored))
	copy(out, stored)
	return out
}
