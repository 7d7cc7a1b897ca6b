// Package formdef describes forms as data: a definition decoded from JSON or
// YAML (or built programmatically) is interpreted at request time into a
// validated record, with conditional visibility deciding which fields are
// required at any given moment. No per-form code is involved.
//
// The root package is a facade over pkg/form (the description tree),
// pkg/visibility (condition evaluation), pkg/validate (coercion and rules),
// pkg/schema (the safe codec), and pkg/backend (submission collaborators).
package formdef

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formdef/pkg/backend"
	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/schema"
	"github.com/goliatone/go-formdef/pkg/validate"
)

// Re-exported core types so simple integrations only import the root package.
type (
	Instance   = form.Instance
	Field      = form.Field
	Container  = form.Container
	Node       = form.Node
	Condition  = form.Condition
	BackendRef = form.BackendRef
	Record     = validate.Record
	Errors     = validate.Errors
)

// Decode parses a JSON or YAML definition with the default decoder.
func Decode(data []byte) (*form.Instance, error) { return schema.Decode(data) }

// DecodeMap reconstructs a definition from an already-parsed map.
func DecodeMap(raw map[string]any) (*form.Instance, error) { return schema.DecodeMap(raw) }

// Encode serialises a definition to its portable representation.
func Encode(inst *form.Instance) map[string]any { return schema.Encode(inst) }

// EncodeJSON serialises a definition to JSON bytes.
func EncodeJSON(inst *form.Instance) ([]byte, error) { return schema.EncodeJSON(inst) }

// Validate coerces and validates a raw submission against a definition.
func Validate(inst *form.Instance, raw map[string]any) (validate.Record, error) {
	return validate.Validate(inst, raw)
}

// Submit validates the raw submission and, when it passes, hands the record
// to the definition's backend. Backend validation-style failures come back as
// Errors on the same path as local validation failures; generic backend
// failures pass through unmodified.
func Submit(ctx context.Context, inst *form.Instance, raw map[string]any) (backend.Result, error) {
	return SubmitWith(ctx, backend.Default(), inst, raw)
}

// SubmitWith is Submit against an explicit backend registry.
func SubmitWith(ctx context.Context, registry *backend.Registry, inst *form.Instance, raw map[string]any) (backend.Result, error) {
	record, err := validate.Validate(inst, raw)
	if err != nil {
		return backend.Result{}, err
	}

	if inst.Backend == nil {
		return backend.Result{}, fmt.Errorf("formdef: definition %q has no backend", inst.Name)
	}
	impl, ok := registry.Lookup(inst.Backend.Module, inst.Backend.Function)
	if !ok {
		return backend.Result{}, fmt.Errorf("formdef: backend %s.%s is not registered",
			inst.Backend.Module, inst.Backend.Function)
	}

	result, err := impl.Submit(ctx, *inst.Backend, record)
	if err != nil {
		return backend.Result{}, err
	}
	if !result.OK() {
		merged := make(validate.Errors)
		merged.Merge(result.FieldErrors)
		return result, merged
	}
	return result, nil
}
