// Package backend defines the collaborator that receives validated records
// and the process-wide registry of backend identifiers. The registry doubles
// as the allow-list the safe decoder consults when it resolves symbolic
// module/function references out of untrusted input.
package backend

import (
	"context"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/validate"
)

// Result is a backend's answer to a submission. A populated FieldErrors map
// is a validation-style failure the caller merges back into the per-field
// error path; otherwise Payload carries the success result. Generic failures
// travel on Submit's error return instead.
type Result struct {
	Payload     map[string]any
	FieldErrors map[string][]string
}

// OK reports whether the submission was accepted.
func (r Result) OK() bool { return len(r.FieldErrors) == 0 }

// Backend consumes a validated record together with the invocation
// configuration from the form's backend reference.
type Backend interface {
	Submit(ctx context.Context, ref form.BackendRef, record validate.Record) (Result, error)
}

// Func adapts a function into a Backend.
type Func func(ctx context.Context, ref form.BackendRef, record validate.Record) (Result, error)

// Submit delegates to the underlying function.
func (fn Func) Submit(ctx context.Context, ref form.BackendRef, record validate.Record) (Result, error) {
	return fn(ctx, ref, record)
}

// ConfigValue returns the first config entry with the given key.
func ConfigValue(ref form.BackendRef, key string) (any, bool) {
	for _, entry := range ref.Config {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// ConfigString returns a config entry's value as a string, or "" when absent
// or not a string.
func ConfigString(ref form.BackendRef, key string) string {
	value, ok := ConfigValue(ref, key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}
