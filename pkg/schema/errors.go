package schema

import "fmt"

// UnknownSymbolError is the fatal decode failure for a symbolic reference
// that the backend registry does not already know. The error names the
// offending identifier so operators can see exactly what the payload tried
// to reference; the identifier is never registered as a side effect.
type UnknownSymbolError struct {
	Symbol string
	Kind   string // "module", "function", or "config key"
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("schema: unknown backend %s %q", e.Kind, e.Symbol)
}

// MissingKeyError is the fatal decode failure for a required key absent from
// the external representation.
type MissingKeyError struct {
	Key  string
	Path string
}

func (e *MissingKeyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schema: missing required key %q", e.Key)
	}
	return fmt.Sprintf("schema: missing required key %q at %s", e.Key, e.Path)
}
