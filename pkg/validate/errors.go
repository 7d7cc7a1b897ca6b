package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Errors accumulates user-input failures keyed by field name. A non-nil,
// non-empty Errors value is the only error Validate returns for bad input;
// it never aborts the rest of the pass, so callers always see every failing
// field at once.
type Errors map[string][]string

// Error summarises the first few field failures.
func (e Errors) Error() string {
	if len(e) == 0 {
		return ""
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	const maxShown = 3
	shown := len(fields)
	if shown > maxShown {
		shown = maxShown
	}

	b := &strings.Builder{}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", fields[i], e[fields[i]][0])
	}
	if len(fields) > shown {
		fmt.Fprintf(b, "; ... (%d fields invalid)", len(fields))
	}
	return b.String()
}

// Add records a failure message for a field, dropping blank messages and
// exact duplicates.
func (e Errors) Add(field, message string) {
	message = strings.TrimSpace(message)
	if field == "" || message == "" {
		return
	}
	for _, existing := range e[field] {
		if existing == message {
			return
		}
	}
	e[field] = append(e[field], message)
}

// Merge folds another error map into this one, deduplicating messages. Used
// to fold backend field failures into the same reporting path as validation
// failures.
func (e Errors) Merge(other map[string][]string) {
	for field, messages := range other {
		for _, message := range messages {
			e.Add(field, message)
		}
	}
}

// ConfigError reports a broken form description (duplicate field names, a
// required field with no record name). It indicates an operator error rather
// than bad user input, so it is distinct from Errors.
type ConfigError struct {
	Reason error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("validate: invalid form description: %v", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Reason }
