package form

import (
	"errors"
	"fmt"
	"strings"
)

var errInstanceNameMissing = errors.New("form: instance name is required")

// Validate checks the tree invariants that make an Instance usable as
// configuration: the instance carries a name, every field resolves to a
// non-empty record key, and no two fields share one. Violations are operator
// errors in the form description, not user-input errors, so they surface as
// a plain error rather than field errors.
func (in *Instance) Validate() error {
	if in == nil {
		return errors.New("form: instance is nil")
	}
	if strings.TrimSpace(in.Name) == "" {
		return errInstanceNameMissing
	}

	seen := make(map[string]struct{})
	for _, field := range in.Fields() {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			return fmt.Errorf("form: field %q has no record name", field.ID)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("form: duplicate field name %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
