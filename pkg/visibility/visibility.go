// Package visibility decides whether description-tree nodes are active for a
// given set of submitted values. Evaluation is a pure function: the same
// conditions and values always produce the same answer, nothing is mutated,
// and malformed conditions degrade to "not visible" instead of failing the
// request.
package visibility

import (
	"strings"

	"github.com/goliatone/go-formdef/pkg/form"
)

// Values holds the current raw submission, keyed by field name. Callers pass
// whatever the transport produced.
type Values map[string]any

// Visible reports whether a node with the supplied conditions is active.
// No conditions means always visible; several conditions AND together and
// evaluation short-circuits on the first failure.
func Visible(conditions []form.Condition, values Values) bool {
	for _, condition := range conditions {
		if !evaluate(condition, values) {
			return false
		}
	}
	return true
}

// VisibleNode reports whether the node is active under the current values.
func VisibleNode(node form.Node, values Values) bool {
	if node == nil {
		return false
	}
	return Visible(node.Conditions(), values)
}

func evaluate(condition form.Condition, values Values) bool {
	name := strings.TrimSpace(condition.Field)
	if name == "" {
		return false
	}

	value, found := lookup(values, name)

	switch condition.Operator {
	case form.OperatorEquals:
		if !found || value == nil {
			return false
		}
		return equal(value, condition.Value)
	case form.OperatorValid:
		// "valid" checks presence and non-blankness only; it deliberately does
		// not re-run the referenced field's validation rules.
		if !found || value == nil {
			return false
		}
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return true
	default:
		// Unknown operators never crash request handling.
		return false
	}
}

// lookup finds a field's current value. A missing key is not an error; it
// degrades to "not found" so conditions referencing unsubmitted fields simply
// evaluate false. Lookup never manufactures new keys.
func lookup(values Values, name string) (any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	if v, ok := values[name]; ok {
		return v, true
	}
	return nil, false
}

// equal compares a submitted value against a condition value, requiring the
// same kind and the same value. Numeric widths normalise to float64 so a
// condition decoded from JSON still matches an int submitted by Go code, but
// there is no cross-kind coercion: "true" never equals true.
func equal(got, want any) bool {
	if gotNum, ok := number(got); ok {
		wantNum, ok := number(want)
		return ok && gotNum == wantNum
	}

	switch typed := want.(type) {
	case nil:
		return got == nil
	case bool:
		b, ok := got.(bool)
		return ok && b == typed
	case string:
		s, ok := got.(string)
		return ok && s == typed
	default:
		return false
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}
