// Package validate turns a raw key/value submission into a typed record
// against a form description, applying conditional required-ness and the
// field validation rules. The whole pass is a pure function over the tree and
// the raw input; concurrent validations of the same Instance need no
// coordination.
package validate

import (
	"maps"
	"strings"
	"sync"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/visibility"
)

// Record is the validated, coerced submission keyed by field name. Fields
// absent from the raw input are simply omitted, never defaulted.
type Record map[string]any

// Validator coerces and validates submissions. The zero value is not usable;
// construct with New, which installs the built-in coercers and rules. Custom
// field types and rule kinds are additions to the registries, not new
// branches in the pass itself.
type Validator struct {
	mu       sync.RWMutex
	coercers map[form.FieldType]Coercer
	rules    map[string]RuleFunc
}

// Option customises a Validator.
type Option func(*Validator)

// New constructs a Validator with the built-in coercers and rules installed.
func New(options ...Option) *Validator {
	v := &Validator{
		coercers: builtinCoercers(),
		rules:    builtinRules(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// RegisterCoercer installs a coercer for a field type, replacing any
// previous registration. Field types without a coercer pass their raw value
// through untouched.
func (v *Validator) RegisterCoercer(fieldType form.FieldType, coercer Coercer) {
	if v == nil || coercer == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	coercers := maps.Clone(v.coercers)
	coercers[fieldType] = coercer
	v.coercers = coercers
}

// RegisterRule installs a rule function for a rule kind. Rule kinds without
// a registration are ignored during validation.
func (v *Validator) RegisterRule(kind string, rule RuleFunc) {
	if v == nil || rule == nil {
		return
	}
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	rules := maps.Clone(v.rules)
	rules[kind] = rule
	v.rules = rules
}

// WithRule installs a custom rule at construction time.
func WithRule(kind string, rule RuleFunc) Option {
	return func(v *Validator) { v.RegisterRule(kind, rule) }
}

// WithCoercer installs a custom coercer at construction time.
func WithCoercer(fieldType form.FieldType, coercer Coercer) Option {
	return func(v *Validator) { v.RegisterCoercer(fieldType, coercer) }
}

var defaultValidator = New()

// Validate runs the default validator. See Validator.Validate.
func Validate(inst *form.Instance, raw map[string]any) (Record, error) {
	return defaultValidator.Validate(inst, raw)
}

// Validate builds a typed record from the raw submission. It returns Errors
// when any field fails, or a *ConfigError when the tree itself is broken
// (duplicate names, nameless required fields). Required-ness is recomputed on
// every call from the raw values: a field counts as required only while it is
// both marked required and currently visible, so changing one field can add
// or remove the required status of another within the same pass.
func (v *Validator) Validate(inst *form.Instance, raw map[string]any) (Record, error) {
	if err := inst.Validate(); err != nil {
		return nil, &ConfigError{Reason: err}
	}

	// Registrations swap in a fresh map rather than mutating in place, so the
	// references taken here are an immutable snapshot for the whole pass.
	v.mu.RLock()
	coercers := v.coercers
	rules := v.rules
	v.mu.RUnlock()

	fields := inst.Fields()
	record := make(Record, len(fields))
	failures := make(Errors)
	values := visibility.Values(raw)

	for _, field := range fields {
		value, present := raw[field.Name]
		if present && field.Type == form.FieldTypeFiles {
			value = decodeFileSet(value)
		}

		// Visibility sees the raw, not-yet-coerced input: what the user
		// actually submitted, including values owned by other fields.
		active := visibility.Visible(field.VisibleWhen, values)

		if field.Required && active && blank(value, present) {
			failures.Add(field.Name, "is required")
			continue
		}
		if !present {
			continue
		}

		coerced := value
		if coercer, ok := coercers[field.Type]; ok {
			converted, err := coercer(value)
			if err != nil {
				failures.Add(field.Name, err.Error())
				continue
			}
			coerced = converted
		}

		for _, rule := range field.Validations {
			check, known := rules[rule.Kind]
			if !known {
				// Unknown rule kinds degrade gracefully, same as unknown
				// field types.
				continue
			}
			if msg := check(rule, coerced); msg != "" {
				failures.Add(field.Name, msg)
			}
		}

		if len(failures[field.Name]) == 0 {
			record[field.Name] = coerced
		}
	}

	if len(failures) > 0 {
		return nil, failures
	}
	return record, nil
}

// blank reports whether a required field should count as missing: absent,
// nil, a blank string, or an empty list.
func blank(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
