package form

import (
	"time"

	"github.com/google/uuid"
)

// FieldOption customises a field during programmatic construction.
type FieldOption func(*Field)

// ContainerOption customises a container during programmatic construction.
type ContainerOption func(*Container)

// InstanceOption customises an instance during programmatic construction.
type InstanceOption func(*Instance)

// NewInstance constructs an Instance with a generated ID and creation
// timestamp. Programmatic construction is the trusted path; definitions
// arriving from storage or an API go through the safe decoder instead.
func NewInstance(name string, options ...InstanceOption) *Instance {
	now := time.Now().UTC()
	in := &Instance{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(in)
		}
	}
	return in
}

// NewField constructs a field node, generating an ID when none is supplied
// via options.
func NewField(name string, fieldType FieldType, options ...FieldOption) *Field {
	field := &Field{
		ID:   uuid.NewString(),
		Name: name,
		Type: fieldType,
	}
	for _, opt := range options {
		if opt != nil {
			opt(field)
		}
	}
	return field
}

// NewContainer constructs a container node with a generated ID.
func NewContainer(kind ContainerKind, options ...ContainerOption) *Container {
	container := &Container{
		ID:   uuid.NewString(),
		Kind: kind,
	}
	for _, opt := range options {
		if opt != nil {
			opt(container)
		}
	}
	return container
}

// WithTitle sets the instance title.
func WithTitle(title string) InstanceOption {
	return func(in *Instance) { in.Title = title }
}

// WithBackend sets the backend reference.
func WithBackend(module, function string, config ...ConfigEntry) InstanceOption {
	return func(in *Instance) {
		in.Backend = &BackendRef{Module: module, Function: function, Config: config}
	}
}

// WithNodes appends nodes to the instance tree.
func WithNodes(nodes ...Node) InstanceOption {
	return func(in *Instance) { in.Nodes = append(in.Nodes, nodes...) }
}

// WithLabel sets the field label.
func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

// Required marks the field required. Whether a required field actually blocks
// submission still depends on its visibility at validation time.
func Required() FieldOption {
	return func(f *Field) { f.Required = true }
}

// WithOptions sets the select choices.
func WithOptions(options ...Option) FieldOption {
	return func(f *Field) { f.Options = options }
}

// WithValidations appends validation rules in declaration order.
func WithValidations(rules ...ValidationRule) FieldOption {
	return func(f *Field) { f.Validations = append(f.Validations, rules...) }
}

// VisibleWhen appends visibility conditions; several conditions AND together.
func VisibleWhen(conditions ...Condition) FieldOption {
	return func(f *Field) { f.VisibleWhen = append(f.VisibleWhen, conditions...) }
}

// WithChildren appends child nodes to a container.
func WithChildren(nodes ...Node) ContainerOption {
	return func(c *Container) { c.Children = append(c.Children, nodes...) }
}

// WithContent sets a heading or paragraph container's text.
func WithContent(content string) ContainerOption {
	return func(c *Container) { c.Content = content }
}

// ContainerVisibleWhen appends visibility conditions to a container.
func ContainerVisibleWhen(conditions ...Condition) ContainerOption {
	return func(c *Container) { c.VisibleWhen = append(c.VisibleWhen, conditions...) }
}

// Equals builds an equality visibility condition.
func Equals(field string, value any) Condition {
	return Condition{Field: field, Operator: OperatorEquals, Value: value}
}

// Valid builds a presence visibility condition. The operator checks only that
// the referenced field holds a non-blank value; it does not re-run that
// field's validation rules.
func Valid(field string) Condition {
	return Condition{Field: field, Operator: OperatorValid}
}

// MinLength builds a minimum string length rule.
func MinLength(n int, message string) ValidationRule {
	v := float64(n)
	return ValidationRule{Kind: RuleMinLength, Value: &v, Message: message}
}

// MaxLength builds a maximum string length rule.
func MaxLength(n int, message string) ValidationRule {
	v := float64(n)
	return ValidationRule{Kind: RuleMaxLength, Value: &v, Message: message}
}

// Email builds an email format rule.
func Email(message string) ValidationRule {
	return ValidationRule{Kind: RuleEmail, Message: message}
}

// Range builds an inclusive numeric range rule. Either bound may be omitted
// by passing nil.
func Range(min, max *float64, message string) ValidationRule {
	return ValidationRule{Kind: RuleRange, Min: min, Max: max, Message: message}
}
