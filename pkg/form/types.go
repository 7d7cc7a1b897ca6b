package form

import "time"

// FieldType is the enum of field kinds a form definition may declare. Types
// outside this list are carried through verbatim so new kinds degrade
// gracefully instead of breaking unrelated forms.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDecimal  FieldType = "decimal"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeFiles    FieldType = "files"
)

// ContainerKind tags layout and decorative containers.
type ContainerKind string

const (
	ContainerGroup     ContainerKind = "group"
	ContainerSection   ContainerKind = "section"
	ContainerHeading   ContainerKind = "heading"
	ContainerParagraph ContainerKind = "paragraph"
	ContainerDivider   ContainerKind = "divider"
)

// Canonical validation rule kinds. Custom kinds may be registered with the
// validator; unrecognised kinds are ignored during validation.
const (
	RuleMinLength = "min_length"
	RuleMaxLength = "max_length"
	RuleEmail     = "email"
	RuleRange     = "range"
)

// Condition operators.
const (
	OperatorEquals = "equals"
	OperatorValid  = "valid"
)

// ValidationRule represents a single constraint applied to a field. Length
// rules encode their threshold in Value; range rules use Min/Max (both bounds
// inclusive, either may be nil). Message overrides the built-in error text.
type ValidationRule struct {
	Kind    string   `json:"kind"`
	Value   *float64 `json:"value,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Condition gates a node's visibility on another field's current value. A
// node carrying several conditions is visible only when all of them hold.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Option is a select choice. Pair options carry both a label and a value;
// bare-string options leave Label empty and round-trip back to a plain
// string.
type Option struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value"`
}

// Bare reports whether the option was declared as a plain string rather than
// a label/value pair.
func (o Option) Bare() bool { return o.Label == "" }

// ConfigEntry is one backend configuration pair. Keys are symbolic
// identifiers resolved against the backend registry during decoding; values
// pass through opaque.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// BackendRef points at the external collaborator that receives validated
// records. Module and Function are symbolic identifiers; the safe decoder
// refuses to construct a BackendRef naming identifiers the registry does not
// already know.
type BackendRef struct {
	Module   string        `json:"module"`
	Function string        `json:"function"`
	Config   []ConfigEntry `json:"config,omitempty"`
}

// Node is a single entry in the description tree: either a *Field collecting
// input or a *Container grouping and decorating other nodes.
type Node interface {
	// NodeID returns the node identifier.
	NodeID() string
	// Conditions returns the node's visibility conditions; nil means always
	// visible.
	Conditions() []Condition

	sealed()
}

// Field is a leaf node that collects a value under Name in the validated
// record.
type Field struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Type        FieldType        `json:"type"`
	Label       string           `json:"label,omitempty"`
	Placeholder string           `json:"placeholder,omitempty"`
	Description string           `json:"description,omitempty"`
	Options     []Option         `json:"options,omitempty"`
	Validations []ValidationRule `json:"validations,omitempty"`
	Required    bool             `json:"required,omitempty"`
	Disabled    bool             `json:"disabled,omitempty"`
	VisibleWhen []Condition      `json:"visible_when,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

func (f *Field) NodeID() string          { return f.ID }
func (f *Field) Conditions() []Condition { return f.VisibleWhen }
func (f *Field) sealed()                 {}

// Container is a layout or decorative node. Only group/section kinds
// typically carry children; heading and paragraph kinds carry Content.
type Container struct {
	ID          string         `json:"id,omitempty"`
	Kind        ContainerKind  `json:"kind"`
	Content     string         `json:"content,omitempty"`
	Children    []Node         `json:"children,omitempty"`
	VisibleWhen []Condition    `json:"visible_when,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

func (c *Container) NodeID() string          { return c.ID }
func (c *Container) Conditions() []Condition { return c.VisibleWhen }
func (c *Container) sealed()                 {}

// Instance is a whole form description: display metadata, an ordered node
// tree, and the backend that receives submissions. Once constructed an
// Instance is treated as immutable configuration; validation passes never
// mutate it, so concurrent use requires no coordination.
type Instance struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Backend     *BackendRef    `json:"backend,omitempty"`
	Nodes       []Node         `json:"nodes"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
