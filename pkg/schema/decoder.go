// Package schema converts form descriptions between the in-memory tree and
// the portable JSON/YAML representation. Decoding treats its input as
// attacker-influenced: symbolic backend references resolve only against the
// already-populated backend registry and an unresolvable identifier is a
// hard, typed failure. Cosmetic details (timestamps, condition shapes)
// degrade leniently so one malformed decoration never takes down the rest of
// the form.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formdef/pkg/backend"
	"github.com/goliatone/go-formdef/pkg/form"
)

// Decoder reconstructs Instances from untrusted external representations.
type Decoder struct {
	registry *backend.Registry
	sanitize bool
}

// DecoderOption customises a Decoder.
type DecoderOption func(*Decoder)

// WithRegistry sets the allow-list the decoder resolves backend identifiers
// against. Defaults to backend.Default().
func WithRegistry(registry *backend.Registry) DecoderOption {
	return func(d *Decoder) { d.registry = registry }
}

// WithoutSanitizer disables HTML sanitizing of container content. Only safe
// when the input source is trusted end to end.
func WithoutSanitizer() DecoderOption {
	return func(d *Decoder) { d.sanitize = false }
}

// NewDecoder constructs a Decoder bound to the default backend registry.
func NewDecoder(options ...DecoderOption) *Decoder {
	d := &Decoder{
		registry: backend.Default(),
		sanitize: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode parses bytes with the default decoder. See Decoder.Decode.
func Decode(data []byte) (*form.Instance, error) { return defaultDecoder.Decode(data) }

// DecodeMap decodes an already-parsed representation with the default
// decoder. See Decoder.DecodeMap.
func DecodeMap(raw map[string]any) (*form.Instance, error) { return defaultDecoder.DecodeMap(raw) }

// Decode parses a JSON or YAML payload into an Instance. JSON is attempted
// first, then YAML, mirroring how definitions travel both as API payloads
// and as stored configuration files.
func (d *Decoder) Decode(data []byte) (*form.Instance, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("schema: payload is empty")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.New("schema: payload is not valid JSON or YAML")
		}
	}
	return d.DecodeMap(raw)
}

// DecodeMap reconstructs an Instance from a JSON-compatible map.
func (d *Decoder) DecodeMap(raw map[string]any) (*form.Instance, error) {
	if raw == nil {
		return nil, errors.New("schema: payload is nil")
	}

	name, ok := stringKey(raw, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, &MissingKeyError{Key: "name"}
	}

	inst := &form.Instance{
		ID:          idKey(raw),
		Name:        name,
		Title:       stringOr(raw, "title", ""),
		Description: stringOr(raw, "description", ""),
		Metadata:    mapKey(raw, "metadata"),
		CreatedAt:   timestamp(raw, "created_at"),
		UpdatedAt:   timestamp(raw, "updated_at"),
	}

	backendRef, err := d.decodeBackend(raw)
	if err != nil {
		return nil, err
	}
	inst.Backend = backendRef

	nodes, err := d.decodeNodes(listKey(raw, "nodes"), "nodes")
	if err != nil {
		return nil, err
	}
	inst.Nodes = nodes

	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

// decodeNodes decodes a node list recursively. An absent or explicitly empty
// list decodes to an empty sequence, never nil.
func (d *Decoder) decodeNodes(raw []any, path string) ([]form.Node, error) {
	nodes := make([]form.Node, 0, len(raw))
	for i, entry := range raw {
		mapped, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("schema: node at %s[%d] is not a map", path, i)
		}
		node, err := d.decodeNode(mapped, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (d *Decoder) decodeNode(raw map[string]any, path string) (form.Node, error) {
	// Explicit discriminant wins; otherwise a "name" key marks a field.
	discriminant, _ := stringKey(raw, "node")
	isField := discriminant == "field"
	if discriminant == "" {
		_, isField = stringKey(raw, "name")
	}
	if isField {
		return d.decodeField(raw, path)
	}
	return d.decodeContainer(raw, path)
}

func (d *Decoder) decodeField(raw map[string]any, path string) (*form.Field, error) {
	name, ok := stringKey(raw, "name")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, &MissingKeyError{Key: "name", Path: path}
	}
	fieldType, ok := stringKey(raw, "type")
	if !ok || strings.TrimSpace(fieldType) == "" {
		return nil, &MissingKeyError{Key: "type", Path: path}
	}

	field := &form.Field{
		ID:          idKey(raw),
		Name:        name,
		Type:        form.FieldType(fieldType),
		Label:       stringOr(raw, "label", ""),
		Placeholder: stringOr(raw, "placeholder", ""),
		Description: stringOr(raw, "description", ""),
		Options:     decodeOptions(listKey(raw, "options")),
		Validations: decodeValidations(listKey(raw, "validations")),
		Required:    boolKey(raw, "required"),
		Disabled:    boolKey(raw, "disabled"),
		VisibleWhen: decodeConditions(raw["visible_when"]),
		Metadata:    mapKey(raw, "metadata"),
	}
	return field, nil
}

func (d *Decoder) decodeContainer(raw map[string]any, path string) (*form.Container, error) {
	kind := stringOr(raw, "kind", string(form.ContainerGroup))

	content := stringOr(raw, "content", "")
	if d.sanitize {
		content = form.SanitizeContent(content)
	}

	children, err := d.decodeNodes(listKey(raw, "children"), path+".children")
	if err != nil {
		return nil, err
	}

	return &form.Container{
		ID:          idKey(raw),
		Kind:        form.ContainerKind(kind),
		Content:     content,
		Children:    children,
		VisibleWhen: decodeConditions(raw["visible_when"]),
		Metadata:    mapKey(raw, "metadata"),
	}, nil
}

// decodeBackend reconstructs the backend reference, resolving every symbolic
// identifier against the registry. Any identifier the registry does not know
// fails the whole decode; nothing is ever added to the registry here.
func (d *Decoder) decodeBackend(raw map[string]any) (*form.BackendRef, error) {
	value, present := raw["backend"]
	if !present || value == nil {
		return nil, nil
	}
	mapped, ok := value.(map[string]any)
	if !ok {
		return nil, errors.New("schema: backend reference is not a map")
	}

	module, ok := stringKey(mapped, "module")
	if !ok || strings.TrimSpace(module) == "" {
		return nil, &MissingKeyError{Key: "module", Path: "backend"}
	}
	function, ok := stringKey(mapped, "function")
	if !ok || strings.TrimSpace(function) == "" {
		return nil, &MissingKeyError{Key: "function", Path: "backend"}
	}

	if !d.registry.KnownModule(module) {
		return nil, &UnknownSymbolError{Symbol: module, Kind: "module"}
	}
	if !d.registry.KnownFunction(module, function) {
		return nil, &UnknownSymbolError{Symbol: module + "." + function, Kind: "function"}
	}

	config, err := d.decodeConfig(module, mapped["config"])
	if err != nil {
		return nil, err
	}

	return &form.BackendRef{Module: module, Function: function, Config: config}, nil
}

// decodeConfig accepts the config either as a map or as a list of pairs /
// {key, value} maps, normalising to an ordered entry list with resolved keys.
func (d *Decoder) decodeConfig(module string, value any) ([]form.ConfigEntry, error) {
	if value == nil {
		return nil, nil
	}

	var entries []form.ConfigEntry
	switch typed := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(typed) {
			entries = append(entries, form.ConfigEntry{Key: key, Value: typed[key]})
		}
	case []any:
		for i, item := range typed {
			switch pair := item.(type) {
			case []any:
				if len(pair) != 2 {
					return nil, fmt.Errorf("schema: backend config entry %d is not a pair", i)
				}
				key, ok := pair[0].(string)
				if !ok {
					return nil, fmt.Errorf("schema: backend config entry %d has a non-string key", i)
				}
				entries = append(entries, form.ConfigEntry{Key: key, Value: pair[1]})
			case map[string]any:
				key, ok := stringKey(pair, "key")
				if !ok {
					return nil, fmt.Errorf("schema: backend config entry %d is missing its key", i)
				}
				entries = append(entries, form.ConfigEntry{Key: key, Value: pair["value"]})
			default:
				return nil, fmt.Errorf("schema: backend config entry %d has an unsupported shape", i)
			}
		}
	default:
		return nil, errors.New("schema: backend config has an unsupported shape")
	}

	for _, entry := range entries {
		if !d.registry.KnownConfigKey(module, entry.Key) {
			return nil, &UnknownSymbolError{Symbol: entry.Key, Kind: "config key"}
		}
	}
	return entries, nil
}

// decodeOptions accepts two-element arrays as label/value pairs, bare
// strings as plain options, and {label, value} maps converted to pair form.
// Unsupported shapes are dropped.
func decodeOptions(raw []any) []form.Option {
	if len(raw) == 0 {
		return nil
	}
	options := make([]form.Option, 0, len(raw))
	for _, entry := range raw {
		switch typed := entry.(type) {
		case string:
			options = append(options, form.Option{Value: typed})
		case []any:
			if len(typed) != 2 {
				continue
			}
			label, okLabel := typed[0].(string)
			value, okValue := typed[1].(string)
			if !okLabel || !okValue {
				continue
			}
			options = append(options, form.Option{Label: label, Value: value})
		case map[string]any:
			label, _ := stringKey(typed, "label")
			value, ok := stringKey(typed, "value")
			if !ok {
				continue
			}
			options = append(options, form.Option{Label: label, Value: value})
		}
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

func decodeValidations(raw []any) []form.ValidationRule {
	if len(raw) == 0 {
		return nil
	}
	rules := make([]form.ValidationRule, 0, len(raw))
	for _, entry := range raw {
		mapped, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		kind, ok := stringKey(mapped, "type")
		if !ok {
			kind, ok = stringKey(mapped, "kind")
		}
		if !ok || strings.TrimSpace(kind) == "" {
			continue
		}
		rules = append(rules, form.ValidationRule{
			Kind:    kind,
			Value:   numberPtr(mapped["value"]),
			Min:     numberPtr(mapped["min"]),
			Max:     numberPtr(mapped["max"]),
			Message: stringOr(mapped, "message", ""),
		})
	}
	if len(rules) == 0 {
		return nil
	}
	return rules
}

// decodeConditions accepts a single condition map or a list of them and
// normalises each to the {field, operator, value} shape, defaulting a
// missing value to nil. Malformed entries are dropped; visibility must never
// crash request handling.
func decodeConditions(raw any) []form.Condition {
	if raw == nil {
		return nil
	}

	var items []any
	switch typed := raw.(type) {
	case map[string]any:
		items = []any{typed}
	case []any:
		items = typed
	default:
		return nil
	}

	conditions := make([]form.Condition, 0, len(items))
	for _, item := range items {
		mapped, ok := item.(map[string]any)
		if !ok {
			continue
		}
		field, ok := stringKey(mapped, "field")
		if !ok || strings.TrimSpace(field) == "" {
			continue
		}
		operator, ok := stringKey(mapped, "operator")
		if !ok || strings.TrimSpace(operator) == "" {
			continue
		}
		conditions = append(conditions, form.Condition{
			Field:    field,
			Operator: operator,
			Value:    mapped["value"],
		})
	}
	if len(conditions) == 0 {
		return nil
	}
	return conditions
}

func stringKey(raw map[string]any, key string) (string, bool) {
	value, ok := raw[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func stringOr(raw map[string]any, key, fallback string) string {
	if s, ok := stringKey(raw, key); ok && s != "" {
		return s
	}
	return fallback
}

// idKey returns the payload's id, generating one only when it is absent or
// blank.
func idKey(raw map[string]any) string {
	if s, ok := stringKey(raw, "id"); ok && s != "" {
		return s
	}
	return uuid.NewString()
}

func boolKey(raw map[string]any, key string) bool {
	value, ok := raw[key]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		// Same string forms the boolean coercer accepts; anything else
		// degrades to false.
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "yes":
			return true
		}
		return false
	default:
		return false
	}
}

func listKey(raw map[string]any, key string) []any {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	list, _ := value.([]any)
	return list
}

func mapKey(raw map[string]any, key string) map[string]any {
	value, ok := raw[key]
	if !ok || value == nil {
		return nil
	}
	mapped, ok := value.(map[string]any)
	if !ok || len(mapped) == 0 {
		return nil
	}
	out := make(map[string]any, len(mapped))
	for k, v := range mapped {
		out[k] = v
	}
	return out
}

func numberPtr(value any) *float64 {
	switch v := value.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// timestamp parses an ISO-8601 string; malformed or absent values become the
// zero time rather than failing the decode.
func timestamp(raw map[string]any, key string) time.Time {
	value, ok := stringKey(raw, key)
	if !ok || strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func sortedKeys(raw map[string]any) []string {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	// Map-shaped config has no inherent order; sorting keeps the normalised
	// entry list deterministic.
	sort.Strings(keys)
	return keys
}
