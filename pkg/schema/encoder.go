package schema

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formdef/pkg/form"
)

// Encode serialises an Instance to the portable representation the decoder
// accepts: symbolic references become their plain-text names, option pairs
// become two-element arrays, and bare options become plain strings. The
// round-trip Decode(Encode(tree)) preserves the tree.
func Encode(inst *form.Instance) map[string]any {
	if inst == nil {
		return nil
	}

	out := map[string]any{
		"id":    inst.ID,
		"name":  inst.Name,
		"nodes": encodeNodes(inst.Nodes),
	}
	if inst.Title != "" {
		out["title"] = inst.Title
	}
	if inst.Description != "" {
		out["description"] = inst.Description
	}
	if inst.Backend != nil {
		out["backend"] = encodeBackend(inst.Backend)
	}
	if len(inst.Metadata) > 0 {
		out["metadata"] = inst.Metadata
	}
	if !inst.CreatedAt.IsZero() {
		out["created_at"] = inst.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !inst.UpdatedAt.IsZero() {
		out["updated_at"] = inst.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return out
}

// EncodeJSON serialises an Instance straight to JSON bytes.
func EncodeJSON(inst *form.Instance) ([]byte, error) {
	encoded := Encode(inst)
	if encoded == nil {
		return nil, fmt.Errorf("schema: cannot encode a nil instance")
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("schema: encode: %w", err)
	}
	return data, nil
}

func encodeNodes(nodes []form.Node) []any {
	out := make([]any, 0, len(nodes))
	for _, node := range nodes {
		switch typed := node.(type) {
		case *form.Field:
			out = append(out, encodeField(typed))
		case *form.Container:
			out = append(out, encodeContainer(typed))
		}
	}
	return out
}

func encodeField(field *form.Field) map[string]any {
	out := map[string]any{
		"node": "field",
		"id":   field.ID,
		"name": field.Name,
		"type": string(field.Type),
	}
	if field.Label != "" {
		out["label"] = field.Label
	}
	if field.Placeholder != "" {
		out["placeholder"] = field.Placeholder
	}
	if field.Description != "" {
		out["description"] = field.Description
	}
	if len(field.Options) > 0 {
		options := make([]any, 0, len(field.Options))
		for _, option := range field.Options {
			if option.Bare() {
				options = append(options, option.Value)
			} else {
				options = append(options, []any{option.Label, option.Value})
			}
		}
		out["options"] = options
	}
	if len(field.Validations) > 0 {
		rules := make([]any, 0, len(field.Validations))
		for _, rule := range field.Validations {
			rules = append(rules, encodeValidation(rule))
		}
		out["validations"] = rules
	}
	if field.Required {
		out["required"] = true
	}
	if field.Disabled {
		out["disabled"] = true
	}
	if len(field.VisibleWhen) > 0 {
		out["visible_when"] = encodeConditions(field.VisibleWhen)
	}
	if len(field.Metadata) > 0 {
		out["metadata"] = field.Metadata
	}
	return out
}

func encodeContainer(container *form.Container) map[string]any {
	out := map[string]any{
		"node": "container",
		"id":   container.ID,
		"kind": string(container.Kind),
		// Children always encode, empty included, so the decoder's
		// empty-list round trip holds.
		"children": encodeNodes(container.Children),
	}
	if container.Content != "" {
		out["content"] = container.Content
	}
	if len(container.VisibleWhen) > 0 {
		out["visible_when"] = encodeConditions(container.VisibleWhen)
	}
	if len(container.Metadata) > 0 {
		out["metadata"] = container.Metadata
	}
	return out
}

func encodeValidation(rule form.ValidationRule) map[string]any {
	out := map[string]any{"type": rule.Kind}
	if rule.Value != nil {
		out["value"] = *rule.Value
	}
	if rule.Min != nil {
		out["min"] = *rule.Min
	}
	if rule.Max != nil {
		out["max"] = *rule.Max
	}
	if rule.Message != "" {
		out["message"] = rule.Message
	}
	return out
}

// encodeConditions always emits the value key so downstream equality checks
// see a stable shape, matching what the decoder normalises to.
func encodeConditions(conditions []form.Condition) []any {
	out := make([]any, 0, len(conditions))
	for _, condition := range conditions {
		out = append(out, map[string]any{
			"field":    condition.Field,
			"operator": condition.Operator,
			"value":    condition.Value,
		})
	}
	return out
}

// encodeBackend re-expresses the symbolic reference as plain-text names and
// the config as an ordered list of {key, value} entries.
func encodeBackend(ref *form.BackendRef) map[string]any {
	out := map[string]any{
		"module":   ref.Module,
		"function": ref.Function,
	}
	if len(ref.Config) > 0 {
		config := make([]any, 0, len(ref.Config))
		for _, entry := range ref.Config {
			config = append(config, map[string]any{
				"key":   entry.Key,
				"value": entry.Value,
			})
		}
		out["config"] = config
	}
	return out
}
