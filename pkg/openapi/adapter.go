// Package openapi imports form definitions from OpenAPI documents: the
// request-body schema of one operation becomes a description tree. The
// import is a convenience for bootstrapping definitions; the resulting
// Instance goes through the same validation machinery as hand-written ones.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdef/pkg/form"
)

// ImportOptions configures the import.
type ImportOptions struct {
	// AllowPartialDocuments keeps going when the document has no paths.
	AllowPartialDocuments bool
	// Backend, when set, is attached to the imported instance.
	Backend *form.BackendRef
}

// Import builds an Instance from the request-body schema of the named
// operation in an OpenAPI document.
func Import(ctx context.Context, raw []byte, operationID string, opts ImportOptions) (*form.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	if strings.TrimSpace(operationID) == "" {
		return nil, errors.New("openapi: operation id is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		if !opts.AllowPartialDocuments {
			return nil, errors.New("openapi: document does not contain any paths")
		}
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	inst := form.NewInstance(operationID,
		form.WithTitle(strings.TrimSpace(operation.Summary)),
	)
	inst.Description = strings.TrimSpace(operation.Description)
	inst.Backend = opts.Backend
	inst.Nodes = convertObject(schema, "")

	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("openapi: imported definition is invalid: %w", err)
	}
	return inst, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete,
			item.Patch, item.Head, item.Options, item.Trace,
		} {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// convertObject turns an object schema's properties into field nodes in a
// stable order. Nested objects flatten with dotted names so every record key
// stays unique across the tree.
func convertObject(schema *openapi3.Schema, prefix string) []form.Node {
	if schema == nil || len(schema.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	nodes := make([]form.Node, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		property := ref.Value
		recordName := name
		if prefix != "" {
			recordName = prefix + "." + name
		}

		if schemaType(property) == "object" && len(property.Properties) > 0 {
			group := form.NewContainer(form.ContainerGroup,
				form.WithChildren(convertObject(property, recordName)...),
			)
			if property.Title != "" {
				group.Content = property.Title
			}
			nodes = append(nodes, group)
			continue
		}

		nodes = append(nodes, convertField(property, recordName, required[name]))
	}
	return nodes
}

func convertField(property *openapi3.Schema, name string, required bool) *form.Field {
	field := form.NewField(name, fieldType(property))
	field.Label = strings.TrimSpace(property.Title)
	field.Description = strings.TrimSpace(property.Description)
	field.Required = required
	field.Options = enumOptions(property.Enum)
	field.Validations = convertValidations(property)
	return field
}

func fieldType(property *openapi3.Schema) form.FieldType {
	if len(property.Enum) > 0 {
		return form.FieldTypeSelect
	}
	switch schemaType(property) {
	case "string":
		switch strings.ToLower(property.Format) {
		case "email":
			return form.FieldTypeEmail
		case "textarea":
			return form.FieldTypeTextarea
		default:
			return form.FieldTypeText
		}
	case "number", "integer":
		return form.FieldTypeDecimal
	case "boolean":
		return form.FieldTypeBoolean
	case "array":
		if property.Items != nil && property.Items.Value != nil &&
			strings.ToLower(property.Items.Value.Format) == "binary" {
			return form.FieldTypeFiles
		}
		return form.FieldType(schemaType(property))
	default:
		// Unknown schema types carry through as their literal name so the
		// validator's passthrough policy applies.
		return form.FieldType(schemaType(property))
	}
}

func schemaType(property *openapi3.Schema) string {
	if property.Type == nil {
		return ""
	}
	values := property.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func enumOptions(enum []any) []form.Option {
	if len(enum) == 0 {
		return nil
	}
	options := make([]form.Option, 0, len(enum))
	for _, value := range enum {
		s, ok := value.(string)
		if !ok {
			s = fmt.Sprint(value)
		}
		options = append(options, form.Option{Value: s})
	}
	return options
}

func convertValidations(property *openapi3.Schema) []form.ValidationRule {
	var rules []form.ValidationRule

	if property.MinLength != 0 {
		rules = append(rules, form.MinLength(int(property.MinLength), ""))
	}
	if property.MaxLength != nil {
		rules = append(rules, form.MaxLength(int(*property.MaxLength), ""))
	}
	if strings.ToLower(property.Format) == "email" {
		rules = append(rules, form.Email(""))
	}
	if property.Min != nil || property.Max != nil {
		rules = append(rules, form.Range(property.Min, property.Max, ""))
	}
	return rules
}
