package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formdef/pkg/form"
)

// Coercer converts a raw submitted value into the typed representation a
// field stores in the record. Coercion failure is a user-input error and is
// reported against the field, never raised.
type Coercer func(value any) (any, error)

func builtinCoercers() map[form.FieldType]Coercer {
	return map[form.FieldType]Coercer{
		form.FieldTypeText:     coerceString,
		form.FieldTypeEmail:    coerceString,
		form.FieldTypeTextarea: coerceString,
		form.FieldTypeSelect:   coerceString,
		form.FieldTypeDecimal:  coerceDecimal,
		form.FieldTypeBoolean:  coerceBool,
		form.FieldTypeFiles:    coerceFiles,
	}
}

func coerceString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool, int, int32, int64, uint, uint64, float32, float64:
		return fmt.Sprint(v), nil
	default:
		return nil, errors.New("is not text")
	}
}

func coerceDecimal(value any) (any, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.New("is not a number")
		}
		return parsed, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case json.Number:
		parsed, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, errors.New("is not a number")
		}
		return parsed, nil
	default:
		return nil, errors.New("is not a number")
	}
}

func coerceBool(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		// HTML checkboxes submit "on"; everything else follows ParseBool.
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "on", "true", "1", "yes":
			return true, nil
		case "off", "false", "0", "no", "":
			return false, nil
		default:
			return nil, errors.New("is not a boolean")
		}
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	default:
		return nil, errors.New("is not a boolean")
	}
}

// coerceFiles normalises a file-set value into a list of metadata records as
// produced by the upload collaborator.
func coerceFiles(value any) (any, error) {
	switch v := value.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, entry := range v {
			record, ok := entry.(map[string]any)
			if !ok {
				return nil, errors.New("is not a file list")
			}
			out = append(out, record)
		}
		return out, nil
	default:
		return nil, errors.New("is not a file list")
	}
}

// decodeFileSet unwraps a file-set value that arrived pre-serialized as a
// JSON string. Decode failure leaves the raw value untouched so the later
// type mismatch surfaces as a field error instead of an opaque decode crash.
func decodeFileSet(value any) any {
	raw, ok := value.(string)
	if !ok {
		return value
	}
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "[") {
		return value
	}
	var decoded []any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return value
	}
	return decoded
}
