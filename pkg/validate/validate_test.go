package validate

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-formdef/pkg/form"
)

func paymentForm() *form.Instance {
	return form.NewInstance("checkout", form.WithNodes(
		form.NewField("payment_method", form.FieldTypeSelect,
			form.Required(),
			form.WithOptions(
				form.Option{Label: "Credit card", Value: "credit_card"},
				form.Option{Label: "PayPal", Value: "paypal"},
			),
		),
		form.NewField("card_number", form.FieldTypeText,
			form.Required(),
			form.VisibleWhen(form.Equals("payment_method", "credit_card")),
		),
	))
}

func TestValidateConditionallyRequired(t *testing.T) {
	t.Parallel()

	inst := paymentForm()

	_, err := Validate(inst, map[string]any{"payment_method": "credit_card"})
	fieldErrors, ok := err.(Errors)
	if !ok {
		t.Fatalf("expected Errors, got %v", err)
	}
	if len(fieldErrors["card_number"]) == 0 {
		t.Fatal("card_number should be missing when credit_card is selected")
	}

	record, err := Validate(inst, map[string]any{"payment_method": "paypal"})
	if err != nil {
		t.Fatalf("paypal submission should be valid, got %v", err)
	}
	if _, present := record["card_number"]; present {
		t.Fatal("card_number should not appear in the record")
	}

	record, err = Validate(inst, map[string]any{
		"payment_method": "credit_card",
		"card_number":    "4111111111111111",
	})
	if err != nil {
		t.Fatalf("complete submission should be valid, got %v", err)
	}
	if record["card_number"] != "4111111111111111" {
		t.Fatalf("unexpected card_number value %v", record["card_number"])
	}
}

func TestValidateValidOperatorChain(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("signup", form.WithNodes(
		form.NewField("email", form.FieldTypeEmail, form.Required()),
		form.NewField("confirm_email", form.FieldTypeEmail,
			form.Required(),
			form.VisibleWhen(form.Valid("email")),
		),
	))

	_, err := Validate(inst, map[string]any{"email": ""})
	fieldErrors, ok := err.(Errors)
	if !ok {
		t.Fatalf("expected Errors, got %v", err)
	}
	if len(fieldErrors["email"]) == 0 {
		t.Fatal("email should be missing")
	}
	if len(fieldErrors["confirm_email"]) != 0 {
		t.Fatal("confirm_email is hidden while email is blank and must not be missing")
	}

	_, err = Validate(inst, map[string]any{"email": "a@b.com"})
	fieldErrors, ok = err.(Errors)
	if !ok {
		t.Fatalf("expected Errors, got %v", err)
	}
	if len(fieldErrors["confirm_email"]) == 0 {
		t.Fatal("confirm_email becomes required once email is filled")
	}

	if _, err := Validate(inst, map[string]any{
		"email":         "a@b.com",
		"confirm_email": "a@b.com",
	}); err != nil {
		t.Fatalf("complete submission should be valid, got %v", err)
	}
}

// A field hidden by its conditions never appears in the missing set, no
// matter what its required flag says.
func TestValidateHiddenNeverMissing(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("survey", form.WithNodes(
		form.NewField("other_reason", form.FieldTypeText,
			form.Required(),
			form.VisibleWhen(form.Equals("reason", "other")),
		),
	))

	record, err := Validate(inst, map[string]any{})
	if err != nil {
		t.Fatalf("expected valid empty submission, got %v", err)
	}
	if len(record) != 0 {
		t.Fatalf("expected empty record, got %v", record)
	}
}

func TestValidateAlwaysRequiredWithoutConditions(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("signup", form.WithNodes(
		form.NewField("name", form.FieldTypeText, form.Required()),
	))

	_, err := Validate(inst, map[string]any{})
	fieldErrors, ok := err.(Errors)
	if !ok || len(fieldErrors["name"]) == 0 {
		t.Fatalf("name should be missing, got %v", err)
	}
}

func TestValidateCoercion(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("order", form.WithNodes(
		form.NewField("quantity", form.FieldTypeDecimal),
		form.NewField("gift", form.FieldTypeBoolean),
		form.NewField("note", form.FieldTypeText),
	))

	record, err := Validate(inst, map[string]any{
		"quantity": "12.50",
		"gift":     "on",
		"note":     42,
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	quantity, ok := record["quantity"].(decimal.Decimal)
	if !ok || !quantity.Equal(decimal.RequireFromString("12.50")) {
		t.Fatalf("quantity not coerced to decimal: %v", record["quantity"])
	}
	if record["gift"] != true {
		t.Fatalf("checkbox 'on' should coerce to true, got %v", record["gift"])
	}
	if record["note"] != "42" {
		t.Fatalf("scalar should stringify for text fields, got %v", record["note"])
	}
}

func TestValidateCoercionFailureIsFieldError(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("order", form.WithNodes(
		form.NewField("quantity", form.FieldTypeDecimal),
	))

	_, err := Validate(inst, map[string]any{"quantity": "a dozen"})
	fieldErrors, ok := err.(Errors)
	if !ok || len(fieldErrors["quantity"]) == 0 {
		t.Fatalf("malformed number should be a field error, got %v", err)
	}
}

func TestValidateAbsentValuesOmitted(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("order", form.WithNodes(
		form.NewField("note", form.FieldTypeText),
	))

	record, err := Validate(inst, map[string]any{})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if _, present := record["note"]; present {
		t.Fatal("absent values must be omitted, not defaulted")
	}
}

func TestValidateUnknownFieldTypePassthrough(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("custom", form.WithNodes(
		form.NewField("rating", form.FieldType("stars")),
	))

	record, err := Validate(inst, map[string]any{"rating": 5})
	if err != nil {
		t.Fatalf("unknown field types must degrade gracefully, got %v", err)
	}
	if record["rating"] != 5 {
		t.Fatalf("passthrough should keep the raw value, got %v", record["rating"])
	}
}

func TestValidateRules(t *testing.T) {
	t.Parallel()

	min := 18.0
	max := 99.0
	inst := form.NewInstance("profile", form.WithNodes(
		form.NewField("username", form.FieldTypeText,
			form.WithValidations(form.MinLength(3, ""), form.MaxLength(8, "")),
		),
		form.NewField("email", form.FieldTypeEmail,
			form.WithValidations(form.Email("")),
		),
		form.NewField("age", form.FieldTypeDecimal,
			form.WithValidations(form.Range(&min, &max, "")),
		),
	))

	cases := []struct {
		name   string
		raw    map[string]any
		field  string
		broken bool
	}{
		{"username too short", map[string]any{"username": "ab"}, "username", true},
		{"username too long", map[string]any{"username": "overlylongname"}, "username", true},
		{"username ok", map[string]any{"username": "alice"}, "username", false},
		{"bad email", map[string]any{"email": "not-an-email"}, "email", true},
		{"email with spaces", map[string]any{"email": "a b@c.com"}, "email", true},
		{"good email", map[string]any{"email": "a@b.co"}, "email", false},
		{"age below range", map[string]any{"age": "12"}, "age", true},
		{"age above range", map[string]any{"age": "120"}, "age", true},
		{"age in range", map[string]any{"age": "30"}, "age", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Validate(inst, tc.raw)
			if tc.broken {
				fieldErrors, ok := err.(Errors)
				if !ok || len(fieldErrors[tc.field]) == 0 {
					t.Fatalf("expected error on %s, got %v", tc.field, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected valid submission, got %v", err)
			}
		})
	}
}

func TestValidateRuleErrorsAccumulate(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("profile", form.WithNodes(
		form.NewField("email", form.FieldTypeEmail,
			form.WithValidations(form.MinLength(10, ""), form.Email("")),
		),
	))

	_, err := Validate(inst, map[string]any{"email": "a@b"})
	fieldErrors, ok := err.(Errors)
	if !ok {
		t.Fatalf("expected Errors, got %v", err)
	}
	if len(fieldErrors["email"]) != 2 {
		t.Fatalf("both rules should report independently, got %v", fieldErrors["email"])
	}
}

func TestValidateConcurrentRegistration(t *testing.T) {
	t.Parallel()

	validator := New()
	inst := form.NewInstance("profile", form.WithNodes(
		form.NewField("word", form.FieldTypeText,
			form.WithValidations(form.ValidationRule{Kind: "custom"}),
		),
	))

	// Registration must be safe while passes are in flight: each pass
	// keeps its own snapshot of the registries.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				validator.RegisterRule("custom", func(rule form.ValidationRule, value any) string {
					return ""
				})
				validator.RegisterCoercer(form.FieldTypeText, coerceString)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := validator.Validate(inst, map[string]any{"word": "ok"}); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestValidateUnknownRuleIgnored(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("profile", form.WithNodes(
		form.NewField("name", form.FieldTypeText,
			form.WithValidations(form.ValidationRule{Kind: "sounds_nice"}),
		),
	))

	if _, err := Validate(inst, map[string]any{"name": "x"}); err != nil {
		t.Fatalf("unknown rule kinds are ignored, got %v", err)
	}
}

func TestValidateCustomRule(t *testing.T) {
	t.Parallel()

	validator := New(WithRule("forbidden", func(rule form.ValidationRule, value any) string {
		if value == "nope" {
			return "is not allowed"
		}
		return ""
	}))

	inst := form.NewInstance("profile", form.WithNodes(
		form.NewField("word", form.FieldTypeText,
			form.WithValidations(form.ValidationRule{Kind: "forbidden"}),
		),
	))

	_, err := validator.Validate(inst, map[string]any{"word": "nope"})
	fieldErrors, ok := err.(Errors)
	if !ok || len(fieldErrors["word"]) == 0 || fieldErrors["word"][0] != "is not allowed" {
		t.Fatalf("custom rule should run, got %v", err)
	}
}

func TestValidateFileSet(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("upload", form.WithNodes(
		form.NewField("attachments", form.FieldTypeFiles, form.Required()),
	))

	// Pre-serialized array from the upload collaborator.
	record, err := Validate(inst, map[string]any{
		"attachments": `[{"filename":"cv.pdf","path":"uploads/cv.pdf","provider":"s3"}]`,
	})
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	files, ok := record["attachments"].([]map[string]any)
	if !ok || len(files) != 1 {
		t.Fatalf("expected one decoded file record, got %v", record["attachments"])
	}
	want := map[string]any{"filename": "cv.pdf", "path": "uploads/cv.pdf", "provider": "s3"}
	if diff := cmp.Diff(want, files[0]); diff != "" {
		t.Fatalf("file record mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateFileSetBadJSONSurfacesTypeError(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("upload", form.WithNodes(
		form.NewField("attachments", form.FieldTypeFiles),
	))

	_, err := Validate(inst, map[string]any{"attachments": `[{"filename":`})
	fieldErrors, ok := err.(Errors)
	if !ok || len(fieldErrors["attachments"]) == 0 {
		t.Fatalf("undecodable file set should surface as a type error, got %v", err)
	}
}

func TestValidateBrokenTreeIsConfigError(t *testing.T) {
	t.Parallel()

	inst := form.NewInstance("dup", form.WithNodes(
		form.NewField("email", form.FieldTypeEmail),
		form.NewField("email", form.FieldTypeText),
	))

	_, err := Validate(inst, map[string]any{})
	var configErr *ConfigError
	if !errors.As(err, &configErr) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
}

func TestErrorsSummary(t *testing.T) {
	t.Parallel()

	fieldErrors := Errors{}
	fieldErrors.Add("email", "is required")
	fieldErrors.Add("email", "is required") // duplicate dropped
	fieldErrors.Add("name", "must be at least 3 characters")

	if len(fieldErrors["email"]) != 1 {
		t.Fatalf("duplicates should be dropped, got %v", fieldErrors["email"])
	}
	if fieldErrors.Error() == "" {
		t.Fatal("summary should not be empty")
	}
}
