// Command formdef loads a form definition, collects values interactively,
// validates them, and optionally submits the record to the definition's
// backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-formdef/pkg/backend"
	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/schema"
	"github.com/goliatone/go-formdef/pkg/validate"
	"github.com/goliatone/go-formdef/pkg/visibility"
)

func main() {
	var (
		definitionFlag = flag.String("definition", "form.json", "path to a form definition (JSON or YAML)")
		valuesFlag     = flag.String("values", "", "optional JSON file with prefilled values (skips prompting)")
		submitFlag     = flag.Bool("submit", false, "submit the validated record to the form's backend")
		timeoutFlag    = flag.Duration("timeout", 30*time.Second, "backend submission timeout")
	)
	flag.Parse()

	data, err := os.ReadFile(*definitionFlag)
	if err != nil {
		log.Fatalf("read definition: %v", err)
	}

	inst, err := schema.Decode(data)
	if err != nil {
		log.Fatalf("decode definition: %v", err)
	}

	var values map[string]any
	if *valuesFlag != "" {
		values, err = loadValues(*valuesFlag)
		if err != nil {
			log.Fatalf("load values: %v", err)
		}
	} else {
		values, err = prompt(inst)
		if err != nil {
			log.Fatalf("prompt: %v", err)
		}
	}

	record, err := validate.Validate(inst, values)
	if err != nil {
		if fieldErrors, ok := err.(validate.Errors); ok {
			printJSON(os.Stderr, map[string]any{"errors": fieldErrors})
			os.Exit(1)
		}
		log.Fatalf("validate: %v", err)
	}

	if *submitFlag {
		if err := submit(inst, record, *timeoutFlag); err != nil {
			log.Fatalf("submit: %v", err)
		}
		return
	}

	printJSON(os.Stdout, record)
}

// prompt walks the fields in document order, asking only for fields that are
// visible given the answers so far. Visibility is re-evaluated before every
// prompt so answering one field can reveal or hide later ones.
func prompt(inst *form.Instance) (map[string]any, error) {
	values := make(map[string]any)

	for _, field := range inst.Fields() {
		if field.Disabled {
			continue
		}
		if !visibility.Visible(field.VisibleWhen, values) {
			continue
		}

		answer, err := ask(field)
		if err != nil {
			return nil, err
		}
		if answer != nil {
			values[field.Name] = answer
		}
	}
	return values, nil
}

func ask(field *form.Field) (any, error) {
	message := field.Label
	if message == "" {
		message = field.Name
	}

	switch field.Type {
	case form.FieldTypeBoolean:
		var out bool
		prompt := &survey.Confirm{Message: message, Help: field.Description}
		if err := survey.AskOne(prompt, &out); err != nil {
			return nil, err
		}
		return out, nil

	case form.FieldTypeSelect:
		if len(field.Options) == 0 {
			break
		}
		labels := make([]string, len(field.Options))
		for i, option := range field.Options {
			if option.Bare() {
				labels[i] = option.Value
			} else {
				labels[i] = option.Label
			}
		}
		var index int
		prompt := &survey.Select{Message: message, Options: labels, Help: field.Description}
		if err := survey.AskOne(prompt, &index); err != nil {
			return nil, err
		}
		return field.Options[index].Value, nil

	case form.FieldTypeTextarea:
		var out string
		prompt := &survey.Multiline{Message: message, Help: field.Description}
		if err := survey.AskOne(prompt, &out); err != nil {
			return nil, err
		}
		return emptyToNil(out), nil
	}

	var out string
	prompt := &survey.Input{Message: message, Help: field.Description, Default: field.Placeholder}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, err
	}
	return emptyToNil(out), nil
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func submit(inst *form.Instance, record validate.Record, timeout time.Duration) error {
	if inst.Backend == nil {
		return fmt.Errorf("definition %q has no backend", inst.Name)
	}

	impl, ok := backend.Default().Lookup(inst.Backend.Module, inst.Backend.Function)
	if !ok {
		return fmt.Errorf("backend %s.%s is not registered", inst.Backend.Module, inst.Backend.Function)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := impl.Submit(ctx, *inst.Backend, record)
	if err != nil {
		return err
	}
	if !result.OK() {
		fieldErrors := make(validate.Errors)
		fieldErrors.Merge(result.FieldErrors)
		printJSON(os.Stderr, map[string]any{"errors": fieldErrors})
		os.Exit(1)
	}

	printJSON(os.Stdout, result.Payload)
	return nil
}

func loadValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func printJSON(out *os.File, value any) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Fprintln(out, string(encoded))
}
