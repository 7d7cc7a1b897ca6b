package backend

import (
	"context"
	"testing"

	"github.com/goliatone/go-formdef/pkg/form"
	"github.com/goliatone/go-formdef/pkg/validate"
)

func noopBackend() Backend {
	return Func(func(context.Context, form.BackendRef, validate.Record) (Result, error) {
		return Result{}, nil
	})
}

func TestRegistryResolution(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MustRegister("crm", "create_lead", noopBackend(), "pipeline")

	if !registry.KnownModule("crm") {
		t.Fatal("registered module should resolve")
	}
	if registry.KnownModule("hr") {
		t.Fatal("unregistered module must not resolve")
	}
	if !registry.KnownFunction("crm", "create_lead") {
		t.Fatal("registered function should resolve")
	}
	if registry.KnownFunction("crm", "delete_everything") {
		t.Fatal("unregistered function must not resolve")
	}
	if !registry.KnownConfigKey("crm", "pipeline") {
		t.Fatal("registered config key should resolve")
	}
	if registry.KnownConfigKey("crm", "password") {
		t.Fatal("unregistered config key must not resolve")
	}

	if _, ok := registry.Lookup("crm", "create_lead"); !ok {
		t.Fatal("Lookup should return the registered backend")
	}
}

func TestRegistryRejectsBlankIdentifiers(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	if err := registry.Register("", "submit", noopBackend()); err == nil {
		t.Fatal("blank module should be rejected")
	}
	if err := registry.Register("m", "", noopBackend()); err == nil {
		t.Fatal("blank function should be rejected")
	}
	if err := registry.Register("m", "submit", nil); err == nil {
		t.Fatal("nil implementation should be rejected")
	}
}

func TestRegistryConfigKeysAccumulate(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MustRegister("crm", "create_lead", noopBackend(), "pipeline")
	registry.MustRegister("crm", "update_lead", noopBackend(), "owner")

	if !registry.KnownConfigKey("crm", "pipeline") || !registry.KnownConfigKey("crm", "owner") {
		t.Fatal("config keys from every registration should resolve")
	}
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	t.Parallel()

	registry := Default()
	if !registry.KnownFunction("memory", "submit") {
		t.Fatal("memory backend should be registered by default")
	}
	if !registry.KnownFunction("webhook", "submit") {
		t.Fatal("webhook backend should be registered by default")
	}
}
