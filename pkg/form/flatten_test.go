package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldsDocumentOrder(t *testing.T) {
	t.Parallel()

	tree := []Node{
		&Field{Name: "first", Type: FieldTypeText},
		&Container{Kind: ContainerSection, Children: []Node{
			&Field{Name: "second", Type: FieldTypeEmail},
			&Container{Kind: ContainerGroup, Children: []Node{
				&Field{Name: "third", Type: FieldTypeDecimal},
			}},
		}},
		&Container{Kind: ContainerDivider},
		&Field{Name: "fourth", Type: FieldTypeBoolean},
	}

	var names []string
	for _, field := range Fields(tree) {
		names = append(names, field.Name)
	}

	want := []string{"first", "second", "third", "fourth"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsEmptyTree(t *testing.T) {
	t.Parallel()

	if got := Fields(nil); got != nil {
		t.Fatalf("expected nil for empty tree, got %v", got)
	}
	if got := Fields([]Node{&Container{Kind: ContainerDivider}}); len(got) != 0 {
		t.Fatalf("expected no fields from decorative-only tree, got %d", len(got))
	}
}

func TestInstanceFieldLookup(t *testing.T) {
	t.Parallel()

	inst := NewInstance("contact", WithNodes(
		NewContainer(ContainerGroup, WithChildren(
			NewField("email", FieldTypeEmail),
		)),
	))

	if field := inst.Field("email"); field == nil || field.Type != FieldTypeEmail {
		t.Fatalf("expected to find email field, got %+v", field)
	}
	if field := inst.Field("missing"); field != nil {
		t.Fatalf("expected nil for unknown name, got %+v", field)
	}
}
