package form

// Fields flattens a node sequence into its fields in document order,
// descending into container children. This is the single tree walk shared by
// the validator, the encoder, and rendering consumers so field ordering stays
// consistent everywhere.
func Fields(nodes []Node) []*Field {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*Field, 0, len(nodes))
	return appendFields(out, nodes)
}

func appendFields(dst []*Field, nodes []Node) []*Field {
	for _, node := range nodes {
		switch typed := node.(type) {
		case *Field:
			dst = append(dst, typed)
		case *Container:
			dst = appendFields(dst, typed.Children)
		}
	}
	return dst
}

// Fields returns the instance's fields in document order.
func (in *Instance) Fields() []*Field {
	if in == nil {
		return nil
	}
	return Fields(in.Nodes)
}

// Field returns the field with the given record name, or nil when the tree
// does not declare one.
func (in *Instance) Field(name string) *Field {
	if in == nil || name == "" {
		return nil
	}
	for _, field := range in.Fields() {
		if field.Name == name {
			return field
		}
	}
	return nil
}
