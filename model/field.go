package model

import "fmt"

const DefaultLayout = "full"

// FieldPatch holds the members to change on a field; nil members are left
// as they are. There is deliberately no way to change ID or Variant.
type FieldPatch struct {
	Label       *string   `json:"label,omitempty"`
	Placeholder *string   `json:"placeholder,omitempty"`
	Required    *bool     `json:"required,omitempty"`
	Options     *[]string `json:"options,omitempty"`
	Layout      *string   `json:"layout,omitempty"`
}

// Create builds a new field of the given variant with a fresh id. An empty
// seedLabel falls back to the variant's default label.
func Create(variant Variant, seedLabel string) (FieldDefinition, error) {
	if !variant.Valid() {
		return FieldDefinition{}, fmt.Errorf("%w: %q", ErrUnknownVariant, string(variant))
	}

	label := seedLabel
	if label == "" {
		label = variant.DefaultLabel()
	}

	options := []string{}
	if variant.IsChoice() {
		options = []string{"Option 1", "Option 2"}
	}

	return FieldDefinition{
		ID:       NewID(),
		Variant:  variant,
		Label:    label,
		Required: false,
		Options:  options,
		Layout:   DefaultLayout,
	}, nil
}

// Patch merges the non-nil members of p into a copy of f.
func Patch(f FieldDefinition, p FieldPatch) FieldDefinition {
	out := f.Clone()
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Placeholder != nil {
		out.Placeholder = *p.Placeholder
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.Options != nil {
		out.Options = append([]string{}, (*p.Options)...)
	}
	if p.Layout != nil {
		out.Layout = *p.Layout
	}
	return out.Normalize()
}

// Reorder moves the field with the given id one slot in dir. Moving past
// either end leaves the order as it is.
func Reorder(fields []FieldDefinition, fieldID string, dir Direction) ([]FieldDefinition, error) {
	i := indexOf(fields, fieldID)
	if i < 0 {
		return fields, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldID)
	}

	out := make([]FieldDefinition, len(fields))
	copy(out, fields)

	j := i + int(dir)
	if j < 0 || j >= len(out) {
		return out, nil
	}
	out[i], out[j] = out[j], out[i]
	return out, nil
}

// Normalize clears options and placeholder where the variant does not use
// them, and makes sure Options is never nil.
func (f FieldDefinition) Normalize() FieldDefinition {
	if !f.Variant.Valid() {
		return f
	}
	if !f.Variant.IsChoice() || f.Options == nil {
		f.Options = []string{}
	}
	if !f.Variant.HasPlaceholder() {
		f.Placeholder = ""
	}
	return f
}

func (f FieldDefinition) Clone() FieldDefinition {
	if f.Options != nil {
		f.Options = append([]string{}, f.Options...)
	}
	return f
}

// HasOption reports whether value is one of the field's options.
func (f FieldDefinition) HasOption(value string) bool {
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}

// Validate checks the structural rules of a single field.
func (f FieldDefinition) Validate() error {
	if !f.Variant.Valid() {
		return &FieldError{f.ID, fmt.Errorf("%w: %q", ErrUnknownVariant, string(f.Variant))}
	}
	if !f.Variant.IsChoice() {
		return nil
	}
	if len(f.Options) == 0 {
		return &FieldError{f.ID, ErrMissingOptions}
	}
	seen := make(map[string]bool, len(f.Options))
	for _, o := range f.Options {
		if seen[o] {
			return &FieldError{f.ID, fmt.Errorf("%w: %q", ErrDuplicateOption, o)}
		}
		seen[o] = true
	}
	return nil
}

func indexOf(fields []FieldDefinition, fieldID string) int {
	for i, f := range fields {
		if f.ID == fieldID {
			return i
		}
	}
	return -1
}
