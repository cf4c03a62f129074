package model

import (
	"fmt"
	"strings"
	"time"
)

// AddField appends a newly created field to the end of the form.
func (f *FormDefinition) AddField(variant Variant, seedLabel string) (FieldDefinition, error) {
	field, err := Create(variant, seedLabel)
	if err != nil {
		return FieldDefinition{}, err
	}
	f.Fields = append(f.Fields, field)
	return field, nil
}

// RemoveField drops the field with the given id. Answers already stored
// under that id are not touched.
func (f *FormDefinition) RemoveField(fieldID string) error {
	i := indexOf(f.Fields, fieldID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFieldNotFound, fieldID)
	}
	f.Fields = append(f.Fields[:i:i], f.Fields[i+1:]...)
	return nil
}

func (f *FormDefinition) MoveField(fieldID string, dir Direction) error {
	fields, err := Reorder(f.Fields, fieldID, dir)
	if err != nil {
		return err
	}
	f.Fields = fields
	return nil
}

func (f *FormDefinition) PatchField(fieldID string, p FieldPatch) (FieldDefinition, error) {
	i := indexOf(f.Fields, fieldID)
	if i < 0 {
		return FieldDefinition{}, fmt.Errorf("%w: %s", ErrFieldNotFound, fieldID)
	}
	f.Fields[i] = Patch(f.Fields[i], p)
	return f.Fields[i], nil
}

func (f *FormDefinition) Field(fieldID string) (FieldDefinition, bool) {
	i := indexOf(f.Fields, fieldID)
	if i < 0 {
		return FieldDefinition{}, false
	}
	return f.Fields[i], true
}

// Validate checks the form can be saved: it must have a title, and its
// fields must keep the id and option invariants.
func (f *FormDefinition) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrMissingTitle
	}

	ids := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		if field.ID == "" {
			return &FieldError{field.ID, ErrMissingFieldID}
		}
		if ids[field.ID] {
			return &FieldError{field.ID, ErrDuplicateFieldID}
		}
		ids[field.ID] = true

		if err := field.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// AssignFieldIDs gives a fresh id to every field that has none.
func (f *FormDefinition) AssignFieldIDs() {
	for i := range f.Fields {
		if f.Fields[i].ID == "" {
			f.Fields[i].ID = NewID()
		}
	}
}

// Normalize applies FieldDefinition.Normalize to every field and makes
// sure Fields is never nil.
func (f *FormDefinition) Normalize() {
	if f.Fields == nil {
		f.Fields = []FieldDefinition{}
	}
	for i := range f.Fields {
		f.Fields[i] = f.Fields[i].Normalize()
	}
}

func (f *FormDefinition) Clone() *FormDefinition {
	out := *f
	out.Fields = make([]FieldDefinition, len(f.Fields))
	for i, field := range f.Fields {
		out.Fields[i] = field.Clone()
	}
	return &out
}

// Duplicate copies the form under a new title. The copy has no id yet and
// every field gets a fresh id, so answers to the original can never be
// mistaken for answers to the copy.
func (f *FormDefinition) Duplicate() *FormDefinition {
	out := f.Clone()
	out.ID = ""
	out.Title = f.Title + " (copy)"
	out.CreatedAt = time.Time{}
	for i := range out.Fields {
		out.Fields[i].ID = NewID()
	}
	return out
}
