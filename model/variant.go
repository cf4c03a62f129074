package model

import (
	"fmt"
	"strings"
)

// Variant is the kind of answer a field collects. The set is closed: every
// switch on a Variant must handle each member of Variants.
type Variant string

const (
	ShortText    Variant = "short_text"
	Paragraph    Variant = "paragraph"
	SingleSelect Variant = "single_select"
	SingleChoice Variant = "single_choice"
	MultiChoice  Variant = "multi_choice"
)

// Variants lists every known variant, in builder order.
var Variants = []Variant{ShortText, Paragraph, SingleSelect, SingleChoice, MultiChoice}

// names used by the form builder
var surfaceNames = map[string]Variant{
	"text":     ShortText,
	"textarea": Paragraph,
	"select":   SingleSelect,
	"radio":    SingleChoice,
	"checkbox": MultiChoice,
}

// ParseVariant accepts both the stored variant names and the builder's
// surface names (text, textarea, select, radio, checkbox).
func ParseVariant(s string) (Variant, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := surfaceNames[s]; ok {
		return v, nil
	}
	v := Variant(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return v, nil
}

func (v Variant) Valid() bool {
	switch v {
	case ShortText, Paragraph, SingleSelect, SingleChoice, MultiChoice:
		return true
	}
	return false
}

// IsChoice reports whether answers are restricted to the field's options.
func (v Variant) IsChoice() bool {
	switch v {
	case SingleSelect, SingleChoice, MultiChoice:
		return true
	case ShortText, Paragraph:
		return false
	}
	panic(fmt.Sprintf("model: unhandled variant %q", string(v)))
}

// HasPlaceholder reports whether the placeholder hint applies.
func (v Variant) HasPlaceholder() bool {
	switch v {
	case ShortText, Paragraph:
		return true
	case SingleSelect, SingleChoice, MultiChoice:
		return false
	}
	panic(fmt.Sprintf("model: unhandled variant %q", string(v)))
}

// DefaultLabel is the label a freshly created field receives.
func (v Variant) DefaultLabel() string {
	switch v {
	case ShortText:
		return "Short answer"
	case Paragraph:
		return "Paragraph"
	case SingleSelect, SingleChoice, MultiChoice:
		return "Option"
	}
	panic(fmt.Sprintf("model: unhandled variant %q", string(v)))
}

// Direction moves a field one slot towards the start (Up) or end (Down).
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "-1":
		return Up, nil
	case "down", "1", "+1":
		return Down, nil
	}
	return 0, fmt.Errorf("model: unknown direction %q", s)
}
