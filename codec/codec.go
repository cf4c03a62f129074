// Package codec validates a respondent's raw answers against field
// definitions and turns them into the values stored on a submission.
//
// Encoding never transforms a value: text passes through unchanged and a
// multi_choice set is only de-duplicated. Decode is the identity of Encode.
// The only computed behaviour is validation.
package codec

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/quick-form/model"
)

type Reason string

const (
	RequiredMissing  Reason = "required_missing"
	OptionNotAllowed Reason = "option_not_allowed"
	WrongShape       Reason = "wrong_shape"
)

// InvalidFieldValue reports why the answer to one field was rejected.
type InvalidFieldValue struct {
	FieldID string `json:"fieldId"`
	Reason  Reason `json:"reason"`
	Value   string `json:"value,omitempty"`
}

func (e *InvalidFieldValue) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid value for field %s: %s (%q)", e.FieldID, e.Reason, e.Value)
	}
	return fmt.Sprintf("invalid value for field %s: %s", e.FieldID, e.Reason)
}

func invalid(f model.FieldDefinition, reason Reason, value string) error {
	return &InvalidFieldValue{FieldID: f.ID, Reason: reason, Value: value}
}

// Encode validates raw against f. When the answer is empty and allowed to
// be, ok is false and nothing should be stored for the field.
func Encode(f model.FieldDefinition, raw RawValue) (answer model.Answer, ok bool, err error) {
	switch f.Variant {
	case model.ShortText, model.Paragraph:
		return encodeText(f, raw)
	case model.SingleSelect, model.SingleChoice:
		return encodeSingle(f, raw)
	case model.MultiChoice:
		return encodeMulti(f, raw)
	}
	return model.Answer{}, false, fmt.Errorf("codec: %w: %q", model.ErrUnknownVariant, string(f.Variant))
}

// Validate is Encode without the result.
func Validate(f model.FieldDefinition, raw RawValue) error {
	_, _, err := Encode(f, raw)
	return err
}

// Decode turns a stored answer back into the raw shape it was encoded from.
func Decode(f model.FieldDefinition, a model.Answer) RawValue {
	if a.IsSet() {
		return List(a.Members()...)
	}
	return Text(a.Text())
}

func encodeText(f model.FieldDefinition, raw RawValue) (model.Answer, bool, error) {
	if raw.IsList() {
		return model.Answer{}, false, invalid(f, WrongShape, "")
	}
	if raw.Text() == "" {
		if f.Required {
			return model.Answer{}, false, invalid(f, RequiredMissing, "")
		}
		return model.Answer{}, false, nil
	}
	return model.TextAnswer(raw.Text()), true, nil
}

func encodeSingle(f model.FieldDefinition, raw RawValue) (model.Answer, bool, error) {
	if raw.IsList() {
		return model.Answer{}, false, invalid(f, WrongShape, "")
	}
	v := raw.Text()
	if v == "" {
		if f.Required {
			return model.Answer{}, false, invalid(f, RequiredMissing, "")
		}
		return model.Answer{}, false, nil
	}
	if !f.HasOption(v) {
		return model.Answer{}, false, invalid(f, OptionNotAllowed, v)
	}
	return model.TextAnswer(v), true, nil
}

func encodeMulti(f model.FieldDefinition, raw RawValue) (model.Answer, bool, error) {
	members := raw.List()
	if !raw.IsList() && raw.Text() != "" {
		members = []string{raw.Text()}
	}
	for _, m := range members {
		if !f.HasOption(m) {
			return model.Answer{}, false, invalid(f, OptionNotAllowed, m)
		}
	}
	if len(members) == 0 {
		if f.Required {
			return model.Answer{}, false, invalid(f, RequiredMissing, "")
		}
		return model.Answer{}, false, nil
	}
	return model.SetAnswer(members...), true, nil
}

// EncodeAll runs Encode for every field, looking answers up by field id.
// A missing raw value counts as empty. Keys that are not field ids are
// ignored. On failure no values are returned and the error is a
// *multierror.Error with one *InvalidFieldValue per rejected field.
func EncodeAll(fields []model.FieldDefinition, raw map[string]RawValue) (map[string]model.Answer, error) {
	values := make(map[string]model.Answer, len(fields))
	var errs *multierror.Error

	for _, f := range fields {
		answer, ok, err := Encode(f, raw[f.ID])
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if ok {
			values[f.ID] = answer
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return values, nil
}

// FieldErrors lists the field validation failures carried by err.
func FieldErrors(err error) []*InvalidFieldValue {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]*InvalidFieldValue, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			var ife *InvalidFieldValue
			if errors.As(e, &ife) {
				out = append(out, ife)
			}
		}
		return out
	}

	var ife *InvalidFieldValue
	if errors.As(err, &ife) {
		return []*InvalidFieldValue{ife}
	}
	return nil
}
