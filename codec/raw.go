package codec

import (
	"encoding/json"
	"fmt"
)

// RawValue is an answer as the respondent sent it: nothing, a string, or a
// list of strings.
type RawValue struct {
	text   string
	list   []string
	isList bool
}

func Text(s string) RawValue {
	return RawValue{text: s}
}

func List(items ...string) RawValue {
	return RawValue{list: append([]string{}, items...), isList: true}
}

func (r RawValue) IsList() bool { return r.isList }

func (r RawValue) Text() string { return r.text }

func (r RawValue) List() []string { return r.list }

func (r RawValue) IsEmpty() bool {
	if r.isList {
		return len(r.list) == 0
	}
	return r.text == ""
}

func (r RawValue) MarshalJSON() ([]byte, error) {
	if r.isList {
		return json.Marshal(r.list)
	}
	return json.Marshal(r.text)
}

func (r *RawValue) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*r = RawValue{}
	case string:
		*r = Text(v)
	case bool, float64:
		*r = Text(fmt.Sprint(v))
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("codec: list items must be strings, got %T", item)
			}
			items = append(items, s)
		}
		*r = List(items...)
	default:
		return fmt.Errorf("codec: unsupported answer type %T", v)
	}
	return nil
}
