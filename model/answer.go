package model

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Answer is an encoded value: a single string for text and single choice
// fields, a set of strings for multi_choice. Both JSON and BSON carry a
// scalar as a string and a set as an array.
type Answer struct {
	text    string
	members []string
	isSet   bool
}

func TextAnswer(s string) Answer {
	return Answer{text: s}
}

// SetAnswer builds a set answer. Members keep the order given; duplicates
// are dropped.
func SetAnswer(members ...string) Answer {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return Answer{members: out, isSet: true}
}

func (a Answer) IsSet() bool { return a.isSet }

// Text returns the scalar value; empty for sets.
func (a Answer) Text() string { return a.text }

// Members returns a copy of the set members in stored order; nil for scalars.
func (a Answer) Members() []string {
	if !a.isSet {
		return nil
	}
	return append([]string{}, a.members...)
}

func (a Answer) IsEmpty() bool {
	if a.isSet {
		return len(a.members) == 0
	}
	return a.text == ""
}

// Equal compares two answers; sets compare without regard to order.
func (a Answer) Equal(b Answer) bool {
	if a.isSet != b.isSet {
		return false
	}
	if !a.isSet {
		return a.text == b.text
	}
	if len(a.members) != len(b.members) {
		return false
	}
	in := make(map[string]bool, len(a.members))
	for _, m := range a.members {
		in[m] = true
	}
	for _, m := range b.members {
		if !in[m] {
			return false
		}
	}
	return true
}

func (a Answer) String() string {
	if a.isSet {
		return fmt.Sprint(a.members)
	}
	return a.text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.isSet {
		return json.Marshal(a.Members())
	}
	return json.Marshal(a.text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*a = Answer{}
	case string:
		*a = TextAnswer(v)
	case []any:
		members := make([]string, 0, len(v))
		for _, m := range v {
			s, ok := m.(string)
			if !ok {
				return fmt.Errorf("model: answer member must be a string, got %T", m)
			}
			members = append(members, s)
		}
		*a = SetAnswer(members...)
	default:
		return fmt.Errorf("model: answer must be a string or an array of strings, got %T", v)
	}
	return nil
}

func (a Answer) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if a.isSet {
		return bson.MarshalValue(a.Members())
	}
	return bson.MarshalValue(a.text)
}

func (a *Answer) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*a = Answer{}
	case bsontype.String:
		*a = TextAnswer(raw.StringValue())
	case bsontype.Array:
		var members []string
		if err := raw.Unmarshal(&members); err != nil {
			return err
		}
		*a = SetAnswer(members...)
	default:
		return fmt.Errorf("model: cannot decode answer from BSON %s", t)
	}
	return nil
}
