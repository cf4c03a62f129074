package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Unavailable("op", cause)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "op")
	assert.NoError(t, Unavailable("op", nil))
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, Filter{"formId": "x", "owner_id": "y"}.Validate())
	assert.ErrorIs(t, Filter{"$.a": "x"}.Validate(), ErrBadFilter)
	assert.ErrorIs(t, Filter{"": "x"}.Validate(), ErrBadFilter)
}

type doc struct {
	ID string `json:"id"`
}

func (d *doc) DocumentID() string { return d.ID }

func (d *doc) SetDocumentID(id string) { d.ID = id }

func TestAssignID(t *testing.T) {
	d := &doc{}
	id := AssignID(d)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, AssignID(d), "an assigned id is kept")
}

func TestDecodeJSONList(t *testing.T) {
	var out []doc
	assert.NoError(t, DecodeJSONList([][]byte{[]byte(`{"id":"a"}`), []byte(`{"id":"b"}`)}, &out))
	assert.Equal(t, []doc{{"a"}, {"b"}}, out)

	assert.NoError(t, DecodeJSONList(nil, &out))
	assert.Empty(t, out)
}
