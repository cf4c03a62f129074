// Package store defines the document store the form service persists
// through. Every call reads or writes exactly one document, or reads a list;
// there are no multi-document transactions.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// Logical collections.
const (
	Forms       = "forms"
	Submissions = "submissions"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrUnavailable = errors.New("store unavailable")
	ErrBadFilter   = errors.New("invalid filter")
	ErrDuplicateID = errors.New("document id already exists")
)

// Document is anything the store can assign an id to.
type Document interface {
	DocumentID() string
	SetDocumentID(id string)
}

// Filter matches documents whose top-level key equals the given value.
type Filter map[string]string

type Store interface {
	// Insert writes doc as a new document. An empty id is assigned first.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Replace overwrites the whole document with the given id.
	Replace(ctx context.Context, collection, id string, doc Document) error
	// FindOne decodes the document with the given id into out.
	FindOne(ctx context.Context, collection, id string, out Document) error
	// FindMany decodes every matching document into out, a pointer to a
	// slice, in insertion order.
	FindMany(ctx context.Context, collection string, filter Filter, out any) error
	DeleteOne(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
}

// UnavailableError wraps an infrastructure failure. It matches
// ErrUnavailable with errors.Is.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrUnavailable, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Op: op, Err: err}
}

// AssignID gives doc a fresh time-ordered id when it has none.
func AssignID(doc Document) string {
	if doc.DocumentID() == "" {
		id, err := uuid.NewV7()
		if err != nil {
			id = uuid.New()
		}
		doc.SetDocumentID(id.String())
	}
	return doc.DocumentID()
}

var reKey = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (f Filter) Validate() error {
	for k := range f {
		if !reKey.MatchString(k) {
			return fmt.Errorf("%w: key %q", ErrBadFilter, k)
		}
	}
	return nil
}

// DecodeJSONList decodes JSON documents, in order, into out (a pointer to a
// slice).
func DecodeJSONList(docs [][]byte, out any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(d)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}
