// Package memstore keeps documents in process memory. Documents are stored
// JSON-encoded so readers never share memory with writers.
package memstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mbolis/quick-form/store"
	"github.com/pkg/errors"
)

type entry struct {
	id   string
	body []byte
}

type Store struct {
	mu          sync.RWMutex
	collections map[string][]entry
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: make(map[string][]entry)}
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := store.AssignID(doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "memstore: encode document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.collections[collection] {
		if e.id == id {
			return "", errors.Wrapf(store.ErrDuplicateID, "memstore: insert %s", id)
		}
	}
	s.collections[collection] = append(s.collections[collection], entry{id, body})
	return id, nil
}

func (s *Store) Replace(ctx context.Context, collection, id string, doc store.Document) error {
	doc.SetDocumentID(id)
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "memstore: encode document")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.collections[collection]
	for i := range entries {
		if entries[i].id == id {
			entries[i].body = body
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) FindOne(ctx context.Context, collection, id string, out store.Document) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.collections[collection] {
		if e.id == id {
			return json.Unmarshal(e.body, out)
		}
	}
	return store.ErrNotFound
}

func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var bodies [][]byte
	for _, e := range s.collections[collection] {
		ok, err := matches(e.body, filter)
		if err != nil {
			return err
		}
		if ok {
			bodies = append(bodies, e.body)
		}
	}
	return store.DecodeJSONList(bodies, out)
}

func (s *Store) DeleteOne(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.collections[collection]
	for i := range entries {
		if entries[i].id == id {
			s.collections[collection] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func matches(body []byte, filter store.Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return false, err
	}
	for k, want := range filter {
		got, ok := doc[k].(string)
		if !ok || got != want {
			return false, nil
		}
	}
	return true, nil
}
