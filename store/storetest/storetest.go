// Package storetest holds the behaviour every store.Store must share.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/mbolis/quick-form/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Doc struct {
	ID    string `json:"id" bson:"_id"`
	Owner string `json:"owner" bson:"owner"`
	N     int    `json:"n" bson:"n"`
}

func (d *Doc) DocumentID() string { return d.ID }

func (d *Doc) SetDocumentID(id string) { d.ID = id }

// Run exercises a fresh store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	ctx := context.Background()

	t.Run("insert assigns id", func(t *testing.T) {
		s := newStore(t)
		doc := &Doc{Owner: "alice", N: 1}
		id, err := s.Insert(ctx, "things", doc)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, doc.ID)

		var got Doc
		require.NoError(t, s.FindOne(ctx, "things", id, &got))
		assert.Equal(t, *doc, got)
	})

	t.Run("insert keeps given id", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "things", &Doc{ID: "fixed"})
		require.NoError(t, err)
		assert.Equal(t, "fixed", id)
	})

	t.Run("insert duplicate id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Insert(ctx, "things", &Doc{ID: "fixed", N: 1})
		require.NoError(t, err)

		_, err = s.Insert(ctx, "things", &Doc{ID: "fixed", N: 2})
		assert.ErrorIs(t, err, store.ErrDuplicateID)
		assert.NotErrorIs(t, err, store.ErrUnavailable)

		var got Doc
		require.NoError(t, s.FindOne(ctx, "things", "fixed", &got))
		assert.Equal(t, 1, got.N, "the first document is kept")
	})

	t.Run("find one missing", func(t *testing.T) {
		s := newStore(t)
		var got Doc
		assert.ErrorIs(t, s.FindOne(ctx, "things", "nope", &got), store.ErrNotFound)
	})

	t.Run("collections are separate", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "things", &Doc{N: 1})
		require.NoError(t, err)

		var got Doc
		assert.ErrorIs(t, s.FindOne(ctx, "others", id, &got), store.ErrNotFound)
	})

	t.Run("replace", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "things", &Doc{Owner: "alice", N: 1})
		require.NoError(t, err)

		require.NoError(t, s.Replace(ctx, "things", id, &Doc{Owner: "alice", N: 2}))
		var got Doc
		require.NoError(t, s.FindOne(ctx, "things", id, &got))
		assert.Equal(t, 2, got.N)
		assert.Equal(t, id, got.ID)

		assert.ErrorIs(t, s.Replace(ctx, "things", "nope", &Doc{}), store.ErrNotFound)
	})

	t.Run("find many filters and keeps insertion order", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 10; i++ {
			owner := "alice"
			if i%2 == 1 {
				owner = "bob"
			}
			_, err := s.Insert(ctx, "things", &Doc{Owner: owner, N: i})
			require.NoError(t, err)
		}

		var got []Doc
		require.NoError(t, s.FindMany(ctx, "things", store.Filter{"owner": "alice"}, &got))
		require.Len(t, got, 5)
		for i, d := range got {
			assert.Equal(t, i*2, d.N)
		}

		var again []Doc
		require.NoError(t, s.FindMany(ctx, "things", store.Filter{"owner": "alice"}, &again))
		assert.Equal(t, got, again, "order is stable")

		var all []Doc
		require.NoError(t, s.FindMany(ctx, "things", nil, &all))
		assert.Len(t, all, 10)
	})

	t.Run("find many empty", func(t *testing.T) {
		s := newStore(t)
		got := []Doc{{N: 1}}
		require.NoError(t, s.FindMany(ctx, "things", store.Filter{"owner": "nobody"}, &got))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("find many rejects bad keys", func(t *testing.T) {
		s := newStore(t)
		var got []Doc
		err := s.FindMany(ctx, "things", store.Filter{"a') OR 1=1 --": "x"}, &got)
		assert.ErrorIs(t, err, store.ErrBadFilter)
	})

	t.Run("delete one", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Insert(ctx, "things", &Doc{N: 1})
		require.NoError(t, err)

		require.NoError(t, s.DeleteOne(ctx, "things", id))
		var got Doc
		assert.ErrorIs(t, s.FindOne(ctx, "things", id, &got), store.ErrNotFound)
		assert.ErrorIs(t, s.DeleteOne(ctx, "things", id), store.ErrNotFound)
	})

	t.Run("concurrent inserts", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Insert(ctx, "things", &Doc{Owner: "alice", N: i})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		var got []Doc
		require.NoError(t, s.FindMany(ctx, "things", store.Filter{"owner": "alice"}, &got))
		assert.Len(t, got, 20)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
