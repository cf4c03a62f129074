package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/store"
	"github.com/mbolis/quick-form/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConnectBadURI(t *testing.T) {
	_, err := Connect(context.Background(), "notmongo://localhost", "qform")
	assert.ErrorIs(t, err, store.ErrUnavailable)
}

func TestSubmissionBSON(t *testing.T) {
	rec := model.SubmissionRecord{
		ID:     "s1",
		FormID: "f1",
		Values: map[string]model.Answer{
			"text":  model.TextAnswer("Great"),
			"multi": model.SetAnswer("Fast", "Cheap"),
			"empty": model.TextAnswer(""),
		},
		SubmittedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	data, err := bson.Marshal(&rec)
	require.NoError(t, err)

	raw := bson.Raw(data)
	assert.Equal(t, "s1", raw.Lookup("_id").StringValue())
	assert.Equal(t, "f1", raw.Lookup("formId").StringValue())
	assert.Equal(t, "Great", raw.Lookup("values", "text").StringValue())

	var got model.SubmissionRecord
	require.NoError(t, bson.Unmarshal(data, &got))
	assert.True(t, got.Values["multi"].Equal(rec.Values["multi"]))
	assert.Equal(t, []string{"Fast", "Cheap"}, got.Values["multi"].Members())
	assert.False(t, got.Values["empty"].IsSet())
	assert.True(t, rec.SubmittedAt.Equal(got.SubmittedAt))
}

// TestStore runs against a live server named by QFORM_TEST_MONGO_URI.
func TestStore(t *testing.T) {
	uri := os.Getenv("QFORM_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("QFORM_TEST_MONGO_URI not set")
	}

	n := 0
	storetest.Run(t, func(t *testing.T) store.Store {
		n++
		ctx := context.Background()
		s, err := Connect(ctx, uri, fmt.Sprintf("qform_test_%d_%d", time.Now().UnixNano(), n))
		require.NoError(t, err)
		t.Cleanup(func() {
			s.database.Drop(ctx)
			s.Close(ctx)
		})
		return s
	})
}
