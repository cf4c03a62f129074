// Package mongostore maps each logical collection to a MongoDB collection.
// Documents are keyed by _id; ids are time ordered, so sorting on _id gives
// insertion order.
package mongostore

import (
	"context"
	"reflect"

	"github.com/mbolis/quick-form/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials uri and binds the named database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, store.Unavailable("mongostore.connect", err)
	}
	return New(client, database), nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, database: client.Database(database)}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := store.AssignID(doc)
	_, err := s.database.Collection(collection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return "", errors.Wrapf(store.ErrDuplicateID, "mongostore: insert %s", id)
	}
	if err != nil {
		return "", store.Unavailable("mongostore.insert", err)
	}
	return id, nil
}

func (s *Store) Replace(ctx context.Context, collection, id string, doc store.Document) error {
	doc.SetDocumentID(id)
	res, err := s.database.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return store.Unavailable("mongostore.replace", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, collection, id string, out store.Document) error {
	res := s.database.Collection(collection).FindOne(ctx, bson.M{"_id": id})
	err := res.Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return store.Unavailable("mongostore.find_one", err)
	}
	return errors.Wrap(res.Decode(out), "mongostore: decode document")
}

func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	if err := filter.Validate(); err != nil {
		return err
	}

	mongoFilter := bson.M{}
	for k, v := range filter {
		mongoFilter[k] = v
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.database.Collection(collection).Find(ctx, mongoFilter, opts)
	if err != nil {
		return store.Unavailable("mongostore.find_many", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return store.Unavailable("mongostore.find_many.decode", err)
	}

	// cursor.All leaves a nil slice when nothing matched
	if v := reflect.ValueOf(out).Elem(); v.Kind() == reflect.Slice && v.IsNil() {
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}
	return nil
}

func (s *Store) DeleteOne(ctx context.Context, collection, id string) error {
	res, err := s.database.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Unavailable("mongostore.delete_one", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Unavailable("mongostore.ping", s.client.Ping(ctx, readpref.Primary()))
}
