// Package sqlstore keeps documents as JSON bodies in the SQLite document
// table. Insertion order is the table's autoincrement sequence.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/mbolis/quick-form/store"
	"github.com/pkg/errors"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db}
}

func (s *Store) Insert(ctx context.Context, collection string, doc store.Document) (string, error) {
	id := store.AssignID(doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, "sqlstore: encode document")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO document (collection, id, body)
		VALUES (?, ?, ?)`,
		collection,
		id,
		string(body),
	)
	if isUniqueViolation(err) {
		return "", errors.Wrapf(store.ErrDuplicateID, "sqlstore: insert %s", id)
	}
	if err != nil {
		return "", store.Unavailable("sqlstore.insert", err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (s *Store) Replace(ctx context.Context, collection, id string, doc store.Document) error {
	doc.SetDocumentID(id)
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "sqlstore: encode document")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE document
		SET body = ?
		WHERE collection = ?
			AND id = ?`,
		string(body),
		collection,
		id,
	)
	if err != nil {
		return store.Unavailable("sqlstore.replace", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable("sqlstore.replace.verify", err)
	}
	if n < 1 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, collection, id string, out store.Document) error {
	var body []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM document
		WHERE collection = ?
			AND id = ?`,
		collection,
		id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return store.Unavailable("sqlstore.find_one", err)
	}

	return errors.Wrap(json.Unmarshal(body, out), "sqlstore: decode document")
}

func (s *Store) FindMany(ctx context.Context, collection string, filter store.Filter, out any) error {
	query, args, err := findManyQuery(collection, filter)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return store.Unavailable("sqlstore.find_many", err)
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return store.Unavailable("sqlstore.find_many.scan", err)
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return store.Unavailable("sqlstore.find_many.rows", err)
	}

	return errors.Wrap(store.DecodeJSONList(bodies, out), "sqlstore: decode documents")
}

func findManyQuery(collection string, filter store.Filter) (string, []any, error) {
	if err := filter.Validate(); err != nil {
		return "", nil, err
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var q strings.Builder
	q.WriteString("SELECT body FROM document WHERE collection = ?")
	args := []any{collection}
	for _, k := range keys {
		q.WriteString(" AND json_extract(body, ?) = ?")
		args = append(args, "$."+k, filter[k])
	}
	q.WriteString(" ORDER BY seq")
	return q.String(), args, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM document
		WHERE collection = ?
			AND id = ?`,
		collection,
		id,
	)
	if err != nil {
		return store.Unavailable("sqlstore.delete_one", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable("sqlstore.delete_one.verify", err)
	}
	if n < 1 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return store.Unavailable("sqlstore.ping", s.db.PingContext(ctx))
}
