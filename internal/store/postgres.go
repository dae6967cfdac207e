package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
)

/*
PostgresStore keeps every record as one JSONB row:

	CREATE TABLE IF NOT EXISTS documents (
	    path       text PRIMARY KEY,
	    value      jsonb NOT NULL,
	    updated_at timestamptz NOT NULL DEFAULT now()
	);

Whole-record writes upsert the row; nested-path writes and merges use
jsonb_set so the record stays a single value. Subscribers are notified
in-process after the write commits, with the full record re-read inside the
same call.
*/
type PostgresStore struct {
	db       *sql.DB
	notifier *notifier
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:       db,
		notifier: newNotifier(),
	}
}

const queryTimeout = 3 * time.Second

func (s *PostgresStore) Read(ctx context.Context, path string) (json.RawMessage, error) {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var value json.RawMessage
	if len(fieldPath) == 0 {
		err = s.db.QueryRowContext(ctx,
			`SELECT value FROM documents WHERE path = $1`, recordPath).Scan(&value)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT value #> $2 FROM documents WHERE path = $1`,
			recordPath, pq.Array(fieldPath)).Scan(&value)
	}
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}
	if value == nil {
		return nil, ErrNotFound
	}

	return value, nil
}

func (s *PostgresStore) List(ctx context.Context, collection string) (map[string]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, value FROM documents WHERE path LIKE $1 || '/%'`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]json.RawMessage)
	for rows.Next() {
		var path string
		var value json.RawMessage
		if err := rows.Scan(&path, &value); err != nil {
			return nil, err
		}
		records[path[len(collection)+1:]] = value
	}

	return records, rows.Err()
}

func (s *PostgresStore) Write(ctx context.Context, path string, value any) error {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err = s.writeOne(ctx, s.db, recordPath, fieldPath, value)
	if err != nil {
		return err
	}

	s.notify(ctx, recordPath)
	return nil
}

func (s *PostgresStore) WriteMulti(ctx context.Context, updates map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	touched := make(map[string]bool)
	for path, value := range updates {
		recordPath, fieldPath, err := splitPath(path)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := s.writeOne(ctx, tx, recordPath, fieldPath, value); err != nil {
			_ = tx.Rollback()
			return err
		}
		touched[recordPath] = true
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for recordPath := range touched {
		s.notify(ctx, recordPath)
	}
	return nil
}

func (s *PostgresStore) Merge(ctx context.Context, path string, fields map[string]any) error {
	recordPath, fieldPath, err := splitPath(path)
	if err != nil {
		return err
	}

	patch, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var result sql.Result
	if len(fieldPath) == 0 {
		result, err = s.db.ExecContext(ctx,
			`UPDATE documents SET value = value || $2, updated_at = now() WHERE path = $1`,
			recordPath, patch)
	} else {
		result, err = s.db.ExecContext(ctx,
			`UPDATE documents
			 SET value = jsonb_set(value, $2, COALESCE(value #> $2, '{}'::jsonb) || $3, true),
			     updated_at = now()
			 WHERE path = $1`,
			recordPath, pq.Array(fieldPath), patch)
	}
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.notify(ctx, recordPath)
	return nil
}

func (s *PostgresStore) Subscribe(path string) *Subscription {
	recordPath, _, err := splitPath(path)
	if err != nil {
		recordPath = path
	}
	return s.notifier.subscribe(recordPath)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) writeOne(ctx context.Context, db execer, recordPath string,
	fieldPath []string, value any) error {

	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if len(fieldPath) == 0 {
		_, err = db.ExecContext(ctx,
			`INSERT INTO documents (path, value) VALUES ($1, $2)
			 ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			recordPath, encoded)
		return err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE documents SET value = jsonb_set(value, $2, $3, true), updated_at = now()
		 WHERE path = $1`,
		recordPath, pq.Array(fieldPath), encoded)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) notify(ctx context.Context, recordPath string) {
	var value json.RawMessage
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM documents WHERE path = $1`, recordPath).Scan(&value)
	if err != nil {
		return
	}
	s.notifier.publish(recordPath, value)
}
