package store

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/quillfox/confab/pkg/markov"
)

// SetupSchema initializes the model table in the provided database. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaModels = `
CREATE TABLE IF NOT EXISTS models (
    model_name  TEXT PRIMARY KEY,
    model_order INTEGER NOT NULL,
    model_data  BLOB NOT NULL,
    saved_at    TEXT NOT NULL
);
`
	if _, err := db.Exec(schemaModels); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}
	return nil
}

// SQLite persists models as serialized blobs in a single-table SQLite
// database. It holds prepared SQL statements for its four operations, so
// it should be reused rather than recreated per call.
type SQLite struct {
	db         *sql.DB
	stmtSave   *sql.Stmt
	stmtLoad   *sql.Stmt
	stmtList   *sql.Stmt
	stmtDelete *sql.Stmt
	logger     *slog.Logger
}

// NewSQLite creates a model store on the given database connection,
// creating the schema if needed. The store takes ownership of the
// connection; Close releases both the prepared statements and the
// connection itself.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if err := SetupSchema(db); err != nil {
		return nil, err
	}

	stmtSave, err := db.Prepare(`INSERT INTO models (model_name, model_order, model_data, saved_at) VALUES (?, ?, ?, ?)
ON CONFLICT(model_name) DO UPDATE SET model_order = excluded.model_order, model_data = excluded.model_data, saved_at = excluded.saved_at;`)
	if err != nil {
		return nil, err
	}

	stmtLoad, err := db.Prepare(`SELECT model_data FROM models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	stmtList, err := db.Prepare(`SELECT model_name, model_order, LENGTH(model_data), saved_at FROM models ORDER BY model_name;`)
	if err != nil {
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM models WHERE model_name = ?;`)
	if err != nil {
		return nil, err
	}

	return &SQLite{
		db:         db,
		stmtSave:   stmtSave,
		stmtLoad:   stmtLoad,
		stmtList:   stmtList,
		stmtDelete: stmtDelete,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the store. By default, all logs are
// discarded.
func (s *SQLite) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Save serializes the model and upserts it under the given name.
func (s *SQLite) Save(ctx context.Context, name string, m *markov.Model) error {
	var buf bytes.Buffer
	if err := m.Export(&buf); err != nil {
		return fmt.Errorf("could not serialize model %q: %w", name, err)
	}

	savedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.stmtSave.ExecContext(ctx, name, m.Order(), buf.Bytes(), savedAt); err != nil {
		return fmt.Errorf("could not save model %q: %w", name, err)
	}

	s.logger.InfoContext(ctx, "Model saved",
		slog.String("model_name", name),
		slog.Int("model_order", m.Order()),
		slog.Int("bytes", buf.Len()),
	)
	return nil
}

// Load deserializes the model stored under the given name. Options apply
// to the reconstructed model, so a model trained with a normalizer must be
// loaded with the same one.
func (s *SQLite) Load(ctx context.Context, name string, opts ...markov.ModelOption) (*markov.Model, error) {
	var data []byte
	err := s.stmtLoad.QueryRowContext(ctx, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load model %q: %w", name, err)
	}

	m, err := markov.Import(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize model %q: %w", name, err)
	}

	s.logger.InfoContext(ctx, "Model loaded",
		slog.String("model_name", name),
		slog.Int("model_order", m.Order()),
		slog.Int("bytes", len(data)),
	)
	return m, nil
}

// List returns metadata for every stored model, ordered by name.
func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var savedAt string
		if err := rows.Scan(&e.Name, &e.Order, &e.Size, &savedAt); err != nil {
			return nil, fmt.Errorf("could not scan model row: %w", err)
		}
		if e.SavedAt, err = time.Parse(time.RFC3339, savedAt); err != nil {
			return nil, fmt.Errorf("could not parse saved_at for model %q: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating model rows: %w", err)
	}
	return entries, nil
}

// Delete removes the named model. Deleting a model that does not exist
// returns ErrNotFound.
func (s *SQLite) Delete(ctx context.Context, name string) error {
	res, err := s.stmtDelete.ExecContext(ctx, name)
	if err != nil {
		return fmt.Errorf("could not delete model %q: %w", name, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	s.logger.InfoContext(ctx, "Model deleted",
		slog.String("model_name", name),
	)
	return nil
}

// Close releases the prepared statements and closes the underlying
// database connection.
func (s *SQLite) Close() error {
	_ = s.stmtSave.Close()
	_ = s.stmtLoad.Close()
	_ = s.stmtList.Close()
	_ = s.stmtDelete.Close()
	return s.db.Close()
}
