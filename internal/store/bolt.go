package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"

	"github.com/quillfox/confab/pkg/markov"
)

var (
	bucketModels = []byte("models")
	bucketMeta   = []byte("meta")
)

// boltMeta is the metadata record kept alongside each model blob.
type boltMeta struct {
	Order   int    `json:"order"`
	SavedAt string `json:"saved_at"`
}

// Bolt persists models in a bbolt key-value file. Model blobs live in one
// bucket and their metadata in another, both keyed by model name. Bolt
// transactions carry no context, so the context is only checked before
// each operation starts.
type Bolt struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// NewBolt opens or creates the database file at path and ensures the
// buckets exist. The file is locked for the lifetime of the store; Close
// releases it.
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{NoFreelistSync: true})
	if err != nil {
		return nil, fmt.Errorf("could not open bolt file %q: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketModels); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not create buckets: %w", err)
	}

	return &Bolt{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// SetLogger sets the logger for the store. By default, all logs are
// discarded.
func (s *Bolt) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Save serializes the model and writes the blob and its metadata in one
// transaction.
func (s *Bolt) Save(ctx context.Context, name string, m *markov.Model) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := m.Export(&buf); err != nil {
		return fmt.Errorf("could not serialize model %q: %w", name, err)
	}

	meta, err := json.Marshal(boltMeta{
		Order:   m.Order(),
		SavedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("could not marshal metadata for model %q: %w", name, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketModels).Put([]byte(name), buf.Bytes()); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(name), meta)
	})
	if err != nil {
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
func (s *Bolt) Load(ctx context.Context, name string, opts ...markov.ModelOption) (*markov.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketModels).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		// The value is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
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

// List returns metadata for every stored model. Bucket keys iterate in
// byte order, so entries come back ordered by name.
func (s *Bolt) List(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		models := tx.Bucket(bucketModels)
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			var meta boltMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("could not unmarshal metadata for model %q: %w", k, err)
			}
			savedAt, err := time.Parse(time.RFC3339, meta.SavedAt)
			if err != nil {
				return fmt.Errorf("could not parse saved_at for model %q: %w", k, err)
			}
			entries = append(entries, Entry{
				Name:    string(k),
				Order:   meta.Order,
				Size:    int64(len(models.Get(k))),
				SavedAt: savedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("could not list models: %w", err)
	}
	return entries, nil
}

// Delete removes the named model and its metadata. Deleting a model that
// does not exist returns ErrNotFound.
func (s *Bolt) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		models := tx.Bucket(bucketModels)
		if models.Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		if err := models.Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Delete([]byte(name))
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("could not delete model %q: %w", name, err)
	}

	s.logger.InfoContext(ctx, "Model deleted",
		slog.String("model_name", name),
	)
	return nil
}

// Close releases the database file lock.
func (s *Bolt) Close() error {
	return s.db.Close()
}
