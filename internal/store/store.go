// Package store persists trained chain models under unique names.
//
// Two backends are provided: SQLite for a single-file relational database
// and Bolt for a pure key-value file. Both hold the same thing, the
// versioned JSON produced by the model codec, so models move freely
// between backends through export and import.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/quillfox/confab/pkg/markov"
)

// ErrNotFound indicates that no model with the requested name exists in
// the store.
var ErrNotFound = errors.New("store: model not found")

// Entry describes one persisted model.
type Entry struct {
	Name    string    `json:"name"`
	Order   int       `json:"order"`
	Size    int64     `json:"size"` // serialized size in bytes
	SavedAt time.Time `json:"saved_at"`
}

// Store is the contract shared by the model store backends. Save
// overwrites any model already stored under the same name; Load and
// Delete return ErrNotFound for unknown names.
type Store interface {
	Save(ctx context.Context, name string, m *markov.Model) error
	Load(ctx context.Context, name string, opts ...markov.ModelOption) (*markov.Model, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, name string) error
	Close() error
}
