package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quillfox/confab/pkg/markov"
)

// setupSQLite creates a store on a fresh temporary database file. It uses
// t.Cleanup to ensure resources are released.
func setupSQLite(t *testing.T) (*sql.DB, *SQLite) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-4000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	s, err := NewSQLite(db)
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return db, s
}

// setupBolt creates a store on a fresh temporary bolt file.
func setupBolt(t *testing.T) *Bolt {
	t.Helper()
	s, err := NewBolt(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewBolt() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// setupSQLiteBench creates a store for benchmarking.
func setupSQLiteBench(b *testing.B) (*sql.DB, *SQLite) {
	b.Helper()
	dbFile := filepath.Join(b.TempDir(), "bench.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=OFF&_cache_size=-16000")
	if err != nil {
		b.Fatalf("failed to open database: %v", err)
	}

	s, err := NewSQLite(db)
	if err != nil {
		b.Fatalf("NewSQLite() error = %v", err)
	}
	b.Cleanup(func() { _ = s.Close() })

	return db, s
}

// setupBoltBench creates a bolt store for benchmarking.
func setupBoltBench(b *testing.B) *Bolt {
	b.Helper()
	s, err := NewBolt(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("NewBolt() error = %v", err)
	}
	b.Cleanup(func() { _ = s.Close() })

	return s
}

// backends enumerates every Store implementation so contract tests run
// against each of them.
var backends = map[string]func(*testing.T) Store{
	"SQLite": func(t *testing.T) Store {
		_, s := setupSQLite(t)
		return s
	},
	"Bolt": func(t *testing.T) Store {
		return setupBolt(t)
	},
}

// trainedModel builds an order-2 model from space-separated sequences.
func trainedModel(t *testing.T, seqs ...string) *markov.Model {
	t.Helper()
	m, err := markov.New(2)
	if err != nil {
		t.Fatalf("New(2) error = %v", err)
	}
	for _, seq := range seqs {
		if err := m.Train(strings.Fields(seq)); err != nil {
			t.Fatalf("Train(%q) error = %v", seq, err)
		}
	}
	return m
}

// benchModel builds a deterministic model large enough for store benchmarks.
func benchModel(b *testing.B) *markov.Model {
	b.Helper()
	m, err := markov.New(2)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		seq := fmt.Sprintf("w%d w%d w%d w%d .", i%37, (i*7)%37, (i*13)%37, (i*29)%37)
		if err := m.Train(strings.Fields(seq)); err != nil {
			b.Fatal(err)
		}
	}
	return m
}
