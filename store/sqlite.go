package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// SQLite persists each conversation as one JSON document row. The document
// shape is the durable contract of core.ConversationState; dashboards and
// evaluators read the doc column directly.
type SQLite struct {
	db    *sql.DB
	locks *keyedLocks
	log   logging.Logger
}

var _ core.ConversationStore = (*SQLite)(nil)

// migration is a single schema step, applied once in order.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create conversations",
		sql: `
			CREATE TABLE conversations (
				id         TEXT PRIMARY KEY,
				doc        TEXT NOT NULL,
				escalated  INTEGER NOT NULL DEFAULT 0,
				updated_at TEXT NOT NULL
			);

			CREATE INDEX idx_conversations_escalated ON conversations (escalated);
		`,
	},
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
// Use ":memory:" for tests.
func OpenSQLite(path string, log logging.Logger) (*SQLite, error) {
	if log == nil {
		log = logging.NoOpLogger{}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// SQLite allows one writer; a single pooled connection also keeps
	// ":memory:" databases from fragmenting across connections.
	db.SetMaxOpenConns(1)

	// WAL mode for concurrent readers (dashboards) alongside turn writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &SQLite{db: db, locks: newKeyedLocks(), log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	log.Info("conversation store opened", "path", path)
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}
	return nil
}

// Get returns the stored document, or a fresh default for an unknown id.
func (s *SQLite) Get(ctx context.Context, conversationID string) (*core.ConversationState, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM conversations WHERE id = ?", conversationID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewConversationState(conversationID), nil
	}
	if err != nil {
		return nil, core.NewStateStoreError("get", conversationID, err)
	}

	var state core.ConversationState
	if err := json.Unmarshal([]byte(doc), &state); err != nil {
		return nil, core.NewStateStoreError("decode", conversationID, err)
	}
	return &state, nil
}

// Update applies an atomic read-modify-write under the id's lock. The row is
// replaced in a single statement, so a failure at any point leaves the
// previously committed document untouched.
func (s *SQLite) Update(ctx context.Context, conversationID string, mutate func(*core.ConversationState) error) (*core.ConversationState, error) {
	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, core.NewStateStoreError("update", conversationID, err)
	}

	working, err := s.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := mutate(working); err != nil {
		return nil, err
	}

	doc, err := json.Marshal(working)
	if err != nil {
		return nil, core.NewStateStoreError("encode", conversationID, err)
	}

	escalated := 0
	if working.IsEscalated {
		escalated = 1
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, doc, escalated, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			doc = excluded.doc,
			escalated = excluded.escalated,
			updated_at = excluded.updated_at
	`, conversationID, string(doc), escalated, working.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, core.NewStateStoreError("write", conversationID, err)
	}

	return working, nil
}
