package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pocketledger/internal/kv"
	"pocketledger/internal/log"

	_ "modernc.org/sqlite"
)

const upsertSQL = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// SQLiteStore implements kv.Store on a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// busy_timeout applies to every connection opened from the DSN, so writers
	// in other processes wait for the lock instead of failing with SQLITE_BUSY
	dsn := dbPath + "?_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps pragmas in effect and matches sqlite's single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateSchema(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.FromContext(context.Background()).WithComponent(log.ComponentStorage).Debug("Schema ready",
		log.FieldOperation, log.OpMigrate,
		log.FieldSchemaVersion, version)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get implements kv.Store
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select key %s: %w", key, err)
	}
	return value, nil
}

// Set implements kv.Store
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, upsertSQL, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert key %s: %w", key, err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentStorage).DebugContext(ctx, "Value saved to SQLite",
		log.FieldKey, key,
		log.FieldBytes, len(value))
	return nil
}

// Remove implements kv.Store
func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}

	log.FromContext(ctx).WithComponent(log.ComponentStorage).DebugContext(ctx, "Value removed from SQLite", log.FieldKey, key)
	return nil
}

// Update implements kv.Updater. The read and the write run in one
// BEGIN IMMEDIATE transaction, which holds sqlite's write lock against every
// other connection to the file, including ones in other processes.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn func(current []byte, exists bool) ([]byte, error)) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("begin update of key %s: %w", key, err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if _, err := conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Rollback failed",
				log.FieldKey, key,
				log.FieldError, err)
		}
	}()

	var current []byte
	err = conn.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&current)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("select key %s: %w", key, err)
	}

	next, err := fn(current, exists)
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, upsertSQL, key, next, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert key %s: %w", key, err)
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit update of key %s: %w", key, err)
	}
	committed = true

	log.FromContext(ctx).WithComponent(log.ComponentStorage).DebugContext(ctx, "Value updated in SQLite",
		log.FieldKey, key,
		log.FieldBytes, len(next))
	return nil
}
