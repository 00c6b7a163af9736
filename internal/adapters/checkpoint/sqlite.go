package checkpoint

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// SQLiteStore хранит чекпоинт строкой таблицы checkpoints
type SQLiteStore struct {
	db  *sql.DB
	key string
}

func OpenSQLiteStore(ctx context.Context, path, key string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, oops.Errorf("sqlite checkpoint path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, oops.With("path", path, "context", "sqlite open").Wrap(err)
	}
	// единственный писатель
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = FULL")

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, oops.With("path", path, "context", "sqlite migrate").Wrap(err)
	}
	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (int64, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM checkpoints WHERE name = ?", s.key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, oops.With("key", s.key, "context", "sqlite select").Wrap(err)
	}
	id, ok := decode([]byte(value))
	return id, ok, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id int64) error {
	data, err := encode(id)
	if err != nil {
		return oops.With("id", id).Wrap(err)
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO checkpoints (name, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return oops.With("key", s.key, "id", id, "context", "sqlite upsert").Wrap(err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
