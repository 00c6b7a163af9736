package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

const DefaultPath = "last_message.json"

// FileStore хранит чекпоинт в JSON-файле, совместимом с last_message.json
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, oops.With("path", path, "context", "failed to create checkpoint directory").Wrap(err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(ctx context.Context) (int64, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, oops.With("path", s.path, "context", "failed to read checkpoint").Wrap(err)
	}
	id, ok := decode(data)
	return id, ok, nil
}

// Save пишет во временный файл и атомарно подменяет им чекпоинт
func (s *FileStore) Save(ctx context.Context, id int64) error {
	data, err := encode(id)
	if err != nil {
		return oops.With("id", id, "context", "failed to marshal checkpoint").Wrap(err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return oops.With("path", tmp, "context", "failed to open checkpoint temp file").Wrap(err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return oops.With("path", tmp, "context", "failed to write checkpoint").Wrap(err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return oops.With("path", tmp, "context", "failed to sync checkpoint").Wrap(err)
	}
	if err := f.Close(); err != nil {
		return oops.With("path", tmp).Wrap(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return oops.With("path", s.path, "context", "failed to replace checkpoint").Wrap(err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
