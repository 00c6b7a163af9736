package tg

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadRawSessionConfig читает <baseDir>/<session>/config.json.
// Файл необязателен: без него сессия поднимается с параметрами устройства по умолчанию.
func LoadRawSessionConfig(baseDir, sessionName string) (*RawSessionConfig, error) {
	path := filepath.Join(baseDir, sessionName, "config.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &RawSessionConfig{SessionFile: sessionName}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg RawSessionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	// подстрахуемся: если в json другое имя
	if cfg.SessionFile == "" {
		cfg.SessionFile = sessionName
	}
	return &cfg, nil
}
