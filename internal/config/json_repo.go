package config

import (
	"context"
	"fmt"

	"github.com/larriantoniy/tg_relay_bot/internal/adapters/tg"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// JSONSessionConfigRepo собирает конфиг сессии из AppConfig и
// необязательного <base_dir>/<session>/config.json
type JSONSessionConfigRepo struct {
	baseDir string // "./sessions"
	app     *AppConfig
}

func NewJSONSessionConfigRepo(app *AppConfig) *JSONSessionConfigRepo {
	return &JSONSessionConfigRepo{baseDir: app.BaseDir, app: app}
}

func (r *JSONSessionConfigRepo) GetSessionConfig(ctx context.Context, sessionName string) (*ports.SessionConfig, error) {
	raw, err := tg.LoadRawSessionConfig(r.baseDir, sessionName)
	if err != nil {
		return nil, err
	}

	sc, err := raw.ToSessionConfig(ports.SessionConfig{
		SessionName: sessionName,
		Phone:       r.app.Phone,
		AppID:       r.app.ApiID,
		AppHash:     r.app.ApiHash,
	})
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionName, err)
	}
	return sc, nil
}
