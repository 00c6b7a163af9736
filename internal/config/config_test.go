package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
env: dev
app_id: 12345
api_hash: deadbeef
session_name: relay
source_channel_id: "@source"
destination_channel_id: "-1002"
checkpoint:
  driver: sqlite
  path: ./data/relay.db
pacing:
  single_min: 1s
  single_max: 2s
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPath_YAMLWithDefaults(t *testing.T) {
	cfg, err := LoadPath(writeFile(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, int32(12345), cfg.ApiID)
	assert.Equal(t, "@source", cfg.SourceChannel)
	assert.Equal(t, "-1002", cfg.DestinationChannel)
	assert.Equal(t, 900, cfg.CaptionLimit)
	assert.Equal(t, "./sessions", cfg.BaseDir)

	assert.Equal(t, "sqlite", cfg.Checkpoint.Driver)
	assert.Equal(t, "./data/relay.db", cfg.Checkpoint.Path)
	assert.Equal(t, "last_message", cfg.Checkpoint.Key)

	assert.Equal(t, time.Second, cfg.Pacing.SingleMin)
	assert.Equal(t, 2*time.Second, cfg.Pacing.SingleMax)
	assert.Equal(t, 303*time.Second, cfg.Pacing.GroupMin)
	assert.Equal(t, 310*time.Second, cfg.Pacing.GroupMax)
}

func TestLoadPath_EnvOverridesFile(t *testing.T) {
	t.Setenv("SOURCE_CHANNEL_ID", "@other")
	t.Setenv("CHECKPOINT_DRIVER", "redis")

	cfg, err := LoadPath(writeFile(t, "config.yaml", validYAML))
	require.NoError(t, err)

	assert.Equal(t, "@other", cfg.SourceChannel)
	assert.Equal(t, "redis", cfg.Checkpoint.Driver)
}

func TestLoadPath_MissingRequired(t *testing.T) {
	_, err := LoadPath(writeFile(t, "config.yaml", "env: dev\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() AppConfig {
		return AppConfig{
			ApiID:              1,
			ApiHash:            "h",
			SessionName:        "s",
			SourceChannel:      "@a",
			DestinationChannel: "@b",
			CaptionLimit:       900,
			Pacing: PacingConfig{
				SingleMin: time.Second, SingleMax: 2 * time.Second,
				GroupMin: time.Second, GroupMax: 2 * time.Second,
			},
		}
	}

	ok := base()
	assert.NoError(t, ok.Validate())

	same := base()
	same.DestinationChannel = same.SourceChannel
	assert.Error(t, same.Validate())

	tiny := base()
	tiny.CaptionLimit = 3
	assert.Error(t, tiny.Validate())

	inverted := base()
	inverted.Pacing.GroupMin = 5 * time.Second
	assert.Error(t, inverted.Validate())
}

func TestLoadPath_DotEnv(t *testing.T) {
	keys := []string{"APP_ID", "API_HASH", "PHONE_NUMBER", "SESSION_NAME", "SOURCE_CHANNEL_ID", "DESTINATION_CHANNEL_ID"}
	unsetEnv(t, keys...)

	path := writeFile(t, ".env", `# relay
APP_ID=777
API_HASH="abc"
PHONE_NUMBER='+10000000000'
SESSION_NAME=relay
SOURCE_CHANNEL_ID=-1001234
DESTINATION_CHANNEL_ID=@dest
`)

	cfg, err := LoadPath(path)
	require.NoError(t, err)
	assert.Equal(t, int32(777), cfg.ApiID)
	assert.Equal(t, "abc", cfg.ApiHash)
	assert.Equal(t, "+10000000000", cfg.Phone)
	assert.Equal(t, "-1001234", cfg.SourceChannel)
	assert.Equal(t, "@dest", cfg.DestinationChannel)
}

func TestJSONSessionConfigRepo(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "relay"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "relay", "config.json"), []byte(`{
		"device": "Pixel",
		"lang_code": "ru",
		"proxy": [3, "10.0.0.1", 1080, true, "u", "p"]
	}`), 0o644))

	app := &AppConfig{BaseDir: base, ApiID: 1, ApiHash: "h", Phone: "+1"}
	sc, err := NewJSONSessionConfigRepo(app).GetSessionConfig(context.Background(), "relay")
	require.NoError(t, err)

	assert.Equal(t, "relay", sc.SessionName)
	assert.Equal(t, "Pixel", sc.DeviceModel)
	assert.Equal(t, "ru", sc.LangCode)
	assert.Equal(t, "+1", sc.Phone)
	assert.Equal(t, int32(1), sc.AppID)
	require.NotNil(t, sc.Proxy)
	assert.Equal(t, int32(1080), sc.Proxy.Port)
	assert.Equal(t, ports.ProxyHTTP, sc.Proxy.Type)
	assert.Equal(t, "u", sc.Proxy.Username)
}

func TestJSONSessionConfigRepo_NoSessionFile(t *testing.T) {
	app := &AppConfig{BaseDir: t.TempDir(), ApiID: 2, ApiHash: "x"}
	sc, err := NewJSONSessionConfigRepo(app).GetSessionConfig(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", sc.SessionName)
	assert.Nil(t, sc.Proxy)
}

// unsetEnv убирает переменные на время теста: .env не перекрывает уже выставленные, даже пустые
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadPath_DotEnvDoesNotOverrideEnv(t *testing.T) {
	unsetEnv(t, "APP_ID", "API_HASH", "SESSION_NAME", "DESTINATION_CHANNEL_ID")
	t.Setenv("SOURCE_CHANNEL_ID", "from_exported_env")

	path := writeFile(t, "relay.env", `APP_ID=1
API_HASH=h
SESSION_NAME=relay
SOURCE_CHANNEL_ID=from_dotenv
DESTINATION_CHANNEL_ID=@dest
`)

	cfg, err := LoadPath(path)
	require.NoError(t, err)
	assert.Equal(t, "from_exported_env", cfg.SourceChannel)
	assert.Equal(t, "from_exported_env", os.Getenv("SOURCE_CHANNEL_ID"))
	assert.Equal(t, "@dest", cfg.DestinationChannel)
}
