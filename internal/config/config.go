package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

type AppConfig struct {
	Env     string `yaml:"env" env:"ENV" env-default:"prod"`
	BaseDir string `yaml:"base_dir" env:"BASE_DIR" env-default:"./sessions"`

	ApiID       int32  `yaml:"app_id" env:"APP_ID" env-required:"true"`
	ApiHash     string `yaml:"api_hash" env:"API_HASH" env-required:"true"`
	Phone       string `yaml:"phone_number" env:"PHONE_NUMBER"`
	SessionName string `yaml:"session_name" env:"SESSION_NAME" env-required:"true"`

	SourceChannel      string `yaml:"source_channel_id" env:"SOURCE_CHANNEL_ID" env-required:"true"`
	DestinationChannel string `yaml:"destination_channel_id" env:"DESTINATION_CHANNEL_ID" env-required:"true"`
	CaptionLimit       int    `yaml:"caption_limit" env:"CAPTION_LIMIT" env-default:"900"`

	Checkpoint CheckpointConfig `yaml:"checkpoint" env-prefix:"CHECKPOINT_"`
	Pacing     PacingConfig     `yaml:"pacing" env-prefix:"PACING_"`

	// LoginOnly выставляется флагом -login
	LoginOnly bool `yaml:"-" env:"-"`
}

type CheckpointConfig struct {
	Driver        string `yaml:"driver" env:"DRIVER" env-default:"file"`
	Path          string `yaml:"path" env:"PATH" env-default:"last_message.json"`
	Key           string `yaml:"key" env:"KEY" env-default:"last_message"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

type PacingConfig struct {
	SingleMin time.Duration `yaml:"single_min" env:"SINGLE_MIN" env-default:"300s"`
	SingleMax time.Duration `yaml:"single_max" env:"SINGLE_MAX" env-default:"310s"`
	GroupMin  time.Duration `yaml:"group_min" env:"GROUP_MIN" env-default:"303s"`
	GroupMax  time.Duration `yaml:"group_max" env:"GROUP_MAX" env-default:"310s"`
}

// Load читает настройки из файла (yaml или .env) и переменных окружения
func Load() (*AppConfig, error) {
	path, loginOnly := fetchFlags()

	cfg, err := LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфига: %w", err)
	}
	cfg.LoginOnly = loginOnly
	return cfg, nil
}

// LoadPath читает конфиг по пути; пустой путь: только окружение.
// Переменные окружения перекрывают значения из файла.
func LoadPath(path string) (*AppConfig, error) {
	var cfg AppConfig

	switch {
	case path == "":
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	case isDotEnv(path):
		// godotenv не трогает уже выставленные переменные
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	default:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isDotEnv(path string) bool {
	return strings.EqualFold(filepath.Ext(path), defaultEnvFile)
}

func (c *AppConfig) Validate() error {
	var errs []error

	if c.ApiID == 0 || c.ApiHash == "" || c.SessionName == "" {
		errs = append(errs, errors.New("APP_ID, API_HASH, SESSION_NAME должны быть заданы"))
	}
	if c.SourceChannel == "" || c.DestinationChannel == "" {
		errs = append(errs, errors.New("SOURCE_CHANNEL_ID и DESTINATION_CHANNEL_ID должны быть заданы"))
	} else if c.SourceChannel == c.DestinationChannel {
		errs = append(errs, errors.New("source and destination channel must differ"))
	}
	if c.CaptionLimit <= 3 {
		errs = append(errs, fmt.Errorf("invalid CAPTION_LIMIT %d: must be greater than 3", c.CaptionLimit))
	}
	if c.Pacing.SingleMin < 0 || c.Pacing.SingleMin > c.Pacing.SingleMax {
		errs = append(errs, fmt.Errorf("invalid single pacing window [%s, %s)", c.Pacing.SingleMin, c.Pacing.SingleMax))
	}
	if c.Pacing.GroupMin < 0 || c.Pacing.GroupMin > c.Pacing.GroupMax {
		errs = append(errs, fmt.Errorf("invalid group pacing window [%s, %s)", c.Pacing.GroupMin, c.Pacing.GroupMax))
	}

	return errors.Join(errs...)
}

// fetchFlags fetches config path from command line flag or environment variable.
// Priority: flag > env > ./.env if it exists.
func fetchFlags() (string, bool) {
	var (
		res       string
		loginOnly bool
	)

	flag.StringVar(&res, "config", "", "path to config file (yaml or .env)")
	flag.BoolVar(&loginOnly, "login", false, "authorize the session and exit")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			res = defaultEnvFile
		}
	}
	return res, loginOnly
}
