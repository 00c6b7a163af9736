package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/larriantoniy/tg_relay_bot/internal/adapters/checkpoint"
	"github.com/larriantoniy/tg_relay_bot/internal/adapters/tg"
	"github.com/larriantoniy/tg_relay_bot/internal/config"
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/larriantoniy/tg_relay_bot/internal/useCases"
	slogmulti "github.com/samber/slog-multi"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := setupLogger(cfg.Env)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := checkpoint.Open(ctx, checkpoint.Config{
		Driver:        cfg.Checkpoint.Driver,
		Path:          cfg.Checkpoint.Path,
		Key:           cfg.Checkpoint.Key,
		RedisAddr:     cfg.Checkpoint.RedisAddr,
		RedisPassword: cfg.Checkpoint.RedisPassword,
		RedisDB:       cfg.Checkpoint.RedisDB,
	}, logger)
	if err != nil {
		logger.Error("checkpoint storage init failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("checkpoint storage close", "error", err)
		}
	}()

	cfgRepo := config.NewJSONSessionConfigRepo(cfg)

	mode := tg.ClientModeRuntime
	if cfg.LoginOnly {
		mode = tg.ClientModeAuth
	}
	factory := func(sc *ports.SessionConfig, l *slog.Logger) (ports.TelegramClient, error) {
		return tg.NewClient(sc, cfg.BaseDir, l, mode)
	}

	runner := useCases.NewRunner(cfgRepo, store, logger, factory, useCases.RunnerOptions{
		SessionName:        cfg.SessionName,
		SourceChannel:      cfg.SourceChannel,
		DestinationChannel: cfg.DestinationChannel,
		CaptionLimit:       cfg.CaptionLimit,
		SingleWindow:       useCases.Window{Min: cfg.Pacing.SingleMin, Max: cfg.Pacing.SingleMax},
		GroupWindow:        useCases.Window{Min: cfg.Pacing.GroupMin, Max: cfg.Pacing.GroupMax},
		LoginOnly:          cfg.LoginOnly,
	})

	if err := runner.Run(ctx); err != nil {
		stage, _ := domain.StageOf(err)
		logger.Error("relay run failed", "stage", stage, "error", err)
		// os.Exit не выполнит defer
		stop()
		_ = store.Close()
		os.Exit(1)
	}

	logger.Info("exit")
}

// setupLogger: основной поток по окружению, ошибки дублируются в stderr JSON
func setupLogger(env string) *slog.Logger {
	var base slog.Handler

	switch env {
	case envLocal:
		base = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case envDev:
		base = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default: // prod и неизвестные значения
		base = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	errs := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})
	return slog.New(slogmulti.Fanout(base, errs))
}
