package useCases

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// RunnerOptions: уже разрешённые значения конфигурации для одного прогона
type RunnerOptions struct {
	SessionName        string
	SourceChannel      string
	DestinationChannel string
	CaptionLimit       int
	SingleWindow       Window
	GroupWindow        Window
	// LoginOnly: только авторизовать сессию и выйти
	LoginOnly bool
}

type Runner struct {
	cfgRepo ports.SessionConfigRepo
	store   ports.CheckpointStore
	log     *slog.Logger
	factory func(cfg *ports.SessionConfig, log *slog.Logger) (ports.TelegramClient, error)
	opts    RunnerOptions
}

func NewRunner(
	cfgRepo ports.SessionConfigRepo,
	store ports.CheckpointStore,
	log *slog.Logger,
	factory func(cfg *ports.SessionConfig, log *slog.Logger) (ports.TelegramClient, error),
	opts RunnerOptions,
) *Runner {
	return &Runner{cfgRepo: cfgRepo, store: store, log: log, factory: factory, opts: opts}
}

// Run поднимает клиента, авторизуется, разрешает каналы и выполняет один проход пересылки
func (r *Runner) Run(ctx context.Context) error {
	log := r.log.With("run_id", uuid.NewString(), "session", r.opts.SessionName)

	cfg, err := r.cfgRepo.GetSessionConfig(ctx, r.opts.SessionName)
	if err != nil {
		log.Error("GetSessionConfig failed", "error", err)
		return &domain.RelayError{Stage: domain.StageSession, Err: err}
	}

	cli, err := r.factory(cfg, log)
	if err != nil {
		log.Error("factory failed", "error", err)
		return &domain.RelayError{Stage: domain.StageAuth, Err: err}
	}
	defer func() {
		cli.Close()
		log.Info("client stopped")
	}()

	me, err := cli.Authenticate(ctx)
	if err != nil {
		log.Error("Authenticate failed", "error", err)
		return &domain.RelayError{Stage: domain.StageAuth, Err: err}
	}
	log.Info("client started", "user_id", me.UserID)

	if r.opts.LoginOnly {
		log.Info("login-only mode, session is authorized")
		return nil
	}

	src, err := cli.ResolveChat(ctx, r.opts.SourceChannel)
	if err != nil {
		log.Error("resolve source channel failed", "channel", r.opts.SourceChannel, "error", err)
		return &domain.RelayError{Stage: domain.StageResolve, Err: err}
	}
	dst, err := cli.ResolveChat(ctx, r.opts.DestinationChannel)
	if err != nil {
		log.Error("resolve destination channel failed", "channel", r.opts.DestinationChannel, "error", err)
		return &domain.RelayError{Stage: domain.StageResolve, Err: err}
	}
	log.Info("route resolved", "source_chat_id", src, "destination_chat_id", dst)

	pacer := NewPacer(log, r.opts.SingleWindow, r.opts.GroupWindow)
	relay := NewRelay(log, cli, r.store, pacer, Route{Source: src, Destination: dst}, r.opts.CaptionLimit)
	return relay.Run(ctx)
}
