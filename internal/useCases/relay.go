package useCases

import (
	"context"
	"log/slog"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// Route: пара канал-источник / канал-назначение
type Route struct {
	Source      int64
	Destination int64
}

// Relay выполняет один проход по истории источника.
// Отправки строго последовательны, чекпоинт пишется только после подтверждённой отправки.
type Relay struct {
	log    *slog.Logger
	tg     ports.TelegramClient
	store  ports.CheckpointStore
	sender *Sender
	pacer  *Pacer
	route  Route

	checkpoint int64
	hasCheck   bool
}

func NewRelay(
	log *slog.Logger,
	tg ports.TelegramClient,
	store ports.CheckpointStore,
	pacer *Pacer,
	route Route,
	captionLimit int,
) *Relay {
	return &Relay{
		log:    log,
		tg:     tg,
		store:  store,
		sender: NewSender(log, tg, route.Destination, captionLimit),
		pacer:  pacer,
		route:  route,
	}
}

// Run пересылает всё, что новее чекпоинта. Любая ошибка отправки или
// записи чекпоинта прерывает проход и возвращается как *domain.RelayError.
func (r *Relay) Run(ctx context.Context) error {
	id, ok, err := r.store.Load(ctx)
	if err != nil {
		return &domain.RelayError{Stage: domain.StageLoadCheckpoint, Err: err}
	}
	r.checkpoint, r.hasCheck = id, ok
	if ok {
		r.log.Info("Resuming after checkpoint", "last_id", id)
	} else {
		r.log.Info("No checkpoint, starting from the beginning of the channel")
	}

	var grouper Grouper
	it := r.tg.IterateMessages(ctx, r.route.Source)
	for it.Next(ctx) {
		// границы альбомов определяются по всем сообщениям, включая уже пересланные
		closed, single := grouper.Push(it.Value())
		if closed != nil {
			if err := r.forwardGroup(ctx, closed); err != nil {
				return err
			}
		}
		if single != nil {
			if err := r.forwardSingle(ctx, *single); err != nil {
				return err
			}
		}
	}
	if err := it.Err(); err != nil {
		if ctx.Err() != nil {
			return &domain.RelayError{Stage: domain.StageInterrupted, MessageID: r.checkpoint, Err: err}
		}
		return &domain.RelayError{Stage: domain.StageFetch, Err: err}
	}

	if last := grouper.Flush(); last != nil {
		if err := r.forwardGroup(ctx, last); err != nil {
			return err
		}
	}

	r.log.Info("Relay pass finished", "last_id", r.checkpoint)
	return nil
}

func (r *Relay) covered(id int64) bool {
	return r.hasCheck && id <= r.checkpoint
}

func (r *Relay) forwardSingle(ctx context.Context, m domain.Message) error {
	if r.covered(m.ID) {
		r.log.Debug("Skip already forwarded message", "message_id", m.ID)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &domain.RelayError{Stage: domain.StageInterrupted, MessageID: m.ID, Err: err}
	}

	sent, err := r.sender.SendMessage(ctx, m)
	if err != nil {
		return &domain.RelayError{Stage: domain.StageDispatch, MessageID: m.ID, Err: err}
	}
	if err := r.advance(ctx, m.ID); err != nil {
		return err
	}

	if sent {
		r.log.Info("Message sent successfully", "message_id", m.ID)
	} else {
		r.log.Info("Message has no forwardable content, checkpoint advanced", "message_id", m.ID)
	}
	return r.pause(ctx, PaceSingle, m.ID)
}

func (r *Relay) forwardGroup(ctx context.Context, g *domain.MessageGroup) error {
	lastID := g.LastID()
	if r.covered(lastID) {
		r.log.Debug("Skip already forwarded album", "group_id", g.ID, "last_id", lastID)
		return nil
	}
	if r.covered(g.FirstID()) {
		r.log.Warn("Checkpoint falls inside album, resending the whole album",
			"group_id", g.ID,
			"first_id", g.FirstID(),
			"last_id", lastID,
			"checkpoint", r.checkpoint,
		)
	}
	if err := ctx.Err(); err != nil {
		return &domain.RelayError{Stage: domain.StageInterrupted, MessageID: lastID, Err: err}
	}

	sent, err := r.sender.SendGroup(ctx, g)
	if err != nil {
		return &domain.RelayError{Stage: domain.StageDispatch, MessageID: lastID, Err: err}
	}
	if err := r.advance(ctx, lastID); err != nil {
		return err
	}

	if sent {
		r.log.Info("Message group sent successfully", "group_id", g.ID, "last_id", lastID, "members", len(g.Messages))
	} else {
		r.log.Info("Message group has no forwardable content, checkpoint advanced", "group_id", g.ID, "last_id", lastID)
	}
	return r.pause(ctx, PaceGroup, lastID)
}

func (r *Relay) advance(ctx context.Context, id int64) error {
	// отправка уже подтверждена: запись чекпоинта не должна обрываться остановкой процесса
	if err := r.store.Save(context.WithoutCancel(ctx), id); err != nil {
		return &domain.RelayError{Stage: domain.StageSaveCheckpoint, MessageID: id, Err: err}
	}
	r.checkpoint, r.hasCheck = id, true
	return nil
}

func (r *Relay) pause(ctx context.Context, kind PaceKind, id int64) error {
	if err := r.pacer.Pause(ctx, kind); err != nil {
		return &domain.RelayError{Stage: domain.StageInterrupted, MessageID: id, Err: err}
	}
	return nil
}
