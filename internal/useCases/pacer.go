package useCases

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Window: полуинтервал [Min, Max) для случайной паузы
type Window struct {
	Min time.Duration
	Max time.Duration
}

var (
	DefaultSingleWindow = Window{Min: 300 * time.Second, Max: 310 * time.Second}
	// после альбома окно уже: загрузка нескольких файлов сама по себе заняла время
	DefaultGroupWindow = Window{Min: 303 * time.Second, Max: 310 * time.Second}
)

type PaceKind int

const (
	PaceSingle PaceKind = iota
	PaceGroup
)

func (k PaceKind) String() string {
	if k == PaceGroup {
		return "group"
	}
	return "single"
}

// Pacer выдерживает случайную паузу после каждой отправки,
// чтобы у потока не было фиксированного ритма.
type Pacer struct {
	log    *slog.Logger
	single Window
	group  Window

	rnd   func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacer(log *slog.Logger, single, group Window) *Pacer {
	return &Pacer{
		log:    log,
		single: single,
		group:  group,
		rnd:    rand.Int63n,
		sleep:  sleepContext,
	}
}

// Delay выбирает длительность паузы равномерно из окна
func (p *Pacer) Delay(kind PaceKind) time.Duration {
	w := p.single
	if kind == PaceGroup {
		w = p.group
	}

	delta := w.Max - w.Min
	if delta <= 0 {
		return w.Min
	}
	return w.Min + time.Duration(p.rnd(int64(delta)))
}

// Pause блокирует до конца паузы или отмены ctx
func (p *Pacer) Pause(ctx context.Context, kind PaceKind) error {
	wait := p.Delay(kind)
	p.log.Info("Pacing delay before next dispatch", "kind", kind.String(), "wait", wait)
	return p.sleep(ctx, wait)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
