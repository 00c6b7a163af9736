package useCases

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type sentCall struct {
	kind     string // "text" | "media"
	chatID   int64
	text     string
	entities []domain.Entity
	mediaID  []string
}

type fakeTelegram struct {
	messages []domain.Message
	iterErr  error
	resolve  map[string]int64

	authErr error
	// failAt: номер отправки (с 1), на которой вернуть sendErr
	failAt  int
	sendErr error

	calls  []sentCall
	closed bool
}

var _ ports.TelegramClient = (*fakeTelegram)(nil)

func (f *fakeTelegram) Authenticate(ctx context.Context) (*domain.Session, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &domain.Session{UserID: 1}, nil
}

func (f *fakeTelegram) ResolveChat(ctx context.Context, ref string) (int64, error) {
	id, ok := f.resolve[ref]
	if !ok {
		return 0, domain.ErrChatNotFound
	}
	return id, nil
}

func (f *fakeTelegram) IterateMessages(ctx context.Context, chatID int64) ports.MessageIterator {
	return &sliceIterator{msgs: f.messages, endErr: f.iterErr, pos: -1}
}

func (f *fakeTelegram) record(c sentCall) error {
	if f.failAt > 0 && len(f.calls)+1 == f.failAt {
		return f.sendErr
	}
	f.calls = append(f.calls, c)
	return nil
}

func (f *fakeTelegram) SendText(ctx context.Context, chatID int64, text domain.Caption) error {
	return f.record(sentCall{kind: "text", chatID: chatID, text: text.Text, entities: text.Entities})
}

func (f *fakeTelegram) SendMedia(ctx context.Context, chatID int64, items []domain.Media, caption domain.Caption) error {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.RemoteFileID)
	}
	return f.record(sentCall{kind: "media", chatID: chatID, text: caption.Text, entities: caption.Entities, mediaID: ids})
}

func (f *fakeTelegram) Close() {
	f.closed = true
}

type sliceIterator struct {
	msgs []domain.Message
	// endErr возвращается после исчерпания среза
	endErr error
	err    error
	pos    int
}

func (it *sliceIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if ctx.Err() != nil {
		it.err = ctx.Err()
		return false
	}
	if it.pos+1 >= len(it.msgs) {
		it.err = it.endErr
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Value() domain.Message {
	return it.msgs[it.pos]
}

func (it *sliceIterator) Err() error {
	return it.err
}

type memStore struct {
	id      int64
	ok      bool
	loadErr error
	saveErr error
	saves   []int64
}

func (s *memStore) Load(ctx context.Context) (int64, bool, error) {
	return s.id, s.ok, s.loadErr
}

func (s *memStore) Save(ctx context.Context, id int64) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.id, s.ok = id, true
	s.saves = append(s.saves, id)
	return nil
}

func (s *memStore) Close() error { return nil }

// recordingPacer не спит, а запоминает запрошенные паузы
func recordingPacer(kinds *[]PaceKind) *Pacer {
	p := NewPacer(discardLogger(), DefaultSingleWindow, DefaultGroupWindow)
	p.rnd = func(n int64) int64 { return 0 }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		if d == DefaultGroupWindow.Min {
			*kinds = append(*kinds, PaceGroup)
		} else {
			*kinds = append(*kinds, PaceSingle)
		}
		return ctx.Err()
	}
	return p
}

var errSend = errors.New("network is unreachable")

func photo(id string) *domain.Media {
	return &domain.Media{Kind: domain.MediaPhoto, RemoteFileID: id}
}
