package tg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zelenin/go-tdlib/client"
)

const defaultSendTimeout = 2 * time.Minute

var errSendTimeout = errors.New("no delivery confirmation from TDLib")

// sendTracker ждёт итог отправки. SendMessage/SendMessageAlbum возвращают
// временное сообщение в состоянии pending; настоящий результат приходит
// позже апдейтом UpdateMessageSendSucceeded/UpdateMessageSendFailed по old_message_id.
type sendTracker struct {
	mu      sync.Mutex
	waiters map[int64]chan error
	// итоги, пришедшие раньше, чем отправитель начал их ждать
	early map[int64]error
}

func newSendTracker() *sendTracker {
	return &sendTracker{
		waiters: make(map[int64]chan error),
		early:   make(map[int64]error),
	}
}

// run разбирает поток апдейтов клиента до его закрытия
func (t *sendTracker) run(updates <-chan client.Type) {
	for upd := range updates {
		t.handle(upd)
	}
}

func (t *sendTracker) handle(upd client.Type) {
	switch u := upd.(type) {
	case *client.UpdateMessageSendSucceeded:
		t.resolve(u.OldMessageId, nil)
	case *client.UpdateMessageSendFailed:
		t.resolve(u.OldMessageId, failure(u.Error))
	}
}

func (t *sendTracker) resolve(tmpID int64, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ch, ok := t.waiters[tmpID]; ok {
		delete(t.waiters, tmpID)
		ch <- err
		return
	}
	t.early[tmpID] = err
}

// wait возвращает nil, только когда сервер принял все сообщения
func (t *sendTracker) wait(ctx context.Context, timeout time.Duration, msgs []*client.Message) error {
	pending := make(map[int64]chan error, len(msgs))

	t.mu.Lock()
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch st := m.SendingState.(type) {
		case nil:
			// уже отправлено
		case *client.MessageSendingStateFailed:
			t.forget(pending)
			t.mu.Unlock()
			return failure(st.Error)
		default:
			if err, ok := t.early[m.Id]; ok {
				delete(t.early, m.Id)
				if err != nil {
					t.forget(pending)
					t.mu.Unlock()
					return err
				}
				continue
			}
			ch := make(chan error, 1)
			t.waiters[m.Id] = ch
			pending[m.Id] = ch
		}
	}
	t.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for tmpID, ch := range pending {
		select {
		case err := <-ch:
			delete(pending, tmpID)
			if err != nil {
				t.unregister(pending)
				return err
			}
		case <-timer.C:
			t.unregister(pending)
			return fmt.Errorf("message %d: %w", tmpID, errSendTimeout)
		case <-ctx.Done():
			t.unregister(pending)
			return ctx.Err()
		}
	}
	return nil
}

func (t *sendTracker) unregister(pending map[int64]chan error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.forget(pending)
}

// forget вызывается под t.mu
func (t *sendTracker) forget(pending map[int64]chan error) {
	for tmpID := range pending {
		delete(t.waiters, tmpID)
	}
}

func failure(e *client.Error) error {
	if e == nil {
		return client.ResponseError{Err: &client.Error{Code: 500, Message: "message sending failed"}}
	}
	return client.ResponseError{Err: e}
}
