package tg

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/zelenin/go-tdlib/client"
)

const (
	historyPageSize = 100
	// сколько подряд коротких страниц терпим, не дойдя до последнего сообщения
	maxHistoryStalls  = 5
	historyRetryDelay = time.Second
)

// historyFetcher: часть TDLib-клиента, нужная для обхода истории
type historyFetcher interface {
	GetChat(req *client.GetChatRequest) (*client.Chat, error)
	GetChatHistory(req *client.GetChatHistoryRequest) (*client.Messages, error)
}

// historyIterator обходит историю канала от старых сообщений к новым.
// GetChatHistory отдаёт страницы от новых к старым, поэтому запрос идёт
// с отрицательным offset от курсора, а страница сортируется по возрастанию.
// Обход заканчивается на последнем сообщении канала, известном на старте:
// TDLib может вернуть неполную страницу, и пустая страница концом истории не считается.
type historyIterator struct {
	td         historyFetcher
	log        *slog.Logger
	chatID     int64
	retryDelay time.Duration

	last    int64 // TDLib id последнего сообщения канала на старте обхода
	bounded bool
	stalls  int

	cursor int64 // TDLib id последнего отданного сообщения
	buf    []*client.Message
	cur    domain.Message
	done   bool
	err    error
}

func newHistoryIterator(td historyFetcher, log *slog.Logger, chatID int64) *historyIterator {
	return &historyIterator{td: td, log: log, chatID: chatID, retryDelay: historyRetryDelay}
}

func (it *historyIterator) Next(ctx context.Context) bool {
	for {
		for len(it.buf) > 0 {
			m := it.buf[0]
			it.buf = it.buf[1:]
			if msg, ok := toDomainMessage(m); ok {
				it.cur = msg
				return true
			}
		}
		if it.done || it.err != nil {
			return false
		}
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}
		it.fetch(ctx)
	}
}

// bound запоминает последнее сообщение канала; false, если канал пуст или случилась ошибка
func (it *historyIterator) bound() bool {
	chat, err := it.td.GetChat(&client.GetChatRequest{ChatId: it.chatID})
	if err != nil {
		it.err = fmt.Errorf("GetChat %d: %w", it.chatID, err)
		return false
	}
	it.bounded = true
	if chat.LastMessage == nil {
		it.log.Info("source channel has no messages", "chat_id", it.chatID)
		it.done = true
		return false
	}
	it.last = chat.LastMessage.Id
	return true
}

func (it *historyIterator) fetch(ctx context.Context) {
	if !it.bounded && !it.bound() {
		return
	}
	if it.cursor >= it.last {
		it.done = true
		return
	}

	from := it.cursor
	if from == 0 {
		// первый серверный id любого канала
		from = toTdID(1)
	}

	page, err := it.td.GetChatHistory(&client.GetChatHistoryRequest{
		ChatId:        it.chatID,
		FromMessageId: from,
		Offset:        -(historyPageSize - 1),
		Limit:         historyPageSize,
		OnlyLocal:     false,
	})
	if err != nil {
		it.err = fmt.Errorf("GetChatHistory chat=%d from=%d: %w", it.chatID, from, err)
		return
	}

	fresh := make([]*client.Message, 0, len(page.Messages))
	for _, m := range page.Messages {
		if m != nil && m.Id > it.cursor {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) == 0 {
		it.stall(ctx)
		return
	}
	it.stalls = 0

	sort.Slice(fresh, func(i, j int) bool { return fresh[i].Id < fresh[j].Id })
	it.cursor = fresh[len(fresh)-1].Id
	it.buf = fresh

	it.log.Debug("history page fetched", "chat_id", it.chatID, "count", len(fresh), "cursor", it.cursor)
}

// stall повторяет запрос после короткой страницы, пока не кончится терпение
func (it *historyIterator) stall(ctx context.Context) {
	it.stalls++
	if it.stalls > maxHistoryStalls {
		it.err = fmt.Errorf("GetChatHistory chat=%d: no messages after %d, last is %d", it.chatID, it.cursor, it.last)
		return
	}
	it.log.Warn("short history page, retrying",
		"chat_id", it.chatID,
		"cursor", it.cursor,
		"last", it.last,
		"attempt", it.stalls,
	)

	timer := time.NewTimer(it.retryDelay * time.Duration(it.stalls))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		it.err = ctx.Err()
	}
}

func (it *historyIterator) Value() domain.Message {
	return it.cur
}

func (it *historyIterator) Err() error {
	return it.err
}
