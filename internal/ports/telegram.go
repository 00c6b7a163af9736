package ports

import (
	"context"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
)

// TelegramClient определяет интерфейс для работы с Telegram
// Реализуется конкретными адаптерами (TDLib, Bot API и т.д.).
type TelegramClient interface {
	// Authenticate проверяет, что сессия авторизована, и возвращает её владельца
	Authenticate(ctx context.Context) (*domain.Session, error)
	// ResolveChat превращает "@username" или числовой id в chat id
	ResolveChat(ctx context.Context, ref string) (int64, error)
	// IterateMessages отдаёт историю канала по возрастанию id.
	// Каждый вызов начинает обход заново.
	IterateMessages(ctx context.Context, chatID int64) MessageIterator
	// SendText отправляет обычное текстовое сообщение с разметкой.
	// Возвращает nil только после того, как Telegram подтвердил доставку.
	SendText(ctx context.Context, chatID int64, text domain.Caption) error
	// SendMedia отправляет одно вложение или альбом; caption может быть пустым.
	// Как и SendText, ждёт подтверждения от сервера.
	SendMedia(ctx context.Context, chatID int64, items []domain.Media, caption domain.Caption) error
	Close()
}

// MessageIterator: ленивый обход истории канала
type MessageIterator interface {
	Next(ctx context.Context) bool
	Value() domain.Message
	Err() error
}
