package useCases

import (
	"context"
	"log/slog"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

// Sender превращает сообщения и альбомы источника в отправки в канал-назначение
type Sender struct {
	log          *slog.Logger
	tg           ports.TelegramClient
	chatID       int64
	captionLimit int
}

func NewSender(log *slog.Logger, tg ports.TelegramClient, chatID int64, captionLimit int) *Sender {
	if captionLimit <= 0 {
		captionLimit = DefaultCaptionLimit
	}
	return &Sender{
		log:          log,
		tg:           tg,
		chatID:       chatID,
		captionLimit: captionLimit,
	}
}

// SendMessage отправляет одиночное сообщение.
// sent=false без ошибки: у сообщения нет ни текста, ни фото/документа.
func (s *Sender) SendMessage(ctx context.Context, m domain.Message) (sent bool, err error) {
	caption := TrimFormatted(m.Caption(), s.captionLimit)

	if media := m.ForwardableMedia(); media != nil {
		if err := s.tg.SendMedia(ctx, s.chatID, []domain.Media{*media}, caption); err != nil {
			s.log.Error("SendMedia failed", "message_id", m.ID, "error", err)
			return false, err
		}
		return true, nil
	}

	if caption.Text != "" {
		if err := s.tg.SendText(ctx, s.chatID, caption); err != nil {
			s.log.Error("SendText failed", "message_id", m.ID, "error", err)
			return false, err
		}
		return true, nil
	}

	s.log.Debug("Nothing to send, message has no text or supported media", "message_id", m.ID)
	return false, nil
}

// SendGroup отправляет альбом одной отправкой с подписью первого непустого текста
func (s *Sender) SendGroup(ctx context.Context, g *domain.MessageGroup) (sent bool, err error) {
	caption := TrimFormatted(g.FirstCaption(), s.captionLimit)

	if items := g.MediaItems(); len(items) > 0 {
		if err := s.tg.SendMedia(ctx, s.chatID, items, caption); err != nil {
			s.log.Error("SendMedia album failed", "group_id", g.ID, "last_id", g.LastID(), "items", len(items), "error", err)
			return false, err
		}
		return true, nil
	}

	if caption.Text != "" {
		if err := s.tg.SendText(ctx, s.chatID, caption); err != nil {
			s.log.Error("SendText for album failed", "group_id", g.ID, "last_id", g.LastID(), "error", err)
			return false, err
		}
		return true, nil
	}

	s.log.Debug("Nothing to send, album has no text or supported media", "group_id", g.ID, "last_id", g.LastID())
	return false, nil
}
