package tg

import (
	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/zelenin/go-tdlib/client"
)

// TDLib хранит серверный id сообщения, сдвинутый на 20 бит
const serverIDShift = 20

func toServerID(tdID int64) (int64, bool) {
	if tdID <= 0 || tdID&(1<<serverIDShift-1) != 0 {
		// локальное или ещё не отправленное сообщение
		return 0, false
	}
	return tdID >> serverIDShift, true
}

func toTdID(serverID int64) int64 {
	return serverID << serverIDShift
}

// toDomainMessage переводит сообщение TDLib в доменное; ok=false для несерверных сообщений
func toDomainMessage(m *client.Message) (domain.Message, bool) {
	id, ok := toServerID(m.Id)
	if !ok {
		return domain.Message{}, false
	}

	msg := domain.Message{
		ID:      id,
		GroupID: int64(m.MediaAlbumId),
	}

	switch content := m.Content.(type) {
	case *client.MessageText:
		msg.Text, msg.Entities = fromFormatted(content.Text)
	case *client.MessagePhoto:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		msg.Media = photoMedia(content.Photo)
	case *client.MessageDocument:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		if content.Document != nil {
			msg.Media = documentMedia(domain.FormatFile, content.Document.Document, content.Document.FileName)
		}
	case *client.MessageVideo:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		if content.Video != nil {
			msg.Media = documentMedia(domain.FormatVideo, content.Video.Video, content.Video.FileName)
		}
	case *client.MessageAnimation:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		if content.Animation != nil {
			msg.Media = documentMedia(domain.FormatAnimation, content.Animation.Animation, content.Animation.FileName)
		}
	case *client.MessageAudio:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		if content.Audio != nil {
			msg.Media = documentMedia(domain.FormatAudio, content.Audio.Audio, content.Audio.FileName)
		}
	case *client.MessageVoiceNote:
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		if content.VoiceNote != nil {
			msg.Media = documentMedia(domain.FormatVoiceNote, content.VoiceNote.Voice, "")
			if msg.Media != nil {
				msg.Media.Duration = content.VoiceNote.Duration
			}
		}
	case *client.MessageVideoNote:
		if content.VideoNote != nil {
			msg.Media = documentMedia(domain.FormatVideoNote, content.VideoNote.Video, "")
			if msg.Media != nil {
				msg.Media.Duration = content.VideoNote.Duration
				msg.Media.Width, msg.Media.Height = content.VideoNote.Length, content.VideoNote.Length
			}
		}
	case *client.MessageSticker:
		if content.Sticker != nil {
			msg.Media = documentMedia(domain.FormatSticker, content.Sticker.Sticker, "")
			if msg.Media != nil {
				msg.Media.Width, msg.Media.Height = content.Sticker.Width, content.Sticker.Height
			}
		}
	case *client.MessagePaidMedia:
		// платные медиа не перезаливаются, но подпись уходит текстом
		msg.Text, msg.Entities = fromFormatted(content.Caption)
		msg.Media = &domain.Media{Kind: domain.MediaUnsupported}
	default:
		// опросы, контакты, геопозиции и т.д. не пересылаются
		msg.Media = &domain.Media{Kind: domain.MediaUnsupported}
	}

	return msg, true
}

// fromFormatted переносит текст TDLib вместе с разметкой
func fromFormatted(t *client.FormattedText) (string, []domain.Entity) {
	if t == nil {
		return "", nil
	}
	var entities []domain.Entity
	for _, e := range t.Entities {
		if e == nil || e.Type == nil {
			continue
		}
		entities = append(entities, domain.Entity{Offset: int(e.Offset), Length: int(e.Length), Style: e.Type})
	}
	return t.Text, entities
}

// toFormatted: обратное преобразование; разметка чужого транспорта пропускается
func toFormatted(c domain.Caption) *client.FormattedText {
	if c.Text == "" {
		return nil
	}
	ft := &client.FormattedText{Text: c.Text}
	for _, e := range c.Entities {
		typ, ok := e.Style.(client.TextEntityType)
		if !ok {
			continue
		}
		ft.Entities = append(ft.Entities, &client.TextEntity{
			Offset: int32(e.Offset),
			Length: int32(e.Length),
			Type:   typ,
		})
	}
	return ft
}

// photoMedia выбирает самый крупный размер фото
func photoMedia(p *client.Photo) *domain.Media {
	if p == nil {
		return nil
	}
	var best *client.PhotoSize
	for _, size := range p.Sizes {
		if best == nil || size.Width*size.Height > best.Width*best.Height {
			best = size
		}
	}
	if best == nil || best.Photo == nil || best.Photo.Remote == nil {
		return nil
	}
	return &domain.Media{Kind: domain.MediaPhoto, RemoteFileID: best.Photo.Remote.Id}
}

func documentMedia(format domain.DocumentFormat, f *client.File, name string) *domain.Media {
	if f == nil || f.Remote == nil {
		return nil
	}
	return &domain.Media{
		Kind:         domain.MediaDocument,
		Format:       format,
		RemoteFileID: f.Remote.Id,
		FileName:     name,
	}
}

// toInputContent собирает input-контент для повторной отправки по remote id
func toInputContent(m domain.Media, caption domain.Caption) client.InputMessageContent {
	file := &client.InputFileRemote{Id: m.RemoteFileID}
	text := toFormatted(caption)

	if m.Kind == domain.MediaPhoto {
		return &client.InputMessagePhoto{Photo: file, Caption: text}
	}

	switch m.Format {
	case domain.FormatVideo:
		return &client.InputMessageVideo{Video: file, Caption: text, SupportsStreaming: true}
	case domain.FormatAnimation:
		return &client.InputMessageAnimation{Animation: file, Caption: text}
	case domain.FormatAudio:
		return &client.InputMessageAudio{Audio: file, Caption: text}
	case domain.FormatVoiceNote:
		return &client.InputMessageVoiceNote{VoiceNote: file, Duration: m.Duration, Caption: text}
	case domain.FormatVideoNote:
		// у кружков нет подписи
		return &client.InputMessageVideoNote{VideoNote: file, Duration: m.Duration, Length: m.Width}
	case domain.FormatSticker:
		return &client.InputMessageSticker{Sticker: file, Width: m.Width, Height: m.Height}
	default:
		return &client.InputMessageDocument{Document: file, Caption: text}
	}
}
