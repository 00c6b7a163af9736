package domain

import "github.com/samber/lo"

// MediaKind описывает тип вложения сообщения-источника
type MediaKind int

const (
	MediaUnsupported MediaKind = iota // опросы, контакты, платные медиа и т.д. не пересылаются
	MediaPhoto
	MediaDocument // файл, видео, анимация, аудио, голосовое, кружок, стикер: в MTProto это всё документы
)

// DocumentFormat уточняет, каким input-типом перезаливать документ
type DocumentFormat int

const (
	FormatFile DocumentFormat = iota
	FormatVideo
	FormatAnimation
	FormatAudio
	FormatVoiceNote
	FormatVideoNote
	FormatSticker
)

// Media: ссылка на уже загруженный в Telegram файл
type Media struct {
	Kind         MediaKind
	Format       DocumentFormat
	RemoteFileID string
	FileName     string

	// необязательные параметры, которые TDLib просит для кружков и стикеров
	Duration int32
	Width    int32
	Height   int32
}

// Forwardable сообщает, можно ли прикладывать вложение к исходящей отправке
func (m *Media) Forwardable() bool {
	return m != nil && m.RemoteFileID != "" && (m.Kind == MediaPhoto || m.Kind == MediaDocument)
}

// Entity: разметка участка текста (жирный, ссылка, упоминание...).
// Offset и Length в UTF-16 code units, как считает Telegram.
// Style принадлежит транспорту, домен его не разбирает.
type Entity struct {
	Offset int
	Length int
	Style  any
}

// Caption: текст вместе с разметкой
type Caption struct {
	Text     string
	Entities []Entity
}

// Message описывает сообщение канала-источника.
// Пустой Text означает отсутствие текста, GroupID == 0: сообщение вне альбома.
type Message struct {
	ID       int64
	Text     string
	Entities []Entity
	Media    *Media
	GroupID  int64
}

func (m Message) Caption() Caption {
	return Caption{Text: m.Text, Entities: m.Entities}
}

func (m Message) Grouped() bool {
	return m.GroupID != 0
}

// ForwardableMedia возвращает фото/документ сообщения или nil
func (m Message) ForwardableMedia() *Media {
	if m.Media.Forwardable() {
		return m.Media
	}
	return nil
}

// MessageGroup: альбом: подряд идущие сообщения с одним GroupID
type MessageGroup struct {
	ID       int64
	Messages []Message
}

// FirstCaption возвращает первый непустой текст среди участников альбома вместе с его разметкой
func (g *MessageGroup) FirstCaption() Caption {
	msg, _ := lo.Find(g.Messages, func(m Message) bool {
		return m.Text != ""
	})
	return msg.Caption()
}

// MediaItems возвращает пересылаемые вложения альбома в исходном порядке
func (g *MessageGroup) MediaItems() []Media {
	return lo.FilterMap(g.Messages, func(m Message, _ int) (Media, bool) {
		media := m.ForwardableMedia()
		if media == nil {
			return Media{}, false
		}
		return *media, true
	})
}

// LastID: id последнего участника, значение чекпоинта после отправки альбома
func (g *MessageGroup) LastID() int64 {
	if len(g.Messages) == 0 {
		return 0
	}
	return g.Messages[len(g.Messages)-1].ID
}

func (g *MessageGroup) FirstID() int64 {
	if len(g.Messages) == 0 {
		return 0
	}
	return g.Messages[0].ID
}
