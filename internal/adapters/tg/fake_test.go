package tg

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/zelenin/go-tdlib/client"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeTD эмулирует GetChatHistory: страница идёт от новых к старым,
// offset<0 добавляет сообщения новее from.
type fakeTD struct {
	history []*client.Message
	histErr error
	calls   int
	// stalls страниц после вызова stallFrom возвращаются неполными: только сообщение from
	stalls    int
	stallFrom int

	chats    map[int64]*client.Chat
	public   map[string]*client.Chat
	sendErr  error
	sent     []*client.SendMessageRequest
	albums   []*client.SendMessageAlbumRequest
	meUserID int64

	// pending: отправки возвращают временные сообщения, итог приходит через tracker
	pending bool
	// outcome строит апдейт для временного id; при nil апдейт не приходит
	outcome func(tmpID int64) client.Type
	tracker *sendTracker
	nextTmp int64
}

func (f *fakeTD) GetChatHistory(req *client.GetChatHistoryRequest) (*client.Messages, error) {
	f.calls++
	if f.histErr != nil {
		return nil, f.histErr
	}
	if f.stalls > 0 && f.calls > f.stallFrom {
		f.stalls--
		page := &client.Messages{}
		for _, m := range f.history {
			if m.Id == req.FromMessageId {
				page.Messages = append(page.Messages, m)
			}
		}
		return page, nil
	}
	all := append([]*client.Message(nil), f.history...)
	sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })

	newer := int(-req.Offset)
	var older, fresh []*client.Message
	for _, m := range all {
		if m.Id <= req.FromMessageId {
			older = append(older, m)
		} else {
			fresh = append(fresh, m)
		}
	}
	if len(fresh) > newer {
		fresh = fresh[:newer]
	}
	page := append([]*client.Message(nil), fresh...)
	for i := len(older) - 1; i >= 0 && len(page) < int(req.Limit); i-- {
		page = append(page, older[i])
	}
	sort.Slice(page, func(i, j int) bool { return page[i].Id > page[j].Id })
	return &client.Messages{TotalCount: int32(len(page)), Messages: page}, nil
}

func (f *fakeTD) GetMe() (*client.User, error) {
	if f.meUserID == 0 {
		return nil, errors.New("401 Unauthorized")
	}
	return &client.User{Id: f.meUserID, PhoneNumber: "10000000000"}, nil
}

// GetChat без заданных chats отдаёт канал-источник с последним сообщением истории
func (f *fakeTD) GetChat(req *client.GetChatRequest) (*client.Chat, error) {
	if f.chats == nil {
		chat := &client.Chat{Id: req.ChatId}
		for _, m := range f.history {
			if chat.LastMessage == nil || m.Id > chat.LastMessage.Id {
				chat.LastMessage = m
			}
		}
		return chat, nil
	}
	chat, ok := f.chats[req.ChatId]
	if !ok {
		return nil, errors.New("400 Chat not found")
	}
	return chat, nil
}

func (f *fakeTD) SearchPublicChat(req *client.SearchPublicChatRequest) (*client.Chat, error) {
	chat, ok := f.public[req.Username]
	if !ok {
		return nil, errors.New("400 USERNAME_NOT_OCCUPIED")
	}
	return chat, nil
}

func (f *fakeTD) SendMessage(req *client.SendMessageRequest) (*client.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, req)
	return f.temporary(req.ChatId), nil
}

func (f *fakeTD) SendMessageAlbum(req *client.SendMessageAlbumRequest) (*client.Messages, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.albums = append(f.albums, req)
	out := &client.Messages{}
	for range req.InputMessageContents {
		out.Messages = append(out.Messages, f.temporary(req.ChatId))
	}
	return out, nil
}

// temporary возвращает сообщение так, как его отдаёт TDLib сразу после отправки.
// Итог доставки уходит в tracker раньше, чем отправитель начнёт его ждать.
func (f *fakeTD) temporary(chatID int64) *client.Message {
	if !f.pending {
		return &client.Message{ChatId: chatID}
	}
	f.nextTmp++
	msg := &client.Message{
		Id:           toTdID(1000) + f.nextTmp,
		ChatId:       chatID,
		SendingState: &client.MessageSendingStatePending{},
	}
	if f.outcome != nil {
		if upd := f.outcome(msg.Id); upd != nil {
			f.tracker.handle(upd)
		}
	}
	return msg
}

func newFakeClient(td *fakeTD) *TelegramClient {
	if td.tracker == nil {
		td.tracker = newSendTracker()
	}
	return &TelegramClient{
		api:         td,
		logger:      discardLogger(),
		session:     "test",
		sends:       td.tracker,
		sendTimeout: time.Second,
	}
}

func succeeded(tmpID int64) client.Type {
	return &client.UpdateMessageSendSucceeded{Message: &client.Message{Id: tmpID + 1}, OldMessageId: tmpID}
}

func failedWith(code int32, text string) func(int64) client.Type {
	return func(tmpID int64) client.Type {
		return &client.UpdateMessageSendFailed{OldMessageId: tmpID, Error: &client.Error{Code: code, Message: text}}
	}
}

func textMsg(serverID int64, text string) *client.Message {
	return &client.Message{
		Id:      toTdID(serverID),
		Content: &client.MessageText{Text: &client.FormattedText{Text: text}},
	}
}

func photoMsg(serverID, album int64, remote, caption string) *client.Message {
	return &client.Message{
		Id:           toTdID(serverID),
		MediaAlbumId: client.JsonInt64(album),
		Content: &client.MessagePhoto{
			Photo: &client.Photo{Sizes: []*client.PhotoSize{
				{Width: 90, Height: 90, Photo: &client.File{Remote: &client.RemoteFile{Id: remote + "-small"}}},
				{Width: 1280, Height: 960, Photo: &client.File{Remote: &client.RemoteFile{Id: remote}}},
				{Width: 320, Height: 240, Photo: &client.File{Remote: &client.RemoteFile{Id: remote + "-mid"}}},
			}},
			Caption: &client.FormattedText{Text: caption},
		},
	}
}
