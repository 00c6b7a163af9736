package tg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/domain"
	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/zelenin/go-tdlib/client"
)

// tdAPI: методы TDLib, которыми пользуется адаптер
type tdAPI interface {
	historyFetcher
	GetMe() (*client.User, error)
	SearchPublicChat(req *client.SearchPublicChatRequest) (*client.Chat, error)
	SendMessage(req *client.SendMessageRequest) (*client.Message, error)
	SendMessageAlbum(req *client.SendMessageAlbumRequest) (*client.Messages, error)
}

// TelegramClient реализует ports.TelegramClient через go-tdlib
type TelegramClient struct {
	client  *client.Client
	api     tdAPI
	logger  *slog.Logger
	session string

	sends       *sendTracker
	sendTimeout time.Duration
}

var _ ports.TelegramClient = (*TelegramClient)(nil)

type ClientMode int

const (
	ClientModeRuntime ClientMode = iota // боевой режим: авторизация и пересылка
	ClientModeAuth                      // режим авторизации: поднять TDLib, пройти логин и выйти
)

func (m ClientMode) String() string {
	if m == ClientModeAuth {
		return "auth"
	}
	return "runtime"
}

func NewClient(
	sc *ports.SessionConfig,
	baseDir string, // "./sessions"
	log *slog.Logger,
	mode ClientMode,
) (*TelegramClient, error) {
	sessionDir := filepath.Join(baseDir, sc.SessionName)
	dbDir := filepath.Join(sessionDir, "database")
	filesDir := filepath.Join(sessionDir, "files")

	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	if err := os.MkdirAll(filesDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir files dir: %w", err)
	}

	if _, err := client.SetLogVerbosityLevel(&client.SetLogVerbosityLevelRequest{
		NewVerbosityLevel: 1,
	}); err != nil {
		log.Error("TDLib SetLogVerbosityLevel", "error", err)
	}

	checkConnectivity(log, sc.Proxy)

	var opts []client.Option
	if sc.Proxy != nil {
		opts = append(opts, client.WithProxy(tdProxy(sc.Proxy)))
	}

	authorizer := client.ClientAuthorizer(tdParams(sc, dbDir, filesDir))
	go (&interactor{
		log:         log,
		phone:       sc.Phone,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		state:       authorizer.State,
		phoneNumber: authorizer.PhoneNumber,
		code:        authorizer.Code,
		password:    authorizer.Password,
	}).run()

	tdCli, err := client.NewClient(authorizer, opts...)
	if err != nil {
		log.Error("TDLib NewClient error", "session", sc.SessionName, "error", err)
		return nil, err
	}

	log.Info("TDLib client started", "session", sc.SessionName, "mode", mode.String())

	// слушатель не закрываем: go-tdlib пишет в Updates без блокировки, канал живёт до выхода процесса
	sends := newSendTracker()
	go sends.run(tdCli.GetListener().Updates)

	return &TelegramClient{
		client:      tdCli,
		api:         tdCli,
		logger:      log,
		session:     sc.SessionName,
		sends:       sends,
		sendTimeout: defaultSendTimeout,
	}, nil
}

// Реализация ports.TelegramClient:

func (t *TelegramClient) Authenticate(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	me, err := t.api.GetMe()
	if err != nil {
		t.logger.Error("GetMe failed", "error", err)
		return nil, fmt.Errorf("GetMe: %w", err)
	}

	t.logger.Info("TDLib client authorized", "self_id", me.Id)
	return &domain.Session{
		SessionName: t.session,
		UserID:      me.Id,
		Phone:       me.PhoneNumber,
	}, nil
}

func (t *TelegramClient) Close() {
	if t.client != nil {
		t.client.Close()
	}
}

// ResolveChat понимает числовой chat id ("-1001234567890") и публичный username ("@name")
func (t *TelegramClient) ResolveChat(ctx context.Context, ref string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ref = strings.TrimSpace(ref)

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		chat, err := t.api.GetChat(&client.GetChatRequest{ChatId: id})
		if err != nil {
			t.logger.Error("GetChat failed", "chat_id", id, "error", err)
			return 0, fmt.Errorf("GetChat %d: %w: %w", id, domain.ErrChatNotFound, err)
		}
		t.logger.Info("Resolved chat", "chat_id", chat.Id, "title", chat.Title)
		return chat.Id, nil
	}

	username := strings.TrimPrefix(ref, "@")
	if username == "" {
		return 0, fmt.Errorf("empty channel reference: %w", domain.ErrChatNotFound)
	}
	chat, err := t.api.SearchPublicChat(&client.SearchPublicChatRequest{
		Username: username,
	})
	if err != nil {
		t.logger.Error("SearchPublicChat failed", "username", username, "error", err)
		return 0, fmt.Errorf("SearchPublicChat @%s: %w: %w", username, domain.ErrChatNotFound, err)
	}
	t.logger.Info("Resolved chat", "username", username, "chat_id", chat.Id, "title", chat.Title)
	return chat.Id, nil
}

func (t *TelegramClient) IterateMessages(ctx context.Context, chatID int64) ports.MessageIterator {
	return newHistoryIterator(t.api, t.logger, chatID)
}

func (t *TelegramClient) SendText(ctx context.Context, chatID int64, text domain.Caption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := t.api.SendMessage(&client.SendMessageRequest{
		ChatId: chatID,
		InputMessageContent: &client.InputMessageText{
			Text:       toFormatted(text),
			ClearDraft: true,
		},
	})
	if err != nil {
		return t.sendError("SendMessage", chatID, err)
	}
	return t.confirm(ctx, "SendMessage", chatID, msg)
}

// SendMedia отправляет одно вложение обычным сообщением, несколько сразу альбомом.
// Подпись прикрепляется к первому элементу альбома.
func (t *TelegramClient) SendMedia(ctx context.Context, chatID int64, items []domain.Media, caption domain.Caption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("SendMedia: no media items")
	}

	if len(items) == 1 {
		msg, err := t.api.SendMessage(&client.SendMessageRequest{
			ChatId:              chatID,
			InputMessageContent: toInputContent(items[0], caption),
		})
		if err != nil {
			return t.sendError("SendMessage media", chatID, err)
		}
		return t.confirm(ctx, "SendMessage media", chatID, msg)
	}

	contents := make([]client.InputMessageContent, 0, len(items))
	for i, item := range items {
		var itemCaption domain.Caption
		if i == 0 {
			itemCaption = caption
		}
		contents = append(contents, toInputContent(item, itemCaption))
	}

	album, err := t.api.SendMessageAlbum(&client.SendMessageAlbumRequest{
		ChatId:               chatID,
		InputMessageContents: contents,
	})
	if err != nil {
		return t.sendError("SendMessageAlbum", chatID, err)
	}
	var sent []*client.Message
	if album != nil {
		sent = album.Messages
	}
	return t.confirm(ctx, "SendMessageAlbum", chatID, sent...)
}

// confirm ждёт, пока сервер подтвердит каждое отправленное сообщение
func (t *TelegramClient) confirm(ctx context.Context, op string, chatID int64, msgs ...*client.Message) error {
	if err := t.sends.wait(ctx, t.sendTimeout, msgs); err != nil {
		return t.sendError(op, chatID, err)
	}
	return nil
}

func (t *TelegramClient) sendError(op string, chatID int64, err error) error {
	// 🔍 проверяем, не словили ли лимит
	if isTooManyRequests(err) {
		t.logger.Error(op+" rate-limited: too many requests", "chat_id", chatID, "error", err)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrRateLimited, err)
	}

	t.logger.Error(op+" failed", "chat_id", chatID, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func isTooManyRequests(err error) bool {
	// TDLib отдаёт ошибки как client.ResponseError
	var tdErr client.ResponseError
	if errors.As(err, &tdErr) && tdErr.Err != nil {
		if tdErr.Err.Code == 429 {
			return true
		}
		msg := strings.ToLower(tdErr.Err.Message)
		return strings.Contains(msg, "too many requests") || strings.Contains(msg, "flood_wait")
	}

	// текстовые ошибки вида "429 Too Many Requests: retry after 35"
	msg := strings.ToLower(err.Error())
	return strings.HasPrefix(msg, "429") || strings.Contains(msg, "too many requests")
}
