package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimited       = errors.New("tdlib: too many requests")
	ErrChatNotFound      = errors.New("chat not found")
	ErrUnsupportedDriver = errors.New("unsupported checkpoint driver")
)

// Stage: точка, на которой прервался прогон пересылки
type Stage string

const (
	StageSession        Stage = "session"
	StageAuth           Stage = "auth"
	StageResolve        Stage = "resolve"
	StageLoadCheckpoint Stage = "load_checkpoint"
	StageFetch          Stage = "fetch"
	StageDispatch       Stage = "dispatch"
	StageSaveCheckpoint Stage = "save_checkpoint"
	StageInterrupted    Stage = "interrupted"
)

// RelayError: результат аварийно завершённого прогона.
// MessageID: сообщение (или последний id альбома), на котором остановился прогон.
type RelayError struct {
	Stage     Stage
	MessageID int64
	Err       error
}

func (e *RelayError) Error() string {
	if e.MessageID != 0 {
		return fmt.Sprintf("relay aborted at %s (message %d): %v", e.Stage, e.MessageID, e.Err)
	}
	return fmt.Sprintf("relay aborted at %s: %v", e.Stage, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

// StageOf достаёт стадию из цепочки ошибок
func StageOf(err error) (Stage, bool) {
	var re *RelayError
	if errors.As(err, &re) {
		return re.Stage, true
	}
	return "", false
}
