package tg

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/zelenin/go-tdlib/client"
)

// interactor отвечает на запросы авторизации TDLib:
// телефон берётся из конфига, код и пароль 2FA спрашиваются в консоли.
type interactor struct {
	log   *slog.Logger
	phone string
	in    *bufio.Reader
	out   io.Writer

	state       <-chan client.AuthorizationState
	phoneNumber chan<- string
	code        chan<- string
	password    chan<- string
}

func (i *interactor) prompt(label string) string {
	fmt.Fprint(i.out, label)
	line, _ := i.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (i *interactor) run() {
	for state := range i.state {
		switch state.AuthorizationStateType() {
		case client.TypeAuthorizationStateWaitPhoneNumber:
			phone := i.phone
			if phone == "" {
				phone = i.prompt("Enter phone number: ")
			}
			i.log.Info("TDLib requested phone number", "phone", phone)
			i.phoneNumber <- phone

		case client.TypeAuthorizationStateWaitCode:
			i.code <- i.prompt("Enter the code you received: ")

		case client.TypeAuthorizationStateWaitPassword:
			i.password <- i.prompt("Enter 2FA password: ")

		case client.TypeAuthorizationStateReady:
			i.log.Info("TDLib authorization ready")
			return

		default:
			i.log.Debug("TDLib authorization state", "state", state.AuthorizationStateType())
		}
	}
}
