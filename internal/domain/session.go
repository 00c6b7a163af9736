package domain

// Session: авторизованная пользовательская сессия Telegram
type Session struct {
	SessionName string
	UserID      int64
	Phone       string
}
