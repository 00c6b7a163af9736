package ports

import (
	"context"
)

type ProxyType string

const (
	ProxySOCKS5  ProxyType = "socks5"
	ProxyHTTP    ProxyType = "http"
	ProxyMTProto ProxyType = "mtproto"
)

// ProxyConfig: прокси, через который TDLib ходит в сеть.
// Для mtproto Password хранит secret.
type ProxyConfig struct {
	Type     ProxyType
	Server   string
	Port     int32
	Username string
	Password string
}

// SessionConfig: всё, что нужно адаптеру, чтобы поднять одну пользовательскую сессию
type SessionConfig struct {
	SessionName        string
	Phone              string
	AppID              int32
	AppHash            string
	DeviceModel        string
	SystemVersion      string
	ApplicationVersion string
	LangCode           string
	// nil: без прокси
	Proxy *ProxyConfig
}

type SessionConfigRepo interface {
	GetSessionConfig(ctx context.Context, sessionName string) (*SessionConfig, error)
}
