package tg

import (
	"fmt"
	"strings"

	"github.com/larriantoniy/tg_relay_bot/internal/ports"
	"github.com/samber/lo"
	"github.com/zelenin/go-tdlib/client"
)

// RawSessionConfig: содержимое <base_dir>/<session>/config.json
type RawSessionConfig struct {
	SessionFile string `json:"session_file"`
	Phone       string `json:"phone"`

	AppID   int32  `json:"app_id"`
	AppHash string `json:"app_hash"`

	SDK        string `json:"sdk"`
	AppVersion string `json:"app_version"`
	Device     string `json:"device"`
	LangCode   string `json:"lang_code"`

	// [type, host, port, useAuth, user, pass]
	Proxy []any `json:"proxy"`
}

// коды типов как в PySocks; строковые имена тоже принимаются
var proxyTypeCodes = map[int]ports.ProxyType{
	2: ports.ProxySOCKS5,
	3: ports.ProxyHTTP,
}

func parseProxyType(v any) (ports.ProxyType, error) {
	switch t := v.(type) {
	case float64:
		if pt, ok := proxyTypeCodes[int(t)]; ok {
			return pt, nil
		}
	case int:
		if pt, ok := proxyTypeCodes[t]; ok {
			return pt, nil
		}
	case string:
		switch pt := ports.ProxyType(strings.ToLower(t)); pt {
		case ports.ProxySOCKS5, ports.ProxyHTTP, ports.ProxyMTProto:
			return pt, nil
		}
	}
	return "", fmt.Errorf("unsupported proxy type %v", v)
}

func parseProxyPort(v any) (int32, error) {
	var port int
	switch p := v.(type) {
	case float64:
		port = int(p)
	case int:
		port = p
	default:
		return 0, fmt.Errorf("invalid proxy port type %T", v)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("proxy port out of range: %d", port)
	}
	return int32(port), nil
}

// ToProxyConfig разбирает кортеж прокси. Пустой кортеж или пустой хост: без прокси.
func (c *RawSessionConfig) ToProxyConfig() (*ports.ProxyConfig, error) {
	if len(c.Proxy) == 0 {
		return nil, nil
	}
	if len(c.Proxy) < 6 {
		return nil, fmt.Errorf("invalid proxy length: %d", len(c.Proxy))
	}

	host, _ := c.Proxy[1].(string)
	port, err := parseProxyPort(c.Proxy[2])
	if err != nil {
		return nil, err
	}
	if host == "" || port == 0 {
		return nil, nil
	}

	typ, err := parseProxyType(c.Proxy[0])
	if err != nil {
		return nil, err
	}

	p := &ports.ProxyConfig{Type: typ, Server: host, Port: port}
	if useAuth, _ := c.Proxy[3].(bool); useAuth || typ == ports.ProxyMTProto {
		p.Username, _ = c.Proxy[4].(string)
		p.Password, _ = c.Proxy[5].(string)
	}
	return p, nil
}

// ToSessionConfig накладывает файл сессии на общие настройки: непустые значения файла важнее
func (c *RawSessionConfig) ToSessionConfig(base ports.SessionConfig) (*ports.SessionConfig, error) {
	proxyCfg, err := c.ToProxyConfig()
	if err != nil {
		return nil, fmt.Errorf("proxy parse: %w", err)
	}

	sc := base
	sc.SessionName = lo.CoalesceOrEmpty(c.SessionFile, base.SessionName)
	sc.Phone = lo.CoalesceOrEmpty(c.Phone, base.Phone)
	sc.DeviceModel = lo.CoalesceOrEmpty(c.Device, base.DeviceModel)
	sc.SystemVersion = lo.CoalesceOrEmpty(c.SDK, base.SystemVersion)
	sc.ApplicationVersion = lo.CoalesceOrEmpty(c.AppVersion, base.ApplicationVersion)
	sc.LangCode = lo.CoalesceOrEmpty(c.LangCode, base.LangCode)
	// api id и hash меняются только парой
	if c.AppID != 0 && c.AppHash != "" {
		sc.AppID, sc.AppHash = c.AppID, c.AppHash
	}
	if proxyCfg != nil {
		sc.Proxy = proxyCfg
	}
	return &sc, nil
}

func tdProxy(p *ports.ProxyConfig) *client.AddProxyRequest {
	req := &client.AddProxyRequest{Server: p.Server, Port: p.Port, Enable: true}
	switch p.Type {
	case ports.ProxyHTTP:
		req.Type = &client.ProxyTypeHttp{Username: p.Username, Password: p.Password}
	case ports.ProxyMTProto:
		req.Type = &client.ProxyTypeMtproto{Secret: p.Password}
	default:
		req.Type = &client.ProxyTypeSocks5{Username: p.Username, Password: p.Password}
	}
	return req
}

func tdParams(sc *ports.SessionConfig, dbDir, filesDir string) *client.SetTdlibParametersRequest {
	return &client.SetTdlibParametersRequest{
		DatabaseDirectory:   dbDir,
		FilesDirectory:      filesDir,
		UseFileDatabase:     true,
		UseChatInfoDatabase: true,
		UseMessageDatabase:  true,
		ApiId:               sc.AppID,
		ApiHash:             sc.AppHash,
		SystemLanguageCode:  lo.CoalesceOrEmpty(sc.LangCode, "en"),
		DeviceModel:         lo.CoalesceOrEmpty(sc.DeviceModel, "Desktop"),
		SystemVersion:       lo.CoalesceOrEmpty(sc.SystemVersion, "Windows 10"),
		ApplicationVersion:  lo.CoalesceOrEmpty(sc.ApplicationVersion, "2.0"),
	}
}
