package tg

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/larriantoniy/tg_relay_bot/internal/ports"
)

const (
	checkTimeout      = 3 * time.Second
	proxyCheckTimeout = 5 * time.Second
)

// netCheck: одна проверка сетевой доступности перед запуском TDLib
type netCheck struct {
	name    string
	network string
	addr    string
	timeout time.Duration
}

func dial(p netCheck) error {
	conn, err := net.DialTimeout(p.network, p.addr, p.timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

// connectivityChecks: DNS-серверы по IPv4/IPv6 и, если включён, прокси
func connectivityChecks(proxyCfg *ports.ProxyConfig) []netCheck {
	checks := []netCheck{
		{name: "IPv4", network: "tcp4", addr: "8.8.8.8:53", timeout: checkTimeout},
		{name: "IPv6", network: "tcp6", addr: "[2606:4700:4700::1111]:53", timeout: checkTimeout},
	}
	if proxyCfg == nil {
		return checks
	}

	addr := net.JoinHostPort(proxyCfg.Server, strconv.Itoa(int(proxyCfg.Port)))
	switch ip := net.ParseIP(proxyCfg.Server); {
	case ip != nil && ip.To4() != nil:
		checks = append(checks, netCheck{name: "proxy IPv4", network: "tcp4", addr: addr, timeout: proxyCheckTimeout})
	case ip != nil:
		checks = append(checks, netCheck{name: "proxy IPv6", network: "tcp6", addr: addr, timeout: proxyCheckTimeout})
	default:
		// hostname: пусть резолвер сам выберет семейство
		checks = append(checks, netCheck{name: "proxy", network: "tcp", addr: addr, timeout: proxyCheckTimeout})
	}
	return checks
}

// checkConnectivity только логирует результат: TDLib сам повторит подключение
func checkConnectivity(logger *slog.Logger, proxyCfg *ports.ProxyConfig) {
	if proxyCfg == nil {
		logger.Info("proxy disabled, skipping check")
	}
	for _, p := range connectivityChecks(proxyCfg) {
		if err := dial(p); err != nil {
			logger.Warn(fmt.Sprintf("%s seems not working", p.name), "addr", p.addr, "error", err)
			continue
		}
		logger.Info(fmt.Sprintf("%s OK", p.name), "addr", p.addr)
	}
}
