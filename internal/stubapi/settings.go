package stubapi

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/backoffice/internal/config"
)

const (
	// DefaultHost is the loopback interface used when no host is configured.
	DefaultHost = "127.0.0.1"
	// DefaultPort matches the client's default api.base_url.
	DefaultPort = 8765
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes.
	DefaultWriteTimeout = 15 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the stub server.
type Settings struct {
	Host         string
	Port         int
	PerPage      int
	Seed         bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultSettings returns loopback settings with sample data enabled.
func DefaultSettings() Settings {
	s := Settings{Port: DefaultPort, Seed: true}
	s.normalize()
	return s
}

// SettingsFromConfig builds Settings from the stub section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := DefaultSettings()
	if cfg != nil {
		raw := cfg.Stub
		if host := strings.TrimSpace(raw.Host); host != "" {
			settings.Host = host
		}
		if isValidPort(raw.Port) {
			settings.Port = raw.Port
		}
		if raw.PerPage > 0 {
			settings.PerPage = raw.PerPage
		}
		settings.Seed = raw.Seed
	}
	settings.normalize()
	return settings
}

func (s *Settings) normalize() {
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	// Port 0 asks the kernel for a free port.
	if s.Port < 0 || s.Port > 65535 {
		s.Port = DefaultPort
	}
	if s.PerPage <= 0 {
		s.PerPage = DefaultPerPage
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the server.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
