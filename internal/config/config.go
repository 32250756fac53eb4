// internal/config/config.go
//
// This package loads back-office settings and the small preferences file
// kept in the state directory. Settings come from (lowest to highest
// precedence) struct defaults, backoffice.yaml in the working directory, and
// BACKOFFICE_* environment variables.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the settings file looked up in the working directory.
	FileName = "backoffice.yaml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "BACKOFFICE"

	preferencesFile = "preferences.yaml"
)

const defaultSettingsYAML = `# back office settings
api:
  # Root of the catalog REST API (colors, sizes, products/{id}/variants).
  base_url: http://127.0.0.1:8765
  timeout: 15s
  # token: <bearer token forwarded as Authorization header>

ui:
  # How long success/error notices stay on screen. 0 keeps them until the next one.
  notice_ttl: 3s

# Where logs and preferences are written, relative to this file.
state_dir: .backoffice
log_level: info
`

// APIConfig points the client at the REST backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"BASE_URL" default:"http://127.0.0.1:8765" usage:"catalog REST API root"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" default:"15s" usage:"per-request timeout"`
	Token   string        `yaml:"token" env:"TOKEN" usage:"bearer token sent with every request"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	NoticeTTL time.Duration `yaml:"notice_ttl" env:"NOTICE_TTL" default:"3s" usage:"how long notices stay visible"`
}

// StubConfig configures the catalog-stub server.
type StubConfig struct {
	Host    string `yaml:"host" env:"HOST" default:"127.0.0.1" usage:"stub listen host"`
	Port    int    `yaml:"port" env:"PORT" default:"8765" usage:"stub listen port"`
	PerPage int    `yaml:"per_page" env:"PER_PAGE" default:"10" usage:"variants per page"`
	Seed    bool   `yaml:"seed" env:"SEED" default:"true" usage:"load sample colors, sizes and variants"`
}

// Settings is the file/env backed part of the configuration.
type Settings struct {
	API      APIConfig  `yaml:"api" env:"API"`
	UI       UIConfig   `yaml:"ui" env:"UI"`
	Stub     StubConfig `yaml:"stub" env:"STUB"`
	StateDir string     `yaml:"state_dir" env:"STATE_DIR" default:".backoffice" usage:"directory for logs and preferences"`
	LogLevel string     `yaml:"log_level" env:"LOG_LEVEL" default:"info" usage:"debug, info, warn or error"`
}

// Preferences models <state_dir>/preferences.yaml.
type Preferences struct {
	Version       int   `yaml:"version"`
	LastProductID int64 `yaml:"last_product_id,omitempty"`
}

// Config holds the runtime configuration for the back office.
type Config struct {
	Settings

	// Dir is the directory the settings file was looked up in.
	Dir string

	Preferences Preferences
}

// Load reads settings for dir and the preferences stored under the state
// directory.
func Load(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", dir, err)
	}
	cfg := &Config{Dir: abs, Preferences: defaultPreferences()}

	loader := aconfig.LoaderFor(&cfg.Settings, aconfig.Config{
		SkipFlags:        true,
		EnvPrefix:        EnvPrefix,
		AllowUnknownEnvs: true,
		Files:            []string{filepath.Join(abs, FileName)},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, fmt.Errorf("config: load settings: %w", err)
	}
	cfg.Settings.normalize(abs)
	if err := cfg.Settings.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.loadPreferences(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitStateDir creates the state directory layout and writes a commented
// settings file when none exists.
//
// Structure created:
// backoffice.yaml
// .backoffice/
// └── logs/
func InitStateDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := ensureSettingsFile(filepath.Join(abs, FileName)); err != nil {
		return err
	}
	cfg, err := Load(abs)
	if err != nil {
		return err
	}
	return os.MkdirAll(cfg.LogsDir(), 0o755)
}

// LogsDir returns the directory log files are written to.
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// LogPath returns the path of the application log.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "backoffice.log")
}

// PreferencesPath returns the on-disk location of the preferences file.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.StateDir, preferencesFile)
}

// LastProductID returns the product last opened in the variants screen, or 0.
func (c *Config) LastProductID() int64 {
	return c.Preferences.LastProductID
}

// SetLastProduct records id as the last product opened and persists it.
func (c *Config) SetLastProduct(id int64) error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	if id <= 0 {
		return fmt.Errorf("config: product id must be positive")
	}
	c.Preferences.LastProductID = id
	return c.savePreferences()
}

func (s *Settings) normalize(base string) {
	s.API.BaseURL = strings.TrimRight(strings.TrimSpace(s.API.BaseURL), "/")
	s.API.Token = strings.TrimSpace(s.API.Token)
	s.Stub.Host = strings.TrimSpace(s.Stub.Host)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.Stub.PerPage <= 0 {
		s.Stub.PerPage = 10
	}
	s.StateDir = resolvePath(base, s.StateDir)
	if s.StateDir == "" {
		s.StateDir = filepath.Join(base, ".backoffice")
	}
}

func (s *Settings) validate() error {
	u, err := url.Parse(s.API.BaseURL)
	if err != nil || s.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https")
	}
	if s.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if s.UI.NoticeTTL < 0 {
		return fmt.Errorf("ui.notice_ttl must not be negative")
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error")
	}
	if s.Stub.Port <= 0 || s.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 1 and 65535")
	}
	return nil
}

func defaultPreferences() Preferences {
	return Preferences{Version: 1}
}

func (c *Config) loadPreferences() error {
	path := c.PreferencesPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed Preferences
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if parsed.Version == 0 {
		parsed.Version = 1
	}
	if parsed.LastProductID < 0 {
		parsed.LastProductID = 0
	}
	c.Preferences = parsed
	return nil
}

func (c *Config) savePreferences() error {
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Preferences)
	if err != nil {
		return fmt.Errorf("config: encode preferences: %w", err)
	}
	if err := os.WriteFile(c.PreferencesPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write preferences: %w", err)
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureSettingsFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultSettingsYAML), 0o644)
}
