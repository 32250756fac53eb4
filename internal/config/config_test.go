package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:8765" {
		t.Fatalf("unexpected default base url %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Fatalf("unexpected default timeout %s", cfg.API.Timeout)
	}
	if cfg.UI.NoticeTTL != 3*time.Second {
		t.Fatalf("unexpected default notice ttl %s", cfg.UI.NoticeTTL)
	}
	if cfg.Stub.PerPage != 10 {
		t.Fatalf("expected per page 10, got %d", cfg.Stub.PerPage)
	}
	if !strings.HasPrefix(cfg.StateDir, cfg.Dir) {
		t.Fatalf("expected state dir under %s, got %s", cfg.Dir, cfg.StateDir)
	}
	if cfg.LastProductID() != 0 {
		t.Fatalf("expected no last product, got %d", cfg.LastProductID())
	}
}

func TestLoadParsesYaml(t *testing.T) {
	dir := t.TempDir()
	settings := strings.TrimSpace(`
api:
  base_url: https://shop.example.com/api/
  timeout: 5s
  token: secret
ui:
  notice_ttl: 0s
stub:
  port: 9100
state_dir: var/state
`)
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(settings), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "https://shop.example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Fatalf("wrong timeout: %s", cfg.API.Timeout)
	}
	if cfg.API.Token != "secret" {
		t.Fatalf("wrong token: %q", cfg.API.Token)
	}
	if cfg.UI.NoticeTTL != 0 {
		t.Fatalf("expected sticky notices, got %s", cfg.UI.NoticeTTL)
	}
	if cfg.Stub.Port != 9100 {
		t.Fatalf("wrong stub port: %d", cfg.Stub.Port)
	}
	if want := filepath.Join(cfg.Dir, "var", "state"); cfg.StateDir != want {
		t.Fatalf("state dir = %s, want %s", cfg.StateDir, want)
	}
}

func TestLoadHonorsEnv(t *testing.T) {
	t.Setenv("BACKOFFICE_API_BASE_URL", "http://10.0.0.5:9000")
	t.Setenv("BACKOFFICE_API_TOKEN", "from-env")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:9000" {
		t.Fatalf("expected env base url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "from-env" {
		t.Fatalf("expected env token, got %q", cfg.API.Token)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"scheme":  "api:\n  base_url: ftp://example.com\n",
		"timeout": "api:\n  timeout: -1s\n",
		"port":    "stub:\n  port: 70000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestSetLastProductPersists(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.SetLastProduct(0); err == nil {
		t.Fatalf("expected error for non-positive product id")
	}
	if err := cfg.SetLastProduct(42); err != nil {
		t.Fatalf("SetLastProduct returned error: %v", err)
	}
	reloaded, err := Load(dir)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	if reloaded.LastProductID() != 42 {
		t.Fatalf("expected persisted product 42, got %d", reloaded.LastProductID())
	}
	data, err := os.ReadFile(reloaded.PreferencesPath())
	if err != nil {
		t.Fatalf("read preferences: %v", err)
	}
	if !strings.Contains(string(data), "last_product_id: 42") {
		t.Fatalf("preferences file missing product id:\n%s", data)
	}
}

func TestInitStateDirWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := InitStateDir(dir); err != nil {
		t.Fatalf("InitStateDir returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
	if info, err := os.Stat(filepath.Join(dir, ".backoffice", "logs")); err != nil || !info.IsDir() {
		t.Fatalf("expected logs dir, err=%v", err)
	}
	// A second call must not overwrite user edits.
	custom := []byte("api:\n  base_url: http://example.test\n")
	if err := os.WriteFile(filepath.Join(dir, FileName), custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitStateDir(dir); err != nil {
		t.Fatalf("second InitStateDir returned error: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if string(data) != string(custom) {
		t.Fatalf("settings file was overwritten")
	}
}
