package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/scrawl/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestAPIConfig_Timeout(t *testing.T) {
	cfg := APIConfig{BaseURL: "http://localhost:8000/api", TimeoutSeconds: 30}
	if got := cfg.Timeout(); got != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", got)
	}
}

func TestAPIConfig_MissingBaseURL(t *testing.T) {
	cfg := APIConfig{TimeoutSeconds: 15}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing base URL should fail")
	}
}

func TestAPIConfig_BadTimeout(t *testing.T) {
	for _, secs := range []int{0, -1, 301} {
		cfg := APIConfig{BaseURL: "http://localhost:8000/api", TimeoutSeconds: secs}
		if err := cfg.Validate(); err == nil {
			t.Errorf("timeout %d should fail", secs)
		}
	}
}

func TestSessionConfig_MissingDir(t *testing.T) {
	cfg := SessionConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing session dir should fail")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	raw := `
app:
  log_level: -4
api:
  base_url: https://blog.example.com/api
  timeout_seconds: 30
session:
  dir: /tmp/scrawl-state
drafts:
  path: /tmp/scrawl-state/drafts.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://blog.example.com/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("timeout_seconds = %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Session.Dir != "/tmp/scrawl-state" {
		t.Errorf("session dir = %q", cfg.Session.Dir)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log_level = %v, want debug", cfg.App.LogLevel)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("SCRAWL_TEST_API", "http://env.example.com/api")
	raw := `
api:
  base_url: ${SCRAWL_TEST_API}
  timeout_seconds: 15
session:
  dir: ./.scrawl
drafts:
  path: ./.scrawl/drafts.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://env.example.com/api" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
}

func TestLoadIfExists_MissingFileKeepsDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := config.LoadIfExists(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("LoadIfExists: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8000/api" {
		t.Errorf("base_url = %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadConfig_InvalidValuesRejected(t *testing.T) {
	raw := `
api:
  base_url: ""
  timeout_seconds: 15
session:
  dir: ./.scrawl
drafts:
  path: ./.scrawl/drafts.db
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err == nil {
		t.Fatal("empty base_url should fail validation")
	}
}
