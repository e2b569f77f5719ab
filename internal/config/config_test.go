package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":3000" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr)
	}
	if !cfg.Rules.HaltOnTerminal || cfg.Rules.EnforceTurn {
		t.Fatalf("unexpected rule defaults: %+v", cfg.Rules)
	}
	if cfg.Games.MaxConcurrent != 200 {
		t.Fatalf("unexpected max games %d", cfg.Games.MaxConcurrent)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  allowed_origins: ["http://a.test", "http://b.test"]
rules:
  enforce_turn: true
  halt_on_terminal: false
games:
  max_concurrent: 5
log:
  level: debug
  format: json
`)
	t.Setenv("CLONECHESS_ADDR", ":7070")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("env should override addr, got %q", cfg.Server.Addr)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Rules.EnforceTurn || cfg.Rules.HaltOnTerminal {
		t.Fatalf("rules not read from yaml: %+v", cfg.Rules)
	}
	if cfg.Games.MaxConcurrent != 5 {
		t.Fatalf("expected 5 games, got %d", cfg.Games.MaxConcurrent)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("log config not read: %+v", cfg.Log)
	}
	if cfg.Redis.URL != "redis://localhost:6379/1" || cfg.Redis.Channel != "clonechess:events" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "server:\n  adress: \":1\"\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "max games not a number", key: "MAX_CONCURRENT_GAMES", value: "many"},
		{name: "max games zero", key: "MAX_CONCURRENT_GAMES", value: "0"},
		{name: "enforce turn not a bool", key: "RULES_ENFORCE_TURN", value: "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestEnvOriginsList(t *testing.T) {
	t.Setenv("CLONECHESS_ALLOWED_ORIGINS", " http://x.test , ,http://y.test")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://y.test" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
}
