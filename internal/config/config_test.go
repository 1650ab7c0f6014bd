package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	cfg := DefaultConfig()
	if cfg.Transport != TransportLocal {
		t.Errorf("expected local transport, got %q", cfg.Transport)
	}
	if cfg.PageSize != 999 {
		t.Errorf("expected page size 999, got %d", cfg.PageSize)
	}
	if cfg.Database != "/tmp/state/tada/todos.db" {
		t.Errorf("unexpected database %q", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Server.Addr != "localhost:8080" {
		t.Errorf("expected default config, got addr %q", cfg.Server.Addr)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
transport: ws
endpoint: ws://example.test/ws
database: ~/todos.json
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Transport != TransportWS || cfg.Endpoint != "ws://example.test/ws" {
		t.Errorf("unexpected transport %q %q", cfg.Transport, cfg.Endpoint)
	}
	home, _ := os.UserHomeDir()
	if cfg.Database != filepath.Join(home, "todos.json") {
		t.Errorf("expected expanded database path, got %q", cfg.Database)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected warn, got %q", cfg.Log.Level)
	}
	// unset fields keep their defaults
	if cfg.PageSize != 999 {
		t.Errorf("expected default page size, got %d", cfg.PageSize)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("transport: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(bad); err == nil {
		t.Error("expected parse error")
	}

	noEndpoint := filepath.Join(dir, "http.yaml")
	if err := os.WriteFile(noEndpoint, []byte("transport: http\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(noEndpoint); err == nil {
		t.Error("expected http without endpoint to be rejected")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("TADA_TRANSPORT", "HTTP")
	t.Setenv("TADA_ENDPOINT", "http://127.0.0.1:9000")
	t.Setenv("TADA_DB", "memory")
	t.Setenv("TADA_DEBUG", "1")

	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.Transport != TransportHTTP || cfg.Endpoint != "http://127.0.0.1:9000" || cfg.Database != "memory" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected TADA_DEBUG to force debug, got %q", cfg.Log.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg := DefaultConfig()
	cfg.Transport = TransportHTTP
	cfg.Endpoint = "http://localhost:8080"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}
