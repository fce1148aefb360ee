package config

import (
	"testing"
	"time"
)

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.yaml", "addr: [unterminated\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected YAML unmarshal error")
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.json", `{ "addr": ":8080", "models_dir": }`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected JSON unmarshal error")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "bad.toml", "addr=:8080\nmodels_dir\n")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected TOML unmarshal error")
	}
}

func TestDurations_MalformedFallsBack(t *testing.T) {
	cfg := Config{LoadTimeout: "soon", SessionTTL: "0"}
	if got := cfg.LoadTimeoutDuration(); got != DefaultLoadTimeout {
		t.Fatalf("load timeout = %v", got)
	}
	if got := cfg.SessionTTLDuration(); got != 0 {
		t.Fatalf("session ttl = %v, want 0", got)
	}
	cfg.LoadTimeout = "250ms"
	if got := cfg.LoadTimeoutDuration(); got != 250*time.Millisecond {
		t.Fatalf("load timeout = %v", got)
	}
}
