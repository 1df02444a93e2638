package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromPathValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `current-context: staging
contexts:
  - name: staging
    server: https://api.staging.example.com
    token: tok-123
  - name: production
    server: ssh://deploy@cms.example.com
    backendAddr: 127.0.0.1:4000
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.APIVersion != DefaultAPIVersion {
		t.Fatalf("expected normalized apiVersion, got %q", cfg.APIVersion)
	}
	if cfg.CurrentContext != "staging" {
		t.Fatalf("unexpected current-context %q", cfg.CurrentContext)
	}
	if len(cfg.Contexts) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(cfg.Contexts))
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestValidateRejectsDuplicateContexts(t *testing.T) {
	cfg := Config{Contexts: []Context{
		{Name: "a", Server: "https://one.example.com"},
		{Name: "a", Server: "https://two.example.com"},
	}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate context") {
		t.Fatalf("expected duplicate context error, got %v", err)
	}
}

func TestValidateRejectsUnsupportedScheme(t *testing.T) {
	cfg := Config{Contexts: []Context{{Name: "a", Server: "ftp://example.com"}}}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestSaveRoundTripsAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	cfg := Config{
		CurrentContext: "local",
		Contexts: []Context{
			{Name: "local", Server: "http://127.0.0.1:4000", Token: "tok"},
		},
	}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() after save error = %v", err)
	}
	if got.CurrentContext != "local" || len(got.Contexts) != 1 || got.Contexts[0].Token != "tok" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 perms, got %v", info.Mode().Perm())
	}
}

func TestResolveContextExplicitAndCurrent(t *testing.T) {
	cfg := Config{
		CurrentContext: "staging",
		Contexts: []Context{
			{Name: "staging", Server: "https://api.staging.example.com", Token: "s-tok"},
			{Name: "production", Server: "ssh://deploy@cms.example.com"},
		},
	}

	info, err := ResolveContext(cfg, "")
	if err != nil {
		t.Fatalf("ResolveContext(current) error = %v", err)
	}
	if info.Name != "staging" || info.Token != "s-tok" {
		t.Fatalf("unexpected resolved context %+v", info)
	}

	info, err = ResolveContext(cfg, "production")
	if err != nil {
		t.Fatalf("ResolveContext(explicit) error = %v", err)
	}
	if !info.UsesSSH() {
		t.Fatalf("expected ssh context, got %+v", info)
	}

	if _, err := ResolveContext(cfg, "nope"); err == nil || !strings.Contains(err.Error(), "available contexts") {
		t.Fatalf("expected unknown-context error, got %v", err)
	}
}

func TestSetToken(t *testing.T) {
	cfg := Config{Contexts: []Context{{Name: "local", Server: "http://127.0.0.1:4000"}}}
	if err := SetToken(&cfg, "local", "new-tok"); err != nil {
		t.Fatalf("SetToken() error = %v", err)
	}
	if cfg.Contexts[0].Token != "new-tok" {
		t.Fatalf("token not updated: %+v", cfg.Contexts[0])
	}
	if err := SetToken(&cfg, "other", "x"); err == nil {
		t.Fatalf("expected error for unknown context")
	}
}
