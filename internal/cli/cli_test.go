package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lumenworks/cmsctl/internal/config"
)

func writeTestConfigFile(t *testing.T, serverURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`current-context: test
contexts:
  - name: test
    server: %s
    token: test-token
`, serverURL)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	out, err := runCommand(t, "", "version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(out); got != "test" {
		t.Fatalf("version output = %q, want %q", got, "test")
	}
}

func TestExitCodeMapping(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Fatalf("ExitCode(nil) = %d, want 0", got)
	}
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Fatalf("ExitCode(plain) = %d, want 1", got)
	}
	coded := fmt.Errorf("wrap: %w", &ExitError{Code: 3, Err: errors.New("inner")})
	if got := ExitCode(coded); got != 3 {
		t.Fatalf("ExitCode(coded) = %d, want 3", got)
	}
}

func TestPagesListRendersTable(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/pages" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"id":"p1","title":"Home","slug":"home","status":"published","layout":[{"moduleId":"m1","order":1}],"createdAt":"2026-01-01","updatedAt":"2026-01-02"}],"total":1,"page":1,"limit":20}`)
	}))
	defer srv.Close()
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, srv.URL))

	out, err := runCommand(t, "", "pages", "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("Authorization = %q, want bearer token from context", gotAuth)
	}
	if !strings.Contains(out, "home") || !strings.Contains(out, "published") {
		t.Fatalf("table output missing page row:\n%s", out)
	}
}

func TestPagesDeleteAbortsWithoutConfirmation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			t.Fatalf("delete request issued despite declined confirmation")
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, srv.URL))

	out, err := runCommand(t, "n\n", "pages", "delete", "p1")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Aborted.") {
		t.Fatalf("expected abort message, got %q", out)
	}
}

func TestModulesCloneCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/modules/m1":
			fmt.Fprint(w, `{"module":{"id":"m1","type":"hero","title":"Hero","content":{"title":"A"},"status":"published","version":2}}`)
		case r.Method == http.MethodPost && r.URL.Path == "/admin/modules":
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode create body: %v", err)
			}
			if body["type"] != "hero" || body["title"] != "Hero (Copy)" {
				t.Fatalf("unexpected clone payload: %v", body)
			}
			fmt.Fprint(w, `{"module":{"id":"m2","type":"hero","title":"Hero (Copy)","content":{"title":"A"},"status":"draft","version":1}}`)
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, srv.URL))

	out, err := runCommand(t, "", "modules", "clone", "m1", "Hero (Copy)")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "m2") {
		t.Fatalf("expected clone confirmation with new id, got %q", out)
	}
}

func TestContextUseSwitchesCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `current-context: one
contexts:
  - name: one
    server: http://one.internal
  - name: two
    server: http://two.internal
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, path)

	out, err := runCommand(t, "", "context", "use", "two")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, `Switched to context "two"`) {
		t.Fatalf("expected switch confirmation, got %q", out)
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.CurrentContext != "two" {
		t.Fatalf("current-context = %q, want %q", cfg.CurrentContext, "two")
	}
}

func TestContextSetTokenUpdatesConfig(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, "http://backend.internal"))

	out, err := runCommand(t, "", "context", "set", "test", "--token", "rotated")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, `Updated context "test"`) {
		t.Fatalf("expected update confirmation, got %q", out)
	}

	cfg, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Contexts[0].Token != "rotated" {
		t.Fatalf("token = %q, want %q", cfg.Contexts[0].Token, "rotated")
	}
}

func TestStoriesUpdateFromDraftMergesAndDiscards(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var gotUpdate map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/admin/stories/s1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotUpdate); err != nil {
			t.Fatalf("decode update body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"story":{"id":"s1","title":"Flag title","slug":"s","status":"draft"}}`)
	}))
	defer srv.Close()
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, srv.URL))

	if _, err := runCommand(t, "", "stories", "draft", "save", "s1", "--title", "Draft title", "--excerpt", "Draft excerpt"); err != nil {
		t.Fatalf("draft save error = %v", err)
	}

	// The explicit flag overrides the draft; the draft-only field rides along.
	if _, err := runCommand(t, "", "stories", "update", "s1", "--from-draft", "--title", "Flag title"); err != nil {
		t.Fatalf("update error = %v", err)
	}
	if gotUpdate["title"] != "Flag title" {
		t.Fatalf("title = %v, want explicit flag value", gotUpdate["title"])
	}
	if gotUpdate["excerpt"] != "Draft excerpt" {
		t.Fatalf("excerpt = %v, want draft value", gotUpdate["excerpt"])
	}

	out, err := runCommand(t, "", "stories", "draft", "show", "s1")
	if err != nil {
		t.Fatalf("draft show error = %v", err)
	}
	if !strings.Contains(out, "No local draft") {
		t.Fatalf("draft should be discarded after a successful save, got %q", out)
	}
}

func TestConfigViewRedactsTokens(t *testing.T) {
	t.Setenv(config.EnvConfigPath, writeTestConfigFile(t, "http://backend.internal"))

	out, err := runCommand(t, "", "config", "view")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(out, "test-token") {
		t.Fatalf("config view leaked the token:\n%s", out)
	}
	if !strings.Contains(out, "REDACTED") {
		t.Fatalf("expected redaction marker, got:\n%s", out)
	}
}
