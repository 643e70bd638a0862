package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filmvault/filmvault/internal/config"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	stderr = io.Discard
	t.Cleanup(func() { stderr = os.Stderr })

	var out bytes.Buffer
	cmd := newRootCmd("1.2.3", "abc123", "2026-01-01")
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info["version"] != "1.2.3" || info["commit"] != "abc123" {
		t.Errorf("info = %v", info)
	}
}

func TestVersionText(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "filmvault v1.2.3\n") {
		t.Errorf("output = %q", out)
	}
}

func TestOpenAPIToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.json")
	if _, err := run(t, "openapi", "-o", path, "--base-url", "http://films.local"); err != nil {
		t.Fatalf("openapi: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	paths, _ := doc["paths"].(map[string]interface{})
	if _, ok := paths["/api/v1/movies"]; !ok {
		t.Errorf("missing /api/v1/movies in %d paths", len(paths))
	}
	if !strings.Contains(string(data), "http://films.local") {
		t.Error("base url not advertised")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filmvault.yaml")
	if _, err := run(t, "config", "init", "--path", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := run(t, "config", "init", "--path", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := run(t, "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}

	out, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Config file: "+path) || !strings.Contains(out, "driver: sqlite") {
		t.Errorf("output = %q", out)
	}
}

func TestConfigShow_EnvOverride(t *testing.T) {
	t.Setenv("FILMVAULT_SERVER_PORT", "9999")
	t.Setenv("FILMVAULT_LOGGING_FORMAT", "json")

	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "port: 9999") || !strings.Contains(out, "format: json") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "(none found, using defaults)") {
		t.Errorf("expected defaults banner, got %q", out)
	}
}

func TestConfigShow_RedactsDSN(t *testing.T) {
	out, err := run(t, "--driver", "postgres", "--dsn", "postgres://app:hunter2@db:5432/imdb", "config", "show")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked: %q", out)
	}
}

func TestConfigShow_InvalidOverride(t *testing.T) {
	if _, err := run(t, "--driver", "oracle", "config", "show"); err == nil {
		t.Error("expected validation error for unknown driver")
	}
}

func TestMigrateAndSeed(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "catalog.db")

	out, err := run(t, "--driver", "sqlite", "--dsn", dsn, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "movie_facts") {
		t.Errorf("migrate output = %q", out)
	}

	fixture := filepath.Join("..", "..", "..", "internal", "seed", "testdata", "catalog.yaml")
	out, err = run(t, "--driver", "sqlite", "--dsn", dsn, "seed", fixture)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out, "KIND") || !strings.Contains(out, "movie fact") {
		t.Errorf("seed output = %q", out)
	}

	out, err = run(t, "--driver", "sqlite", "--dsn", dsn, "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "2 rows") {
		t.Errorf("expected seeded row counts, got %q", out)
	}
}

func TestMigrateDryRun(t *testing.T) {
	out, err := run(t, "--driver", "postgres", "--dsn", "postgres://localhost/imdb", "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("migrate --dry-run: %v", err)
	}
	if !strings.Contains(out, "CREATE TABLE") {
		t.Errorf("output = %q", out)
	}
}

func TestSeed_MissingFile(t *testing.T) {
	if _, err := run(t, "--dsn", filepath.Join(t.TempDir(), "x.db"), "seed", "does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing seed file")
	}
}

func TestProcMaths(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "catalog.db")

	if _, err := run(t, "--driver", "sqlite", "--dsn", dsn, "proc", "maths", "median"); err == nil || !strings.Contains(err.Error(), "median") {
		t.Errorf("expected invalid operator error, got %v", err)
	}
	// SQLite has no stored procedures.
	if _, err := run(t, "--driver", "sqlite", "--dsn", dsn, "proc", "maths", "avg"); err == nil {
		t.Error("expected procedure error on sqlite")
	}
}

func TestRedactDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://app:secret@db:5432/imdb", "postgres://app:xxxxx@db:5432/imdb"},
		{"app:secret@tcp(db:3306)/imdb", "app:xxxxx@tcp(db:3306)/imdb"},
		{"catalog.db", "catalog.db"},
		{":memory:", ":memory:"},
	}
	for _, tt := range tests {
		if got := redactDSN(tt.in); got != tt.want {
			t.Errorf("redactDSN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("log output = %q", out)
	}
}
