package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/nerrad567/vizgate/internal/infrastructure/config"
)

// capture returns a logger writing JSON into the returned buffer.
func capture(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithWriter(&buf, config.LoggingConfig{Level: level, Format: "json"}, "vizgate", "1.2.3"), &buf
}

// lines decodes each JSON log line in buf.
func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q is not JSON: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestNew(t *testing.T) {
	for _, cfg := range []config.LoggingConfig{
		{Level: "info", Format: "json", Output: "stdout"},
		{Level: "debug", Format: "text", Output: "stderr"},
		{},
	} {
		if New(cfg, "vizgate", "dev") == nil {
			t.Errorf("New(%+v) = nil", cfg)
		}
	}
	if Default() == nil {
		t.Error("Default() = nil")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestServiceAndVersionOnEveryEntry(t *testing.T) {
	logger, buf := capture("info")

	logger.Info("project created", "login", "alee")
	logger.With("component", "view").Warn("view purged", "view", "v1")

	entries := lines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	for _, e := range entries {
		if e["service"] != "vizgate" || e["version"] != "1.2.3" {
			t.Errorf("entry %v lacks service/version", e)
		}
	}
	if entries[1]["component"] != "view" {
		t.Errorf("With() attribute missing: %v", entries[1])
	}
	if entries[0]["login"] != "alee" {
		t.Errorf("login = %v", entries[0]["login"])
	}
}

func TestSecretsAreRedacted(t *testing.T) {
	logger, buf := capture("debug")

	logger.Info("oops",
		"password", "hunter2",
		"Token", "abcdef",
		"session", "alee123",
		"code", "conf",
		"login", "alee",
	)

	out := buf.String()
	for _, secret := range []string{"hunter2", "abcdef", "alee123", `"conf"`} {
		if strings.Contains(out, secret) {
			t.Errorf("output leaks %s: %s", secret, out)
		}
	}
	if !strings.Contains(out, redacted) || !strings.Contains(out, `"login":"alee"`) {
		t.Errorf("output = %s", out)
	}
}

func TestLevelFilter(t *testing.T) {
	logger, buf := capture("warn")

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")

	entries := lines(t, buf)
	if len(entries) != 1 || entries[0]["msg"] != "shown" {
		t.Errorf("entries = %v", entries)
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, config.LoggingConfig{Format: "text"}, "vizgate", "dev")

	logger.Info("started", "port", 8080)

	if out := buf.String(); !strings.Contains(out, "msg=started") || !strings.Contains(out, "port=8080") {
		t.Errorf("text output = %q", out)
	}
}
