package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func initBuffer(t *testing.T, detailed bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	err := InitWithConfig(LogConfig{
		Level:           "DEBUG",
		Format:          "json",
		DetailedLogging: detailed,
		TracingEnabled:  false,
		Output:          &buf,
	})
	if err != nil {
		t.Fatalf("InitWithConfig: %v", err)
	}
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	buf := initBuffer(t, false)
	Debug(context.Background(), "hidden")
	Info(context.Background(), "shown", "rows", 3)

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %s", len(got), buf.String())
	}
	if got[0]["msg"] != "shown" {
		t.Errorf("Expected msg shown, got %v", got[0]["msg"])
	}
	if got[0]["rows"] != float64(3) {
		t.Errorf("Expected rows 3, got %v", got[0]["rows"])
	}
}

func TestDetailedLoggingAddsSource(t *testing.T) {
	buf := initBuffer(t, true)
	Debug(context.Background(), "visible")

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(got))
	}
	src, ok := got[0]["source"].(map[string]any)
	if !ok {
		t.Fatalf("Expected source group, got %v", got[0]["source"])
	}
	if !strings.HasSuffix(src["file"].(string), "logger_test.go") {
		t.Errorf("Expected caller file logger_test.go, got %v", src["file"])
	}
}

func TestErrorWithErr(t *testing.T) {
	buf := initBuffer(t, false)
	ErrorWithErr(context.Background(), "save failed", errors.New("disk full"), "filename", "a.csv")

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(got))
	}
	if got[0]["level"] != "ERROR" {
		t.Errorf("Expected level ERROR, got %v", got[0]["level"])
	}
	if got[0]["error"] != "disk full" {
		t.Errorf("Expected error disk full, got %v", got[0]["error"])
	}
	if got[0]["filename"] != "a.csv" {
		t.Errorf("Expected filename a.csv, got %v", got[0]["filename"])
	}
}

func TestExport(t *testing.T) {
	buf := initBuffer(t, false)
	Export(context.Background(), "portfolio", "csv", "out.csv", 12)

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(got))
	}
	entry := got[0]
	if entry["type"] != "EXPORT" {
		t.Errorf("Expected type EXPORT, got %v", entry["type"])
	}
	if entry["page_type"] != "portfolio" || entry["format"] != "csv" {
		t.Errorf("Unexpected export fields: %v", entry)
	}
	if entry["rows"] != float64(12) {
		t.Errorf("Expected rows 12, got %v", entry["rows"])
	}
}

func TestOperationTimerEndWithError(t *testing.T) {
	buf := initBuffer(t, false)
	op := StartOperation(context.Background(), "export", "page_type", "portfolio")
	op.EndWithError(errors.New("boom"))

	got := lines(t, buf)
	if len(got) != 1 {
		t.Fatalf("Expected 1 log line, got %d", len(got))
	}
	if got[0]["msg"] != "Operation failed" {
		t.Errorf("Expected Operation failed, got %v", got[0]["msg"])
	}
	if got[0]["page_type"] != "portfolio" {
		t.Errorf("Expected page_type portfolio, got %v", got[0]["page_type"])
	}
	if _, ok := got[0]["duration_ms"]; !ok {
		t.Error("Expected duration_ms field")
	}
}

func TestToAttributes(t *testing.T) {
	attrs := toAttributes([]any{"a", "x", "b", 2, 3, "skipped", "c", true, "d", []int{1}})
	if len(attrs) != 3 {
		t.Fatalf("Expected 3 attributes, got %d", len(attrs))
	}
	if string(attrs[0].Key) != "a" || attrs[0].Value.AsString() != "x" {
		t.Errorf("Unexpected first attribute: %v", attrs[0])
	}
	if attrs[1].Value.AsInt64() != 2 {
		t.Errorf("Expected b=2, got %v", attrs[1].Value.AsInt64())
	}
	if !attrs[2].Value.AsBool() {
		t.Error("Expected c=true")
	}
}
