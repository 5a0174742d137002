// File: logger_test.go
// Title: Logger Tests
// Description: Tests for configuration, fields, formatters, error logging and timers.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-09-15

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	pverror "github.com/msto63/paramval/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func TestNew(t *testing.T) {
	logger := New()
	if logger.GetLevel() != DefaultLevel() {
		t.Errorf("New() level = %v, want %v", logger.GetLevel(), DefaultLevel())
	}
	if logger.contextFields == nil {
		t.Error("New() should initialize context fields")
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown too")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered entries: %q", out)
	}
	if strings.Count(out, "\n") != 2 {
		t.Errorf("got %d lines, want 2: %q", strings.Count(out, "\n"), out)
	}
}

func TestWithFieldIsImmutable(t *testing.T) {
	base, buf := newBufferLogger(LevelInfo, FormatJSON)
	child := base.WithField("run_id", "r1")

	base.Info("from base")
	child.Info("from child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var first, second map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := first["run_id"]; ok {
		t.Error("WithField() modified the parent logger")
	}
	if second["run_id"] != "r1" {
		t.Errorf("run_id = %v, want r1", second["run_id"])
	}
	if second["logger"] != "test" {
		t.Errorf("logger = %v, want test", second["logger"])
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatText)
	logger.Info("stats", Fields{"nodes": 3, "edges": 2})

	if !strings.Contains(buf.String(), "[edges=2 nodes=3]") {
		t.Errorf("output = %q, want sorted fields", buf.String())
	}
	if !strings.Contains(buf.String(), "[INF] {test} stats") {
		t.Errorf("output = %q, want level and name", buf.String())
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{"low severity", pverror.New("bad literal").WithCode(pverror.CodeInvalidLiteral), "info"},
		{"medium severity", pverror.New("odd").WithCode(pverror.CodeConfigError), "warn"},
		{"high severity", pverror.New("gcd").WithCode(pverror.CodeCancellationFailed), "error"},
		{"plain error", errors.New("plain"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			var data map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if data["level"] != tt.level {
				t.Errorf("level = %v, want %v", data["level"], tt.level)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)

	timer := logger.StartTimer("cancel").WithField("terms", 12)
	if d := timer.Stop(); d < 0 {
		t.Errorf("Stop() = %v, want non-negative", d)
	}
	if d := timer.Stop(); d != 0 {
		t.Errorf("second Stop() = %v, want 0", d)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if data["message"] != "cancel completed" {
		t.Errorf("message = %v, want 'cancel completed'", data["message"])
	}
	if data["terms"] != float64(12) {
		t.Errorf("terms = %v, want 12", data["terms"])
	}
}

func TestTimerStopWithError(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)
	logger.StartTimer("save").StopWithError(errors.New("locked"))

	if !strings.Contains(buf.String(), "save failed") || !strings.Contains(buf.String(), `error="locked"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"trace": LevelTrace, "DEBUG": LevelDebug, "warning": LevelWarn, " error ": LevelError}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}

	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing")
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("Discard() logger should not enable any level")
	}
}
