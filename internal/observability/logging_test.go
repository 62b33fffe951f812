package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edufiliova/navigator/internal/config"
	"github.com/edufiliova/navigator/model"
)

// newTestLogger creates a logger that writes JSON to a buffer for assertion.
func newTestLogger(buf *bytes.Buffer) *zap.Logger {
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "msg",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(buf), zapcore.DebugLevel)
	return zap.New(core)
}

func TestNewLogger_levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
		{"bogus", false, true, true},
		{"", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(config.ObservabilityConfig{LogLevel: tt.level})
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			defer func() { _ = logger.Sync() }()

			core := logger.Core()
			if got := core.Enabled(zapcore.DebugLevel); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := core.Enabled(zapcore.InfoLevel); got != tt.wantInfo {
				t.Errorf("info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := core.Enabled(zapcore.WarnLevel); got != tt.wantWarn {
				t.Errorf("warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestWithLogger_and_LoggerFrom(t *testing.T) {
	logger := zap.NewNop()
	ctx := WithLogger(context.Background(), logger)

	if got := LoggerFrom(ctx, nil); got != logger {
		t.Error("LoggerFrom should return the stored logger")
	}
	fallback := zap.NewNop()
	if got := LoggerFrom(context.Background(), fallback); got != fallback {
		t.Error("LoggerFrom should return fallback when no logger in context")
	}
}

func TestRequestLogger_enrichesWithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	rctx := &model.RequestContext{
		DeviceID:      "dev-1",
		SessionToken:  "super-secret",
		AppShell:      true,
		CorrelationID: "corr-abc",
		TraceID:       "trace-xyz",
	}
	ctx := model.WithRequestContext(context.Background(), rctx)
	ctx = WithLogger(ctx, logger)

	RequestLogger(ctx, logger).Info("navigation committed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}

	checks := map[string]any{
		"device_id":      "dev-1",
		"correlation_id": "corr-abc",
		"trace_id":       "trace-xyz",
		"app_shell":      true,
	}
	for field, want := range checks {
		if got := entry[field]; got != want {
			t.Errorf("entry[%q] = %v, want %v", field, got, want)
		}
	}
	if strings.Contains(buf.String(), "super-secret") {
		t.Error("session token leaked into the log entry")
	}
}

func TestRequestLogger_optionalFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := model.WithRequestContext(context.Background(), &model.RequestContext{DeviceID: "dev-2"})
	RequestLogger(ctx, logger).Info("no trace")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log entry: %v", err)
	}
	if _, ok := entry["trace_id"]; ok {
		t.Error("trace_id should be omitted when empty")
	}
	if _, ok := entry["app_shell"]; ok {
		t.Error("app_shell should be omitted for browser requests")
	}
}

func TestRequestLogger_noRequestContext(t *testing.T) {
	fallback := zap.NewNop()
	if got := RequestLogger(context.Background(), fallback); got != fallback {
		t.Error("RequestLogger should return the fallback without a RequestContext")
	}
}

func TestRedactBody(t *testing.T) {
	body := map[string]any{
		"url":           "/courses",
		"session_token": "abc",
		"env": map[string]any{
			"host":   "app.edufiliova.com",
			"cookie": "sid=1",
		},
		"pin": "1234",
	}

	got := RedactBody(body, []string{"pin"})

	if got["url"] != "/courses" {
		t.Errorf("url = %v, want /courses", got["url"])
	}
	if got["session_token"] != "[REDACTED]" {
		t.Errorf("session_token = %v, want [REDACTED]", got["session_token"])
	}
	if got["pin"] != "[REDACTED]" {
		t.Errorf("pin = %v, want [REDACTED]", got["pin"])
	}
	env := got["env"].(map[string]any)
	if env["cookie"] != "[REDACTED]" || env["host"] != "app.edufiliova.com" {
		t.Errorf("nested env = %v", env)
	}
	if body["session_token"] != "abc" {
		t.Error("RedactBody mutated its input")
	}
	if RedactBody(nil, nil) != nil {
		t.Error("RedactBody(nil) should be nil")
	}
}
