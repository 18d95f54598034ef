package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "Failed to parse JSON: %s", buf.String())
	return entry
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("erauchess-api", "1.0.0", "json", "info", &buf)

	logger.Info("test message", "component", "auth")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "erauchess-api", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "auth", entry["component"])
	assert.NotContains(t, entry, "request_id")
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("erauchess-api", "1.0.0", "text", "info", &buf)

	logger.Info("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "service=erauchess-api")
}

func TestSetup_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "v", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Equal(t, "kept", decodeLine(t, &buf)["msg"])
}

func TestHandler_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "v", "json", "info", &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	logger.InfoContext(ctx, "handled")

	assert.Equal(t, "req-1", decodeLine(t, &buf)["request_id"])
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Empty(t, RequestID(context.Background()))
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "v", "json", "info", &buf)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestHandler_WithAttrsKeepsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("svc", "v", "json", "info", &buf).With("component", "cache").WithGroup("g")

	logger.Info("grouped", "k", 1)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "cache", entry["component"])
	assert.Contains(t, entry, "g")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
