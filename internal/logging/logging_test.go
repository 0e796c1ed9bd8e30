package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 8, 29, 14, 5, 6, 0, time.UTC)
	got := LogFilePath("logs", "rclog", sessionStart)
	assert.Equal(t, filepath.Join("logs", "rclog.20260829_140506.log"), got)
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		nil, // dropped
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	logger := slog.New(h)

	logger.Info("hello", "k", "v")
	logger.Warn("danger")

	assert.Contains(t, a.String(), "hello")
	assert.Contains(t, a.String(), "k=v")
	assert.Contains(t, a.String(), "danger")
	assert.NotContains(t, b.String(), "hello", "below the second handler's level")
	assert.Contains(t, b.String(), "danger")
}

func TestMultiHandlerEnabled(t *testing.T) {
	h := NewMultiHandler(
		slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelError))
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(slog.NewTextHandler(&buf, nil)).
		WithAttrs([]slog.Attr{slog.String("resource", "match.rcg")})
	slog.New(h).Info("decoding")
	assert.Contains(t, buf.String(), "resource=match.rcg")
}

func TestSlogManagerSetup(t *testing.T) {
	var file bytes.Buffer
	m := NewSlogManager()
	m.Setup(Options{File: &file, Level: "debug"})

	m.Logger().Debug("visible at debug")
	require.Contains(t, file.String(), "visible at debug")
	assert.Contains(t, file.String(), "logging initialized")
}

func TestSlogManagerDefaultsBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.NotNil(t, m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, parseLevel(tc.in), tc.in)
	}
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	adapter := NewZerologAdapter(zl)

	adapter.Info("writing session", "snapshots", 120)
	adapter.Error("influx unreachable", "host", "localhost")

	out := buf.String()
	assert.Contains(t, out, "writing session")
	assert.Contains(t, out, `"snapshots":120`)
	assert.Contains(t, out, "influx unreachable")
	assert.True(t, strings.Contains(out, `"level":"error"`))
}

func TestGelfLevelMapping(t *testing.T) {
	assert.Equal(t, int32(gelfLevelError), gelfLevel(slog.LevelError))
	assert.Equal(t, int32(gelfLevelWarning), gelfLevel(slog.LevelWarn))
	assert.Equal(t, int32(gelfLevelInfo), gelfLevel(slog.LevelInfo))
	assert.Equal(t, int32(gelfLevelDebug), gelfLevel(slog.LevelDebug))
}
