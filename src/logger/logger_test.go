package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{" warn ", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestNewWritesJSONAtLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(buf, "warn")

	log.Info("dropped")
	require.Zero(t, buf.Len())

	log.Warn("kept", "widgetID", "w-1")
	assert.Contains(t, buf.String(), `"msg":"kept"`)
	assert.Contains(t, buf.String(), `"widgetID":"w-1"`)
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctxLogger := New(buf, "debug")
	ctx := ToContext(context.Background(), ctxLogger)

	FromContext(ctx).Debug("from context")
	assert.Contains(t, buf.String(), "from context")

	assert.Same(t, L, FromContext(context.Background()))
}
