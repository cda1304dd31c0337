package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel(" warn "))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewToTagsService(t *testing.T) {
	var buf bytes.Buffer
	log := NewTo(&buf, "taskctl", "warn")
	log.Info("dropped")
	log.Warn("kept", "key", "value")

	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), `"service":"taskctl"`)
	require.Contains(t, buf.String(), `"key":"value"`)
}
