package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewWritesJSONToStderrAndFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "app.log")

	logger, cleanup, err := New(Options{Level: "warn", File: path, Stderr: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "collection", "dropoffs")
	cleanup()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "dropoffs", rec["collection"])
	assert.Equal(t, "konsinyasi", rec["app"])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestNewTextFormat(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	_, cleanup, err := New(Options{Format: "text", Stderr: &buf})
	require.NoError(t, err)
	defer cleanup()

	slog.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewBadLogFile(t *testing.T) {
	_, _, err := New(Options{File: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}
