package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/memquery/internal/config"
)

func TestSetupTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := Setup(config.ObservabilityConfig{LogLevel: slog.LevelInfo}, &buf)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("table loaded", slog.Int("rows", 3))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "table loaded")
	assert.Contains(t, out, "rows=3")
}

func TestSetupJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn := Setup(config.ObservabilityConfig{LogLevel: slog.LevelDebug, LogJSON: true}, &buf)
	defer closeFn()

	logger.Debug("index built", slog.String("column", "Age"))

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record))
	assert.Equal(t, "index built", record["msg"])
	assert.Equal(t, "Age", record["column"])
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	multi := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	}}

	assert.True(t, multi.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, multi.Enabled(context.Background(), slog.LevelDebug))

	logger := slog.New(multi).With(slog.String("component", "repl")).WithGroup("q")
	logger.Info("query", slog.String("text", "PROJECT a"))

	assert.Contains(t, a.String(), "component=repl")
	assert.Contains(t, a.String(), "q.text=")
	assert.Empty(t, b.String())
}
