package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestSlogLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("Job submitted", "job_id", "abc", "batches", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "Job submitted", entry["msg"])
	require.Equal(t, "abc", entry["job_id"])
	require.Equal(t, float64(4), entry["batches"])
}

func TestSlogLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newSlogLogger(&buf, slog.LevelDebug, "text")

	logger.Debug("Probe", "handle", "42")

	require.Contains(t, buf.String(), "msg=Probe")
	require.Contains(t, buf.String(), "handle=42")
}

func TestNew(t *testing.T) {
	logger, ok := New("debug", "text").(*SlogLogger)
	require.True(t, ok)
	require.True(t, logger.log.Enabled(context.Background(), slog.LevelDebug))

	logger, ok = New("bogus", "").(*SlogLogger)
	require.True(t, ok)
	require.False(t, logger.log.Enabled(context.Background(), slog.LevelDebug))
	require.True(t, logger.log.Enabled(context.Background(), slog.LevelInfo))
}
