package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Worker restarted", "reason", "dead")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "Worker restarted")
	require.Contains(t, out, "reason=dead")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud")
	require.Error(t, err)
}

func TestDiscard(t *testing.T) {
	require.NotPanics(t, func() {
		Discard().Error("dropped")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"trace", "trace", log.LevelTrace},
		{"debug", "debug", slog.LevelDebug},
		{"info upper case", "INFO", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"crit", "crit", log.LevelCrit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.level)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNew_Trace(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "trace")
	require.NoError(t, err)

	logger.Trace("Cycle step", "step", "sweep")
	require.Contains(t, buf.String(), "Cycle step")
}
