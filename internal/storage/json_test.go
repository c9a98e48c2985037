package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warmtest/internal/domain"
)

func TestJSONStorage(t *testing.T) {
	s := NewJSONStorage(filepath.Join(t.TempDir(), "sockets", "test_server.json"))

	_, err := s.Load()
	require.ErrorIs(t, err, os.ErrNotExist)

	info := domain.DaemonInfo{
		PID:       os.Getpid(),
		Socket:    "/app/tmp/sockets/test_server.sock",
		Root:      "/app",
		StartedAt: time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC),
		Version:   "dev",
	}
	require.NoError(t, s.Save(info))

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, info, *loaded)

	require.NoError(t, s.Remove())
	require.NoError(t, s.Remove())
	require.NoFileExists(t, s.Path())
}

func TestIsProcessAlive(t *testing.T) {
	require.True(t, IsProcessAlive(os.Getpid()))
	require.False(t, IsProcessAlive(0))
	require.False(t, IsProcessAlive(-1))
}
