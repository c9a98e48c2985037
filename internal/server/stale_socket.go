package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// ErrAlreadyRunning is returned when another daemon answers on the socket
var ErrAlreadyRunning = errors.New("test server already running")

// cleanStaleSocket removes a socket file left behind by a crashed daemon. A
// socket that accepts connections belongs to a live daemon and is kept.
func cleanStaleSocket(socketPath string) error {
	_, err := os.Stat(socketPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat socket %s: %w", socketPath, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var dialer net.Dialer
	conn, dialErr := dialer.DialContext(ctx, "unix", socketPath)
	if dialErr == nil {
		_ = conn.Close()
		return fmt.Errorf("%w on %s", ErrAlreadyRunning, socketPath)
	}

	if err := os.Remove(socketPath); err != nil {
		return fmt.Errorf("remove stale socket %s: %w", socketPath, err)
	}
	return nil
}
