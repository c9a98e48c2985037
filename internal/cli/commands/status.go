package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"warmtest/internal/client"
	"warmtest/internal/config"
	"warmtest/internal/domain"
	"warmtest/internal/storage"
	"warmtest/internal/ui"
)

const (
	statusTimeout = 2 * time.Second
	stopTimeout   = 10 * time.Second
	stopPoll      = 100 * time.Millisecond
)

// StatusCommand reports whether a daemon serves this project
type StatusCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewStatusCommand creates a new StatusCommand
func NewStatusCommand(cfg *config.Config, formatter *ui.Formatter) *StatusCommand {
	return &StatusCommand{config: cfg, formatter: formatter}
}

// Execute runs the command
func (sc *StatusCommand) Execute(cmd *cobra.Command, args []string) error {
	info, err := loadState(sc.config)
	if err != nil {
		return err
	}
	if info == nil {
		sc.formatter.PrintStatus(nil, false, false)
		return nil
	}

	alive := storage.IsProcessAlive(info.PID)
	reachable := false
	if alive {
		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()
		if remote, err := client.New(info.Socket).Status(ctx); err == nil {
			info = remote
			reachable = true
		}
	}

	sc.formatter.PrintStatus(info, alive, reachable)
	return nil
}

// StopCommand terminates the daemon recorded in the state file
type StopCommand struct {
	config *config.Config
}

// NewStopCommand creates a new StopCommand
func NewStopCommand(cfg *config.Config) *StopCommand {
	return &StopCommand{config: cfg}
}

// Execute runs the command
func (sc *StopCommand) Execute(cmd *cobra.Command, args []string) error {
	info, err := loadState(sc.config)
	if err != nil {
		return err
	}
	if info == nil || !storage.IsProcessAlive(info.PID) {
		color.Yellow("Test server is not running")
		return nil
	}

	if err := syscall.Kill(info.PID, syscall.SIGTERM); err != nil {
		return fmt.Errorf("error stopping test server (pid %d): %w", info.PID, err)
	}

	deadline := time.Now().Add(stopTimeout)
	for storage.IsProcessAlive(info.PID) {
		if time.Now().After(deadline) {
			return fmt.Errorf("test server (pid %d) did not stop within %s", info.PID, stopTimeout)
		}
		time.Sleep(stopPoll)
	}

	color.Green("Test server stopped (pid %d)", info.PID)
	return nil
}

// loadState reads the daemon state file; a missing file yields nil
func loadState(cfg *config.Config) (*domain.DaemonInfo, error) {
	path, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	info, err := storage.NewJSONStorage(path).Load()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return info, err
}
