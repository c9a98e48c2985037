package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"warmtest/internal/cli"
	"warmtest/internal/cli/commands"
	"warmtest/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "warmtest [--serve | --local] [--view] FILE [ARGS...]",
		Short:         "Warm test execution daemon",
		Long:          `Keeps a booted test environment in memory and runs suite files against it on request. Without a running server, suites run in-process.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Load configuration from the nearest project root
	cfg, err := config.Discover(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, version)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, cli.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
