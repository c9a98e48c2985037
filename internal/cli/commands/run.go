package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"warmtest/internal/cli"
	"warmtest/internal/client"
	"warmtest/internal/config"
	"warmtest/internal/domain"
	"warmtest/internal/logging"
	"warmtest/internal/metrics"
	"warmtest/internal/parser"
	"warmtest/internal/server"
	"warmtest/internal/storage"
	"warmtest/internal/ui"
)

// RunCommand runs a suite file on the daemon, serves as the daemon, or runs locally
type RunCommand struct {
	config    *config.Config
	parser    parser.Parser
	formatter *ui.Formatter
	version   string
	out       io.Writer
	spinner   bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, p parser.Parser, formatter *ui.Formatter, version string) *RunCommand {
	return &RunCommand{
		config:    cfg,
		parser:    p,
		formatter: formatter,
		version:   version,
		out:       os.Stdout,
		spinner:   true,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if rc.config.Flags.Serve {
		return rc.serve(ctx)
	}
	if len(args) == 0 {
		return cmd.Help()
	}

	file, rest := args[0], args[1:]

	var (
		output string
		err    error
	)
	if rc.config.Flags.Local {
		output, err = rc.runLocal(ctx, file, rest)
	} else {
		output, err = rc.dispatch(ctx, file, rest)
		if errors.Is(err, client.ErrServerUnavailable) || errors.Is(err, client.ErrInvalidArgument) {
			rc.formatter.Fallback(err)
			output, err = rc.runLocal(ctx, file, rest)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprint(rc.out, output)
	return rc.report(output)
}

// dispatch forwards the run to the daemon. The file is sent as an absolute
// path since the daemon resolves paths against its own directory.
func (rc *RunCommand) dispatch(ctx context.Context, file string, args []string) (string, error) {
	socket, err := rc.config.SocketPath()
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(file, "-") {
		if abs, err := filepath.Abs(file); err == nil {
			file = abs
		}
	}

	if rc.spinner {
		s := ui.StartSpinner(os.Stderr, "Running on test server")
		defer s.Stop()
	}
	return client.New(socket).Dispatch(ctx, domain.RunRequest{File: file, Args: args})
}

// runLocal boots a one-shot environment and runs the file in-process
func (rc *RunCommand) runLocal(ctx context.Context, file string, args []string) (string, error) {
	level := rc.config.Flags.LogLevel
	if level == "" {
		level = "warn"
	}
	logger, err := logging.New(os.Stderr, level)
	if err != nil {
		return "", err
	}

	st, err := buildStack(ctx, rc.config, logger, nil, false)
	if err != nil {
		return "", err
	}
	defer st.close(ctx)

	return st.executor.Run(ctx, file, args)
}

// report parses the run output and opens the failure viewer when asked
func (rc *RunCommand) report(output string) error {
	summary, ok := rc.parser.ParseSummary(output)
	if !ok {
		return nil
	}
	rc.formatter.PrintOutcome(summary)
	if summary.Passed() {
		return nil
	}

	if rc.config.Flags.View {
		label := "warmtest"
		for _, line := range strings.Split(output, "\n") {
			if suite, found := strings.CutPrefix(line, "Loaded suite "); found {
				label = suite
				break
			}
		}
		if err := ui.NewErrorViewer(label).View(rc.parser.ParseFailures(output)); err != nil {
			return err
		}
	}
	return cli.ErrTestsFailed
}

// serve runs the daemon until ctx is cancelled
func (rc *RunCommand) serve(ctx context.Context) error {
	logger, err := logging.New(os.Stderr, rc.config.GetLogLevel())
	if err != nil {
		return err
	}

	socket, err := rc.config.SocketPath()
	if err != nil {
		return err
	}
	statePath, err := rc.config.StatePath()
	if err != nil {
		return err
	}

	m := metrics.New()
	st, err := buildStack(ctx, rc.config, logger, m, true)
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		st.close(stopCtx)
	}()

	info := domain.DaemonInfo{
		PID:       os.Getpid(),
		Socket:    socket,
		Root:      rc.config.ProjectPath,
		StartedAt: time.Now(),
		Version:   rc.version,
	}
	opts := []server.GatewayOption{server.WithState(storage.NewJSONStorage(statePath), info)}
	if rc.config.MetricsAddr != "" {
		opts = append(opts, server.WithMetrics(rc.config.MetricsAddr, m.Handler()))
	}

	gw := server.NewGateway(socket, st.executor, logger, opts...)
	if err := gw.Serve(ctx); err != nil {
		return err
	}
	color.Green("Test server stopped")
	return nil
}
