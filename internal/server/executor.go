// Package server serves test runs from the warm environment.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"warmtest/internal/capture"
	"warmtest/internal/domain"
)

// ErrInvalidArgument is returned when the file argument looks like an option
var ErrInvalidArgument = errors.New("invalid argument pattern: expected a file to run")

// Loader executes a suite file into the warm environment
type Loader interface {
	Load(ctx context.Context, path string) error
}

// TestRunner runs the loaded suites, writing its report to sink
type TestRunner interface {
	Run(ctx context.Context, label string, args []string, sink io.Writer) (domain.Summary, error)
}

// Wrapper brackets a run with environment reset, see reclaim.Reclaimer
type Wrapper interface {
	RunAround(ctx context.Context, body func(ctx context.Context) error) error
}

// Recorder observes served runs
type Recorder interface {
	RunFinished(d time.Duration, s domain.Summary, err error)
}

// Executor serializes runs against the shared environment and captures their output
type Executor struct {
	loader   Loader
	runner   TestRunner
	wrapper  Wrapper
	streams  *capture.Streams
	recorder Recorder
	log      log.Logger
	wd       string

	mu sync.Mutex
}

// ExecutorOption customizes an Executor
type ExecutorOption func(*Executor)

// WithRecorder reports finished runs to rec
func WithRecorder(rec Recorder) ExecutorOption {
	return func(e *Executor) { e.recorder = rec }
}

// WithWorkingDir shortens logged paths relative to dir
func WithWorkingDir(dir string) ExecutorOption {
	return func(e *Executor) { e.wd = dir }
}

// NewExecutor creates an Executor
func NewExecutor(loader Loader, runner TestRunner, wrapper Wrapper, streams *capture.Streams, logger log.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		loader:  loader,
		runner:  runner,
		wrapper: wrapper,
		streams: streams,
		log:     logger,
	}
	if wd, err := os.Getwd(); err == nil {
		e.wd = wd
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run loads file and runs its suites with args. The result is everything
// written to stderr, then stdout, then the runner's report.
func (e *Executor) Run(ctx context.Context, file string, args []string) (string, error) {
	if strings.HasPrefix(file, "-") {
		return "", ErrInvalidArgument
	}
	args = SanitizeArguments(args)

	e.mu.Lock()
	defer e.mu.Unlock()

	id := uuid.NewString()
	e.log.Info(">> "+strings.Join(append([]string{ShortenPath(file, e.wd)}, args...), " "), "run", id)

	start := time.Now()
	output, summary, err := e.capture(ctx, file, args)
	elapsed := time.Since(start)

	if e.recorder != nil {
		e.recorder.RunFinished(elapsed, summary, err)
	}
	if err != nil {
		e.log.Error("Run failed", "run", id, "elapsed", elapsed.Milliseconds(), "err", err)
		return "", err
	}
	e.log.Info(fmt.Sprintf("(%d ms)", elapsed.Milliseconds()), "run", id,
		"tests", summary.Tests, "failures", summary.Failures, "errors", summary.Errors)
	return output, nil
}

func (e *Executor) capture(ctx context.Context, file string, args []string) (string, domain.Summary, error) {
	var (
		stderr, stdout, result string
		summary                domain.Summary
	)

	err := e.wrapper.RunAround(ctx, func(ctx context.Context) error {
		var err error
		stderr, err = e.streams.Capture(capture.Stderr, func() error {
			var err error
			stdout, err = e.streams.Capture(capture.Stdout, func() error {
				var err error
				result, summary, err = e.captureRunnerResult(ctx, file, args)
				return err
			})
			return err
		})
		return err
	})
	return stderr + stdout + result, summary, err
}

func (e *Executor) captureRunnerResult(ctx context.Context, file string, args []string) (string, domain.Summary, error) {
	var sink capture.Buffer
	if err := e.loader.Load(ctx, file); err != nil {
		return "", domain.Summary{}, fmt.Errorf("error loading %s: %w", file, err)
	}
	summary, err := e.runner.Run(ctx, suiteLabel(file), args, &sink)
	return sink.String(), summary, err
}

func suiteLabel(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}
