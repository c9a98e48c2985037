package execution

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"warmtest/internal/capture"
	"warmtest/internal/discovery"
	"warmtest/internal/domain"
)

// Environment is what a running case sees of the warm environment
type Environment interface {
	Env() []string
	Root() string
}

// Runner executes the suites registered under the base categories
type Runner struct {
	collector *discovery.Collector
	bases     []string
	streams   *capture.Streams
	env       Environment
	log       log.Logger
}

// NewRunner creates a new Runner
func NewRunner(collector *discovery.Collector, bases []string, streams *capture.Streams, env Environment, logger log.Logger) *Runner {
	return &Runner{
		collector: collector,
		bases:     bases,
		streams:   streams,
		env:       env,
		log:       logger,
	}
}

// Run parses args, collects the plan and executes it, writing the report to
// sink. Case output goes to the current stream bindings.
func (r *Runner) Run(ctx context.Context, label string, args []string, sink io.Writer) (domain.Summary, error) {
	var summary domain.Summary

	opts, err := ParseOptions(args)
	if err != nil {
		return summary, err
	}

	plan := r.collector.Collect(r.bases, opts.TestCases, opts.Names)
	r.log.Debug("Collected test plan", "suites", len(plan.Suites), "tests", plan.Size())

	rep := newReporter(sink, opts.Verbose)
	rep.started(label)

	env := r.env.Env()
	dir := r.env.Root()
	start := time.Now()

	var runErr error
loop:
	for _, ps := range plan.Suites {
		for _, tc := range ps.Cases {
			if err := ctx.Err(); err != nil {
				runErr = err
				break loop
			}

			assertions, err := r.runCase(ctx, tc, env, dir)
			summary.Tests++
			summary.Assertions += assertions
			switch {
			case err == nil:
			case isAssertion(err):
				summary.Failures++
			default:
				summary.Errors++
			}
			rep.record(ps.Suite.Name, tc.Name, err)

			if err != nil {
				r.log.Debug("Test did not pass", "suite", ps.Suite.Name, "test", tc.Name, "err", err)
				if opts.FailFast {
					break loop
				}
			}
		}
	}

	summary.Duration = time.Since(start)
	rep.finished(summary)
	return summary, runErr
}

func (r *Runner) runCase(ctx context.Context, tc domain.TestCase, env []string, dir string) (assertions int, err error) {
	t := &domain.T{
		Stdout: r.streams.Stdout(),
		Stderr: r.streams.Stderr(),
		Env:    env,
		Dir:    dir,
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		assertions = t.Assertions()
	}()

	if tc.Func == nil {
		return 0, errors.New("test case has no body")
	}
	return 0, tc.Func(ctx, t)
}

func isAssertion(err error) bool {
	var ae *domain.AssertionError
	return errors.As(err, &ae)
}
