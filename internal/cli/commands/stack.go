package commands

import (
	"context"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"warmtest/internal/capture"
	"warmtest/internal/config"
	"warmtest/internal/discovery"
	"warmtest/internal/environment"
	"warmtest/internal/execution"
	"warmtest/internal/metrics"
	"warmtest/internal/reclaim"
	"warmtest/internal/registry"
	"warmtest/internal/server"
)

// stack is a booted warm environment with an executor serving it
type stack struct {
	env       *environment.Environment
	reclaimer *reclaim.Reclaimer
	executor  *server.Executor
	log       log.Logger
}

// direct runs the body without any reset between runs, for one-shot local runs
type direct struct{}

func (direct) RunAround(ctx context.Context, body func(ctx context.Context) error) error {
	return body(ctx)
}

// buildStack boots the environment. With reclaiming set, a reclaimer resets
// it between runs and reports to m (which may be nil).
func buildStack(ctx context.Context, cfg *config.Config, logger log.Logger, m *metrics.Metrics, reclaiming bool) (*stack, error) {
	reg := registry.New()
	env := environment.New(cfg, reg, logger)
	if err := env.Boot(ctx); err != nil {
		_ = env.Close()
		return nil, err
	}

	streams := capture.NewStreams(os.Stdout, os.Stderr)
	collector := discovery.NewCollector(reg, reg.IsLegitimate)
	runner := execution.NewRunner(collector, cfg.BaseCategories, streams, env, logger)

	s := &stack{env: env, log: logger}

	var wrapper server.Wrapper = direct{}
	if reclaiming {
		patterns, err := cfg.ReloadPatterns()
		if err != nil {
			_ = env.Close()
			return nil, err
		}
		s.reclaimer = reclaim.New(env, reg, reclaim.Options{
			BaseCategories: cfg.BaseCategories,
			Reload:         patterns,
			Recorder:       m,
		}, logger)
		s.reclaimer.Start()
		wrapper = s.reclaimer
	}

	s.executor = server.NewExecutor(env, runner, wrapper, streams, logger, server.WithRecorder(m))
	return s, nil
}

// close stops the reclaimer and the file watcher
func (s *stack) close(ctx context.Context) {
	if s.reclaimer != nil {
		if err := s.reclaimer.Stop(ctx); err != nil {
			s.log.Warn("Reclaimer did not stop cleanly", "err", err)
		}
	}
	if err := s.env.Close(); err != nil {
		s.log.Warn("Cannot close environment", "err", err)
	}
}
