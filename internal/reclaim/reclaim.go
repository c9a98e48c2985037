// Package reclaim resets the registration state a run leaves behind.
//
// A single worker goroutine unregisters the test suites defined during a run
// and sweeps them once they are unreachable. The run path and the worker hand
// an idle token back and forth: a run waits for the token before touching the
// environment and wakes the worker when its capture window is over, so a
// cycle never overlaps a run.
package reclaim

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"warmtest/internal/registry"
)

// TestSuffix marks the suites reclaimed after each run
const TestSuffix = "Test"

// State is the worker's phase
type State int32

const (
	Idle State = iota
	Working
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Working:
		return "working"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Framework is the environment the reclaimer resets
type Framework interface {
	Cleanup(ctx context.Context) error
	Reload(ctx context.Context) error
	Evict(match func(path string) bool) []string
	Require(ctx context.Context, path string) error
	Root() string
}

// Recorder observes reclamation; implemented by the metrics package
type Recorder interface {
	CycleFinished(d time.Duration, err error)
	WorkerRestarted()
	Unregistered(n int)
}

type noopRecorder struct{}

func (noopRecorder) CycleFinished(time.Duration, error) {}
func (noopRecorder) WorkerRestarted()                   {}
func (noopRecorder) Unregistered(int)                   {}

// Options configure a Reclaimer
type Options struct {
	// BaseCategories name the categories whose test suites are reclaimed
	BaseCategories []string
	// Reload matches project-relative paths re-required before every run
	Reload []*regexp.Regexp
	// Recorder receives cycle metrics; may be nil
	Recorder Recorder
}

// Reclaimer owns the background worker
type Reclaimer struct {
	fw       Framework
	reg      *registry.Registry
	bases    []string
	reload   []*regexp.Regexp
	recorder Recorder
	log      log.Logger

	state atomic.Int32
	idle  chan struct{}

	mu      sync.Mutex
	wake    chan struct{}
	done    chan struct{}
	stop    chan struct{}
	stopped bool
}

// New creates an idle Reclaimer; Start launches its worker
func New(fw Framework, reg *registry.Registry, opts Options, logger log.Logger) *Reclaimer {
	r := &Reclaimer{
		fw:       fw,
		reg:      reg,
		bases:    opts.BaseCategories,
		reload:   opts.Reload,
		recorder: opts.Recorder,
		log:      logger,
		idle:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	if r.recorder == nil {
		r.recorder = noopRecorder{}
	}
	r.idle <- struct{}{}
	return r
}

// Start launches the worker
func (r *Reclaimer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.aliveLocked() {
		return
	}
	r.startLocked()
}

// State returns the worker's phase
func (r *Reclaimer) State() State {
	return State(r.state.Load())
}

// Alive reports whether the worker goroutine is running
func (r *Reclaimer) Alive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.aliveLocked()
}

func (r *Reclaimer) aliveLocked() bool {
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *Reclaimer) startLocked() {
	wake := make(chan struct{}, 1)
	done := make(chan struct{})
	r.wake, r.done = wake, done
	go r.work(wake, done)
}

// ensureWorker restarts a dead worker
func (r *Reclaimer) ensureWorker() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.aliveLocked() {
		return
	}
	if r.done != nil {
		r.log.Warn("Reclaimer worker died, restarting")
		r.recorder.WorkerRestarted()
	}
	r.startLocked()
}

// RunAround runs body once the worker is idle, after re-requiring the watched
// files. Afterwards the worker is woken to reclaim what body registered; this
// happens on every path, panics included.
func (r *Reclaimer) RunAround(ctx context.Context, body func(ctx context.Context) error) error {
	r.ensureWorker()

	select {
	case <-r.idle:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer r.handoff()

	if err := r.ReloadWatched(ctx); err != nil {
		return err
	}
	if err := r.fw.Reload(ctx); err != nil {
		return fmt.Errorf("error reloading environment: %w", err)
	}
	return body(ctx)
}

// handoff passes the idle token to the worker together with a wake-up
func (r *Reclaimer) handoff() {
	r.state.Store(int32(Working))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		r.release()
		return
	}
	if !r.aliveLocked() {
		r.log.Warn("Reclaimer worker died, restarting")
		r.recorder.WorkerRestarted()
		r.startLocked()
	}
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Reclaimer) release() {
	r.state.Store(int32(Idle))
	select {
	case r.idle <- struct{}{}:
	default:
	}
}

// ReloadWatched evicts the loaded files matching the reload set and requires
// each of them again
func (r *Reclaimer) ReloadWatched(ctx context.Context) error {
	if len(r.reload) == 0 {
		return nil
	}

	root := r.fw.Root()
	evicted := r.fw.Evict(func(path string) bool {
		rel := relativePath(root, path)
		for _, re := range r.reload {
			if re.MatchString(rel) {
				return true
			}
		}
		return false
	})

	for _, path := range evicted {
		if err := r.fw.Require(ctx, path); err != nil {
			return fmt.Errorf("error reloading %s: %w", path, err)
		}
	}
	if len(evicted) > 0 {
		r.log.Debug("Reloaded watched files", "files", len(evicted))
	}
	return nil
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Stop ends the worker after its current cycle
func (r *Reclaimer) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.stop)
	done := r.done
	r.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reclaimer) work(wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-r.stop:
			// a run handed off before stop still holds the idle token
			select {
			case <-wake:
				if err := r.cycle(); err != nil {
					r.log.Error("Reclamation cycle failed", "err", err)
				}
			default:
			}
			return
		case <-wake:
		}

		if err := r.cycle(); err != nil {
			r.log.Error("Reclamation cycle failed, stopping worker", "err", err)
			return
		}
	}
}

// cycle resets the framework and reclaims the run's suites. It always hands
// the idle token back.
func (r *Reclaimer) cycle() (err error) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		r.recorder.CycleFinished(time.Since(start), err)
		r.release()
	}()

	if err := r.fw.Cleanup(context.Background()); err != nil {
		return fmt.Errorf("error cleaning up environment: %w", err)
	}

	removed, err := r.removeTests()
	r.recorder.Unregistered(removed)
	if err != nil {
		return err
	}

	swept := r.reg.Sweep()
	r.log.Debug("Reclamation cycle finished", "unregistered", removed, "swept", swept, "elapsed", time.Since(start))
	return nil
}

// removeTests unregisters every subtype of the base categories whose name
// ends in TestSuffix. The base categories themselves are kept. Nested names
// go first so that their namespaces are still bound when they are removed.
func (r *Reclaimer) removeTests() (int, error) {
	protected := make(map[string]bool, len(r.bases))
	for _, name := range r.bases {
		protected[name] = true
	}

	seen := make(map[string]bool)
	var names []string
	for _, name := range r.bases {
		base, ok := r.reg.Resolve(name)
		if !ok {
			continue
		}
		for _, e := range r.reg.FindSubtypes(base, false) {
			if protected[e.Name] || seen[e.Name] || !strings.HasSuffix(e.Name, TestSuffix) {
				continue
			}
			seen[e.Name] = true
			names = append(names, e.Name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		di, dj := strings.Count(names[i], registry.Separator), strings.Count(names[j], registry.Separator)
		if di != dj {
			return di > dj
		}
		return names[i] < names[j]
	})

	removed, err := r.reg.Unregister(names...)
	total := 0
	for _, e := range removed {
		if e != nil {
			total++
		}
	}
	if err != nil {
		return total, fmt.Errorf("error unregistering suites: %w", err)
	}
	return total, nil
}
