package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"

	"warmtest/internal/capture"
	"warmtest/internal/domain"
	"warmtest/internal/logging"
)

type fakeLoader struct {
	streams *capture.Streams
	loaded  []string
	err     error
}

func (l *fakeLoader) Load(ctx context.Context, path string) error {
	l.loaded = append(l.loaded, path)
	fmt.Fprint(l.streams.Stderr(), "loading "+path+"\n")
	return l.err
}

type fakeRunner struct {
	streams *capture.Streams
	active  atomic.Int32
	overlap atomic.Bool
	delay   time.Duration
	args    [][]string
	mu      sync.Mutex
}

func (r *fakeRunner) Run(ctx context.Context, label string, args []string, sink io.Writer) (domain.Summary, error) {
	if r.active.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.active.Add(-1)

	r.mu.Lock()
	r.args = append(r.args, args)
	r.mu.Unlock()

	fmt.Fprint(r.streams.Stdout(), "case output\n")
	time.Sleep(r.delay)
	fmt.Fprintf(sink, "Loaded suite %s\n1 tests, 1 assertions, 0 failures, 0 errors\n", label)
	return domain.Summary{Tests: 1, Assertions: 1}, nil
}

type fakeWrapper struct {
	calls   atomic.Int32
	handoff atomic.Int32
}

func (w *fakeWrapper) RunAround(ctx context.Context, body func(context.Context) error) error {
	w.calls.Add(1)
	defer w.handoff.Add(1)
	return body(ctx)
}

type fakeRecorder struct {
	mu   sync.Mutex
	runs []error
}

func (r *fakeRecorder) RunFinished(d time.Duration, s domain.Summary, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, err)
}

func newExecutor(t *testing.T, logger log.Logger) (*Executor, *fakeLoader, *fakeRunner, *fakeWrapper, *capture.Buffer) {
	t.Helper()
	daemonOut := &capture.Buffer{}
	streams := capture.NewStreams(daemonOut, daemonOut)
	loader := &fakeLoader{streams: streams}
	runner := &fakeRunner{streams: streams}
	wrapper := &fakeWrapper{}
	if logger == nil {
		logger = logging.Discard()
	}
	return NewExecutor(loader, runner, wrapper, streams, logger, WithWorkingDir("/app")), loader, runner, wrapper, daemonOut
}

func TestExecutor_Run(t *testing.T) {
	exec, loader, runner, wrapper, daemonOut := newExecutor(t, nil)

	out, err := exec.Run(context.Background(), "/app/test/user_test.yml", []string{"-n", "test_a", "[x", "y]"})
	require.NoError(t, err)

	require.Equal(t,
		"loading /app/test/user_test.yml\n"+
			"case output\n"+
			"Loaded suite /app/test/user_test\n1 tests, 1 assertions, 0 failures, 0 errors\n",
		out)
	require.Equal(t, []string{"/app/test/user_test.yml"}, loader.loaded)
	require.Equal(t, [][]string{{"-n", "test_a"}}, runner.args)
	require.Equal(t, int32(1), wrapper.calls.Load())
	require.Equal(t, int32(1), wrapper.handoff.Load())
	require.Empty(t, daemonOut.String(), "captured output must not leak to the daemon's streams")
}

func TestExecutor_Run_InvalidArgument(t *testing.T) {
	exec, loader, _, wrapper, _ := newExecutor(t, nil)

	_, err := exec.Run(context.Background(), "--verbose", nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Empty(t, loader.loaded)
	require.Zero(t, wrapper.calls.Load())
}

func TestExecutor_Run_LoadError(t *testing.T) {
	exec, loader, runner, wrapper, daemonOut := newExecutor(t, nil)
	loader.err = errors.New("syntax error")
	rec := &fakeRecorder{}
	exec.recorder = rec

	_, err := exec.Run(context.Background(), "broken_test.yml", nil)
	require.ErrorContains(t, err, "syntax error")
	require.Empty(t, runner.args)
	require.Equal(t, int32(1), wrapper.handoff.Load())
	require.Len(t, rec.runs, 1)
	require.Error(t, rec.runs[0])

	// streams are restored after the failure
	fmt.Fprint(exec.streams.Stdout(), "after")
	require.Equal(t, "after", daemonOut.String())
}

func TestExecutor_Run_Serialized(t *testing.T) {
	exec, _, runner, _, _ := newExecutor(t, nil)
	runner.delay = 5 * time.Millisecond

	var wg sync.WaitGroup
	outputs := make([]string, 8)
	errs := make([]error, len(outputs))
	for i := range outputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outputs[i], errs[i] = exec.Run(context.Background(), fmt.Sprintf("t%d_test.yml", i), nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	require.False(t, runner.overlap.Load(), "runs overlapped")
	for i, out := range outputs {
		// each response holds exactly its own run's output
		require.Equal(t, 1, strings.Count(out, "case output"))
		require.Contains(t, out, fmt.Sprintf("Loaded suite t%d_test\n", i))
	}
}

func TestExecutor_Run_Logs(t *testing.T) {
	buf := &capture.Buffer{}
	logger, err := logging.New(buf, "info")
	require.NoError(t, err)
	exec, _, _, _, _ := newExecutor(t, logger)

	_, err = exec.Run(context.Background(), "/app/test/a_test.yml", []string{"-v"})
	require.NoError(t, err)

	logs := buf.String()
	require.Contains(t, logs, ">> test/a_test.yml -v")
	require.Regexp(t, `\(\d+ ms\)`, logs)
}
