package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"warmtest/internal/capture"
	"warmtest/internal/discovery"
	"warmtest/internal/domain"
	"warmtest/internal/logging"
	"warmtest/internal/registry"
)

type fakeEnv struct {
	root string
	env  []string
}

func (f fakeEnv) Env() []string { return f.env }
func (f fakeEnv) Root() string  { return f.root }

func newTestRunner(t *testing.T, suites map[string][]domain.TestCase) (*Runner, *capture.Streams) {
	t.Helper()
	reg := registry.New()
	base, err := reg.Define("warm.TestCase", nil, "")
	require.NoError(t, err)
	for name, cases := range suites {
		_, err := reg.Define(name, base, name+".yml", cases...)
		require.NoError(t, err)
	}

	streams := capture.NewStreams(&capture.Buffer{}, &capture.Buffer{})
	collector := discovery.NewCollector(reg, reg.IsLegitimate)
	env := fakeEnv{root: t.TempDir(), env: os.Environ()}
	return NewRunner(collector, []string{"warm.TestCase"}, streams, env, logging.Discard()), streams
}

func pass(ctx context.Context, t *domain.T) error {
	return t.Check(true, "unreachable")
}

func fail(ctx context.Context, t *domain.T) error {
	return t.Check(1 == 2, "expected 1 to equal 2")
}

func boom(ctx context.Context, t *domain.T) error {
	return errors.New("boom")
}

func TestRunner_Run(t *testing.T) {
	runner, _ := newTestRunner(t, map[string][]domain.TestCase{
		"ATest": {{Name: "test_pass", Func: pass}, {Name: "test_fail", Func: fail}},
		"BTest": {{Name: "test_error", Func: boom}, {Name: "test_panic", Func: func(context.Context, *domain.T) error { panic("kaboom") }}},
	})

	var sink bytes.Buffer
	summary, err := runner.Run(context.Background(), "test/a_test", nil, &sink)
	require.NoError(t, err)

	require.Equal(t, 4, summary.Tests)
	require.Equal(t, 2, summary.Assertions)
	require.Equal(t, 1, summary.Failures)
	require.Equal(t, 2, summary.Errors)
	require.False(t, summary.Passed())

	out := sink.String()
	require.True(t, strings.HasPrefix(out, "Loaded suite test/a_test\nStarted\n.FEE\nFinished in "), out)
	require.Contains(t, out, "  1) Failure:\ntest_fail(ATest):\nexpected 1 to equal 2\n")
	require.Contains(t, out, "  2) Error:\ntest_error(BTest):\nboom\n")
	require.Contains(t, out, "  3) Error:\ntest_panic(BTest):\npanic: kaboom\n")
	require.True(t, strings.HasSuffix(out, "\n4 tests, 2 assertions, 1 failures, 2 errors\n"), out)
}

func TestRunner_Run_Options(t *testing.T) {
	runner, _ := newTestRunner(t, map[string][]domain.TestCase{
		"ATest": {{Name: "test_one", Func: pass}, {Name: "test_two", Func: fail}},
		"BTest": {{Name: "test_one", Func: pass}},
	})

	t.Run("name filter", func(t *testing.T) {
		var sink bytes.Buffer
		summary, err := runner.Run(context.Background(), "x", []string{"-n", "test_one"}, &sink)
		require.NoError(t, err)
		require.Equal(t, 2, summary.Tests)
		require.True(t, summary.Passed())
	})

	t.Run("testcase regexp and verbose", func(t *testing.T) {
		var sink bytes.Buffer
		summary, err := runner.Run(context.Background(), "x", []string{"--testcase=/^B/", "-v"}, &sink)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Tests)
		require.Contains(t, sink.String(), "BTest#test_one: .\n")
	})

	t.Run("fail fast", func(t *testing.T) {
		var sink bytes.Buffer
		summary, err := runner.Run(context.Background(), "x", []string{"--fail-fast", "-t", "ATest", "-n", "/test_/"}, &sink)
		require.NoError(t, err)
		require.Equal(t, 1, summary.Failures)
		require.Equal(t, 2, summary.Tests)
	})

	t.Run("unknown option", func(t *testing.T) {
		var sink bytes.Buffer
		_, err := runner.Run(context.Background(), "x", []string{"--bogus"}, &sink)
		require.Error(t, err)
		require.Empty(t, sink.String())
	})
}

func TestRunner_Run_Cancelled(t *testing.T) {
	runner, _ := newTestRunner(t, map[string][]domain.TestCase{
		"ATest": {{Name: "test_pass", Func: pass}},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sink bytes.Buffer
	summary, err := runner.Run(ctx, "x", nil, &sink)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, summary.Tests)
	require.Contains(t, sink.String(), "0 tests, 0 assertions, 0 failures, 0 errors")
}

func TestRunner_CaseOutputGoesToStreams(t *testing.T) {
	runner, streams := newTestRunner(t, map[string][]domain.TestCase{
		"ATest": {{Name: "test_print", Func: func(ctx context.Context, t *domain.T) error {
			fmt.Fprint(t.Stdout, "to stdout")
			fmt.Fprint(t.Stderr, "to stderr")
			return nil
		}}},
	})

	var sink bytes.Buffer
	var stderr string
	stdout, err := streams.Capture(capture.Stdout, func() error {
		var err error
		stderr, err = streams.Capture(capture.Stderr, func() error {
			_, err := runner.Run(context.Background(), "x", nil, &sink)
			return err
		})
		return err
	})
	require.NoError(t, err)
	require.Equal(t, "to stdout", stdout)
	require.Equal(t, "to stderr", stderr)
	require.NotContains(t, sink.String(), "to stdout")
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions([]string{"-n", "/login/", "--name", "test_x", "-t", "AuthTest", "-v", "--fail-fast"})
	require.NoError(t, err)
	require.Equal(t, Options{
		Names:     []string{"/login/", "test_x"},
		TestCases: []string{"AuthTest"},
		Verbose:   true,
		FailFast:  true,
	}, opts)

	_, err = ParseOptions([]string{"stray"})
	require.Error(t, err)
}
