package execution

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Options are the runner's command-line options
type Options struct {
	Names     []string
	TestCases []string
	Verbose   bool
	FailFast  bool
}

// ParseOptions parses runner arguments
func ParseOptions(args []string) (Options, error) {
	var opts Options

	fs := pflag.NewFlagSet("runner", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringArrayVarP(&opts.Names, "name", "n", nil, "Run tests matching name or /regexp/")
	fs.StringArrayVarP(&opts.TestCases, "testcase", "t", nil, "Run suites matching name or /regexp/")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "Report every test")
	fs.BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first failure or error")

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("invalid runner options: %w", err)
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("invalid runner options: unexpected arguments %v", fs.Args())
	}
	return opts, nil
}
