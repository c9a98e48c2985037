package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"warmtest/internal/config"
	"warmtest/internal/domain"
)

// Formatter prints user-facing output of the client commands
type Formatter struct {
	config *config.Config
	out    io.Writer
	errOut io.Writer
}

// SuiteListing is a parsed suite file as shown by the list command
type SuiteListing struct {
	Path   string
	Suites []domain.SuiteSpec
	Err    error
}

// NewFormatter creates a new Formatter writing to stdout and stderr
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		config: cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
}

// SetOutput redirects regular and diagnostic output
func (f *Formatter) SetOutput(out, errOut io.Writer) {
	f.out = out
	f.errOut = errOut
}

var (
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
)

// Fallback tells the user the run happens in-process because the daemon could not serve it
func (f *Formatter) Fallback(reason error) {
	yellow.Fprintf(f.errOut, "Test server unavailable (%v), running locally\n", reason)
}

// PrintOutcome prints a one-line verdict for a parsed run summary
func (f *Formatter) PrintOutcome(s domain.Summary) {
	if s.Passed() {
		green.Fprintf(f.out, "✓ %d tests passed\n", s.Tests)
		return
	}
	red.Fprintf(f.out, "✗ %d failures, %d errors in %d tests\n", s.Failures, s.Errors, s.Tests)
}

// PrintStatus prints the state of the daemon described by info.
// reachable reports whether it answered on its socket.
func (f *Formatter) PrintStatus(info *domain.DaemonInfo, alive, reachable bool) {
	if info == nil {
		yellow.Fprintln(f.out, "Test server is not running")
		return
	}

	switch {
	case alive && reachable:
		green.Fprintf(f.out, "Test server is running (pid %d)\n", info.PID)
	case alive:
		yellow.Fprintf(f.out, "Test server process %d is alive but not answering\n", info.PID)
	default:
		red.Fprintf(f.out, "Test server is not running (stale state for pid %d)\n", info.PID)
	}

	cyan.Fprintf(f.out, "├── socket:  %s\n", info.Socket)
	cyan.Fprintf(f.out, "├── root:    %s\n", info.Root)
	if info.Version != "" {
		cyan.Fprintf(f.out, "├── version: %s\n", info.Version)
	}
	cyan.Fprintf(f.out, "└── uptime:  %s\n", time.Since(info.StartedAt).Round(time.Second))
}

// PrintTestList prints a list of suite files
func (f *Formatter) PrintTestList(tests []string) {
	green.Fprintf(f.out, "Found %d suite file(s):\n\n", len(tests))
	for i, test := range tests {
		cyan.Fprintf(f.out, "%s%s\n", branch(i == len(tests)-1), f.relative(test))
	}
}

// PrintSuiteTree prints each suite file with its suites and their test cases
func (f *Formatter) PrintSuiteTree(listings []SuiteListing) {
	suites, cases := 0, 0
	for i, l := range listings {
		isLastFile := i == len(listings)-1
		cyan.Fprintf(f.out, "%s%s\n", branch(isLastFile), f.relative(l.Path))

		indent := "│   "
		if isLastFile {
			indent = "    "
		}

		switch {
		case l.Err != nil:
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprintf("error reading suite file: %v", l.Err))
		case len(l.Suites) == 0:
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no suites found)"))
		}

		for j, s := range l.Suites {
			isLastSuite := j == len(l.Suites)-1
			base := s.Base
			if base == "" {
				base = "default base"
			}
			fmt.Fprintf(f.out, "%s%s%s %s\n", indent, branch(isLastSuite), green.Sprint(s.Name), color.HiBlackString("(%s)", base))

			caseIndent := indent + "│   "
			if isLastSuite {
				caseIndent = indent + "    "
			}
			for k, c := range s.Tests {
				fmt.Fprintf(f.out, "%s%s%s\n", caseIndent, branch(k == len(s.Tests)-1), yellow.Sprint(c.Name))
			}

			suites++
			cases += len(s.Tests)
		}

		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
	fmt.Fprintf(f.out, "\n%d suite file(s), %d suite(s), %d test case(s)\n", len(listings), suites, cases)
}

func (f *Formatter) relative(path string) string {
	rel, err := filepath.Rel(f.config.ProjectPath, path)
	if err != nil {
		return path
	}
	return rel
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}
