package execution

import (
	"fmt"
	"io"

	"warmtest/internal/domain"
)

type fault struct {
	kind    string
	suite   string
	test    string
	message string
}

// reporter writes the console report of one run
type reporter struct {
	w       io.Writer
	verbose bool
	faults  []fault
}

func newReporter(w io.Writer, verbose bool) *reporter {
	return &reporter{w: w, verbose: verbose}
}

func (r *reporter) started(label string) {
	fmt.Fprintf(r.w, "Loaded suite %s\nStarted\n", label)
}

func (r *reporter) record(suite, test string, err error) {
	mark := "."
	if err != nil {
		kind := domain.KindError
		if isAssertion(err) {
			kind = domain.KindFailure
			mark = "F"
		} else {
			mark = "E"
		}
		r.faults = append(r.faults, fault{kind: kind, suite: suite, test: test, message: err.Error()})
	}

	if r.verbose {
		fmt.Fprintf(r.w, "%s#%s: %s\n", suite, test, mark)
		return
	}
	fmt.Fprint(r.w, mark)
}

func (r *reporter) finished(s domain.Summary) {
	if !r.verbose {
		fmt.Fprintln(r.w)
	}
	fmt.Fprintf(r.w, "Finished in %.6f seconds.\n", s.Duration.Seconds())

	for i, f := range r.faults {
		fmt.Fprintf(r.w, "\n  %d) %s:\n%s(%s):\n%s\n", i+1, f.kind, f.test, f.suite, f.message)
	}

	fmt.Fprintf(r.w, "\n%d tests, %d assertions, %d failures, %d errors\n",
		s.Tests, s.Assertions, s.Failures, s.Errors)
}
