package domain

import (
	"context"
	"fmt"
	"io"
)

// CaseFunc is the body of a test case
type CaseFunc func(ctx context.Context, t *T) error

// TestCase represents a single test case within a suite
type TestCase struct {
	Name string
	Func CaseFunc
}

// T is handed to a running test case
type T struct {
	Stdout io.Writer
	Stderr io.Writer
	Env    []string
	Dir    string

	assertions int
}

// Check counts an assertion and returns an *AssertionError when ok is false
func (t *T) Check(ok bool, format string, args ...any) error {
	t.assertions++
	if ok {
		return nil
	}
	return &AssertionError{Message: fmt.Sprintf(format, args...)}
}

// Assertions returns the number of assertions checked so far
func (t *T) Assertions() int {
	return t.assertions
}

// SourceFile is the parsed content of a suite or helper file
type SourceFile struct {
	Env        map[string]string `yaml:"env"`
	Categories []CategorySpec    `yaml:"categories"`
	Suites     []SuiteSpec       `yaml:"suites"`
}

// CategorySpec declares an abstract category other suites may extend
type CategorySpec struct {
	Name string `yaml:"name"`
	Base string `yaml:"base"`
}

// SuiteSpec declares a test suite
type SuiteSpec struct {
	Name  string     `yaml:"name"`
	Base  string     `yaml:"base"`
	Tests []CaseSpec `yaml:"tests"`
}

// CaseSpec declares a shell test case
type CaseSpec struct {
	Name           string   `yaml:"name"`
	Run            string   `yaml:"run"`
	Status         *int     `yaml:"status"`
	OutputContains []string `yaml:"output_contains"`
}

// ExpectedStatus returns the exit status the case asserts, 0 by default
func (c CaseSpec) ExpectedStatus() int {
	if c.Status == nil {
		return 0
	}
	return *c.Status
}
