package cli

import (
	"errors"

	"warmtest/internal/config"
)

// ErrTestsFailed is returned by the run command when the run reported
// failures or errors. The output has already been printed.
var ErrTestsFailed = errors.New("tests failed")

// Flags holds command-line flags
type Flags struct {
	Serve       bool
	Local       bool
	View        bool
	LogLevel    string
	TestPath    string
	NameFilter  string
	SuiteFilter string
	TestCases   bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Serve:       f.Serve,
		Local:       f.Local,
		View:        f.View,
		LogLevel:    f.LogLevel,
		TestPath:    f.TestPath,
		NameFilter:  f.NameFilter,
		SuiteFilter: f.SuiteFilter,
		TestCases:   f.TestCases,
	}
}
