package domain

import "time"

// RunRequest is a single test-suite invocation sent to the daemon
type RunRequest struct {
	File string   `json:"file"`
	Args []string `json:"args"`
}

// Summary counts the outcome of one runner invocation
type Summary struct {
	Tests      int
	Assertions int
	Failures   int
	Errors     int
	Duration   time.Duration
}

// Passed reports whether the run had neither failures nor errors
func (s Summary) Passed() bool {
	return s.Failures == 0 && s.Errors == 0
}

// DaemonInfo describes a running daemon, persisted next to its socket
type DaemonInfo struct {
	PID       int       `json:"pid"`
	Socket    string    `json:"socket"`
	Root      string    `json:"root"`
	StartedAt time.Time `json:"started_at"`
	Version   string    `json:"version"`
}
