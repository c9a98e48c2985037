package storage

import (
	"syscall"

	"warmtest/internal/domain"
)

// Storage persists the description of the running daemon
type Storage interface {
	Save(info domain.DaemonInfo) error
	Load() (*domain.DaemonInfo, error)
	Remove() error
}

// JSONStorage stores the daemon description in a JSON file next to the socket
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes path
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the state file location
func (s *JSONStorage) Path() string {
	return s.path
}

// IsProcessAlive checks whether a process with the given PID is running
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// signal 0 checks for existence without delivering anything
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}
