package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"warmtest/internal/domain"
)

// Save writes info to the state file
func (s *JSONStorage) Save(info domain.DaemonInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal daemon state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write daemon state: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state file. A missing file yields os.ErrNotExist.
func (s *JSONStorage) Load() (*domain.DaemonInfo, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read daemon state: %w", err)
	}
	var info domain.DaemonInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse daemon state: %w", err)
	}
	return &info, nil
}

// Remove deletes the state file; a missing file is not an error
func (s *JSONStorage) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove daemon state: %w", err)
	}
	return nil
}
