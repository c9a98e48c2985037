package ui

import "warmtest/internal/domain"

// Viewer displays run failures in an interactive TUI
type Viewer interface {
	View(failures []domain.Failure) error
}
