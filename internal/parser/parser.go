package parser

import "warmtest/internal/domain"

// Parser extracts results from a run report
type Parser interface {
	ParseSummary(output string) (domain.Summary, bool)
	ParseFailures(output string) []domain.Failure
}
