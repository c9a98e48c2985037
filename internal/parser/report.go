package parser

import (
	"regexp"
	"strconv"
	"strings"

	"warmtest/internal/domain"
)

var (
	summaryPattern = regexp.MustCompile(`(?m)^(\d+) tests, (\d+) assertions, (\d+) failures, (\d+) errors$`)
	headerPattern  = regexp.MustCompile(`^\s+(\d+)\) (Failure|Error):$`)
	testPattern    = regexp.MustCompile(`^(.+)\(([^()]+)\):$`)
	finishedPrefix = "Finished in "
)

// ReportParser parses the console report written by the runner
type ReportParser struct{}

// NewReportParser creates a new ReportParser
func NewReportParser() *ReportParser {
	return &ReportParser{}
}

// ParseSummary reads the last summary line of output
func (p *ReportParser) ParseSummary(output string) (domain.Summary, bool) {
	matches := summaryPattern.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return domain.Summary{}, false
	}
	m := matches[len(matches)-1]
	return domain.Summary{
		Tests:      atoi(m[1]),
		Assertions: atoi(m[2]),
		Failures:   atoi(m[3]),
		Errors:     atoi(m[4]),
	}, true
}

// ParseFailures extracts the numbered failure and error blocks of output
func (p *ReportParser) ParseFailures(output string) []domain.Failure {
	lines := strings.Split(output, "\n")

	var failures []domain.Failure
	var current *domain.Failure
	var message []string

	flush := func() {
		if current == nil {
			return
		}
		current.Message = strings.TrimRight(strings.Join(message, "\n"), "\n")
		failures = append(failures, *current)
		current = nil
		message = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if m := headerPattern.FindStringSubmatch(line); m != nil && i+1 < len(lines) {
			if t := testPattern.FindStringSubmatch(lines[i+1]); t != nil {
				flush()
				current = &domain.Failure{Index: atoi(m[1]), Kind: m[2], Test: t[1], Suite: t[2]}
				i++
				continue
			}
		}
		if current == nil {
			continue
		}
		if summaryPattern.MatchString(line) || strings.HasPrefix(line, finishedPrefix) {
			flush()
			continue
		}
		message = append(message, line)
	}
	flush()
	return failures
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
