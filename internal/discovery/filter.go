package discovery

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Filter matches names against user supplied patterns
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters suite files by base name. Supports wildcards such as
// "*user_test.yml" or "*payment*"; a plain pattern matches as a substring.
func (f *Filter) FilterByName(files []string, pattern string) []string {
	if pattern == "" {
		return files
	}

	var filtered []string
	for _, file := range files {
		name := filepath.Base(file)

		if strings.ContainsAny(pattern, "*?") {
			if matchWildcard(pattern, name) {
				filtered = append(filtered, file)
			}
			continue
		}
		if strings.Contains(name, pattern) {
			filtered = append(filtered, file)
		}
	}
	return filtered
}

// Match reports whether name satisfies pattern. "/expr/" is a regular
// expression, a pattern with wildcards is a glob, anything else must equal
// name. An invalid expression matches nothing.
func (f *Filter) Match(name, pattern string) bool {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		re, err := regexp.Compile(pattern[1 : len(pattern)-1])
		if err != nil {
			return false
		}
		return re.MatchString(name)
	}
	if strings.ContainsAny(pattern, "*?") {
		return matchWildcard(pattern, name)
	}
	return name == pattern
}

// MatchAny reports whether name satisfies one of patterns; no patterns match everything
func (f *Filter) MatchAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if f.Match(name, p) {
			return true
		}
	}
	return false
}

func matchWildcard(pattern, name string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// filepath.Match stops at separators; fall back to ordered substring parts
	parts := strings.Split(pattern, "*")
	rest := name
	nonEmpty := false
	for i, part := range parts {
		if part == "" {
			continue
		}
		nonEmpty = true
		idx := strings.Index(rest, part)
		if idx < 0 || (i == 0 && idx != 0) {
			return false
		}
		rest = rest[idx+len(part):]
	}
	if !nonEmpty {
		return true
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(name, last) {
		return false
	}
	return true
}
