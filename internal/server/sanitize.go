package server

import (
	"path/filepath"
	"strings"
)

// SanitizeArguments removes editor-supplied bracketed groups: every run of
// tokens starting with one that begins with "[" through the first token, at
// or after it, that ends with "]". An unterminated group is kept.
func SanitizeArguments(args []string) []string {
	out := append([]string(nil), args...)
	for {
		start := -1
		for i, a := range out {
			if strings.HasPrefix(a, "[") {
				start = i
				break
			}
		}
		if start < 0 {
			return out
		}

		end := -1
		for i := start; i < len(out); i++ {
			if strings.HasSuffix(out[i], "]") {
				end = i
				break
			}
		}
		if end < 0 {
			return out
		}
		out = append(out[:start], out[end+1:]...)
	}
}

// ShortenPath returns path relative to base when that is shorter than path
// itself, else path unchanged
func ShortenPath(path, base string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(base, abs)
	}
	abs = filepath.Clean(abs)

	attempt := abs
	if prefix := strings.TrimSuffix(base, string(filepath.Separator)) + string(filepath.Separator); strings.HasPrefix(abs, prefix) {
		attempt = strings.TrimPrefix(abs, prefix)
	}
	if len(attempt) < len(path) {
		return attempt
	}
	return path
}
