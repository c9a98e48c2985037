package discovery

import (
	"testing"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name     string
		files    []string
		pattern  string
		expected int
	}{
		{
			name:     "empty pattern returns all",
			files:    []string{"user_test.yml", "payment_test.yml", "order_test.yml"},
			pattern:  "",
			expected: 3,
		},
		{
			name:     "wildcard pattern matches suffix",
			files:    []string{"user_test.yml", "payment_test.yml", "order_test.yml"},
			pattern:  "*user_test.yml",
			expected: 1,
		},
		{
			name:     "wildcard pattern matches substring",
			files:    []string{"user_test.yml", "payment_test.yml", "order_test.yml", "payment_service_test.yml"},
			pattern:  "*payment*",
			expected: 2,
		},
		{
			name:     "simple contains match",
			files:    []string{"user_test.yml", "payment_test.yml", "order_test.yml"},
			pattern:  "payment",
			expected: 1,
		},
		{
			name:     "no matches",
			files:    []string{"user_test.yml", "payment_test.yml"},
			pattern:  "*nonexistent*",
			expected: 0,
		},
		{
			name:     "full path with wildcard",
			files:    []string{"/path/to/user_test.yml", "/path/to/payment_test.yml"},
			pattern:  "*user_test.yml",
			expected: 1,
		},
		{
			name:     "multiple wildcards",
			files:    []string{"user_service_test.yml", "user_controller_test.yml", "payment_test.yml"},
			pattern:  "*user*test.yml",
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.files, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestFilter_Match(t *testing.T) {
	filter := NewFilter()

	tests := []struct {
		name    string
		value   string
		pattern string
		want    bool
	}{
		{"exact match", "test_login", "test_login", true},
		{"exact mismatch", "test_login_fails", "test_login", false},
		{"regexp", "test_login_fails", "/login/", true},
		{"regexp anchored", "test_login", "/^login/", false},
		{"invalid regexp", "test_login", "/([/", false},
		{"wildcard", "models.UserTest", "models.*", true},
		{"wildcard mismatch", "models.UserTest", "controllers.*", false},
		{"single slash is literal", "/", "/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.Match(tt.value, tt.pattern); got != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.value, tt.pattern, got, tt.want)
			}
		})
	}

	if !filter.MatchAny("anything", nil) {
		t.Error("expected no patterns to match everything")
	}
	if filter.MatchAny("test_a", []string{"test_b", "/c$/"}) {
		t.Error("expected no pattern to match")
	}
}
