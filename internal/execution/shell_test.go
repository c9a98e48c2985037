package execution

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"warmtest/internal/capture"
	"warmtest/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestShellCase(t *testing.T) {
	tests := []struct {
		name string
		spec domain.CaseSpec
		ok   bool
	}{
		{
			name: "passes on zero status",
			spec: domain.CaseSpec{Run: "echo hello", OutputContains: []string{"hello"}},
			ok:   true,
		},
		{
			name: "expected status",
			spec: domain.CaseSpec{Run: "exit 3", Status: intPtr(3)},
			ok:   true,
		},
		{
			name: "unexpected status",
			spec: domain.CaseSpec{Run: "exit 1"},
		},
		{
			name: "missing output",
			spec: domain.CaseSpec{Run: "echo goodbye", OutputContains: []string{"hello"}},
		},
		{
			name: "sees the warm environment",
			spec: domain.CaseSpec{Run: `test "$WARM_VALUE" = 42`},
			ok:   true,
		},
		{
			name: "stderr counts as output",
			spec: domain.CaseSpec{Run: "echo oops >&2", OutputContains: []string{"oops"}},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := &domain.T{
				Stdout: &capture.Buffer{},
				Stderr: &capture.Buffer{},
				Env:    append(os.Environ(), "WARM_VALUE=42"),
				Dir:    t.TempDir(),
			}
			err := ShellCase(tt.spec)(context.Background(), dt)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			var ae *domain.AssertionError
			require.ErrorAs(t, err, &ae)
		})
	}
}
