package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"warmtest/internal/domain"
)

// ShellCase compiles a declared case into a test body that runs it with sh
func ShellCase(spec domain.CaseSpec) domain.CaseFunc {
	return func(ctx context.Context, t *domain.T) error {
		cmd := exec.CommandContext(ctx, "sh", "-c", spec.Run)
		cmd.Env = t.Env
		cmd.Dir = t.Dir

		var output bytes.Buffer
		cmd.Stdout = io.MultiWriter(t.Stdout, &output)
		cmd.Stderr = io.MultiWriter(t.Stderr, &output)

		status := 0
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				return fmt.Errorf("error running %q: %w", spec.Run, err)
			}
			status = exitErr.ExitCode()
		}

		want := spec.ExpectedStatus()
		if err := t.Check(status == want, "expected exit status %d, got %d\n%s", want, status, output.String()); err != nil {
			return err
		}
		for _, s := range spec.OutputContains {
			if err := t.Check(strings.Contains(output.String(), s), "expected output to contain %q\n%s", s, output.String()); err != nil {
				return err
			}
		}
		return nil
	}
}
