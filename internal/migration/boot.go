package migration

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// CommandError reports a boot command that exited unsuccessfully
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("boot command %q failed: %v\n%s", e.Command, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandRunner runs the configured boot commands in order
type CommandRunner struct {
	commands []string
	dir      string
	progress io.Writer
	log      log.Logger
}

// NewCommandRunner creates a CommandRunner that reports progress to w
func NewCommandRunner(commands []string, dir string, w io.Writer, logger log.Logger) *CommandRunner {
	return &CommandRunner{
		commands: commands,
		dir:      dir,
		progress: w,
		log:      logger,
	}
}

// Run executes every command with env, stopping at the first failure
func (r *CommandRunner) Run(ctx context.Context, env []string) error {
	if len(r.commands) == 0 {
		return nil
	}

	total := len(r.commands)
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.CyanString("Booting: ")+color.GreenString("[completed: 0/%d]", total)),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(r.progress, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	for i, command := range r.commands {
		start := time.Now()
		output, err := r.runCommand(ctx, command, env)
		if err != nil {
			return &CommandError{Command: command, Output: output, Err: err}
		}
		r.log.Info("Boot command finished", "cmd", command, "elapsed", time.Since(start).Round(time.Millisecond))
		r.log.Debug("Boot command output", "cmd", command, "output", output)

		_ = bar.Add(1)
		bar.Describe(color.CyanString("Booting: ") + color.GreenString("[completed: %d/%d]", i+1, total))
	}
	return bar.Finish()
}

func (r *CommandRunner) runCommand(ctx context.Context, command string, env []string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = env
	cmd.Dir = r.dir

	output, err := cmd.CombinedOutput()
	return string(output), err
}
