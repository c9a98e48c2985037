package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"warmtest/internal/config"
	"warmtest/internal/environment"
	"warmtest/internal/logging"
	"warmtest/internal/registry"
)

// MigrateCommand boots the environment once: env files, test database and
// boot commands, then the helper and preload files
type MigrateCommand struct {
	config *config.Config
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config) *MigrateCommand {
	return &MigrateCommand{config: cfg}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(cmd.ErrOrStderr(), mc.config.GetLogLevel())
	if err != nil {
		return err
	}

	reg := registry.New()
	env := environment.New(mc.config, reg, logger, environment.WithProgress(cmd.ErrOrStderr()))
	defer env.Close()

	if err := env.Boot(cmd.Context()); err != nil {
		return err
	}
	color.Green("Environment ready: %d files loaded, %d entities defined", len(env.Ledger()), reg.Live())
	return nil
}
