package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"warmtest/internal/cli"
	"warmtest/internal/config"
	"warmtest/internal/discovery"
	"warmtest/internal/parser"
	"warmtest/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Status  *StatusCommand
	Stop    *StopCommand
	Migrate *MigrateCommand

	version string
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, version string) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	filter := discovery.NewFilter()
	suiteParser := discovery.NewParser()
	reportParser := parser.NewReportParser()
	formatter := ui.NewFormatter(cfg)

	return &Commands{
		Run:     NewRunCommand(cfg, reportParser, formatter, version),
		List:    NewListCommand(cfg, scanner, filter, suiteParser, formatter),
		Status:  NewStatusCommand(cfg, formatter),
		Stop:    NewStopCommand(cfg),
		Migrate: NewMigrateCommand(cfg),
		version: version,
	}
}

// Register wires the run command into rootCmd and adds the subcommands
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	syncFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		cfg.Flags = flags.ToConfigFlags()
		return nil
	}

	// Run: everything after FILE goes to the runner untouched
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = c.Run.Execute
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if flags.Serve && flags.Local {
			return fmt.Errorf("--serve and --local are mutually exclusive")
		}
		return syncFlags(cmd, args)
	}
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().BoolVarP(&flags.Serve, "serve", "s", false, "Start the test server in the foreground")
	rootCmd.Flags().BoolVarP(&flags.Local, "local", "l", false, "Run in-process without contacting the test server")
	rootCmd.Flags().BoolVar(&flags.View, "view", false, "Open the failure viewer when the run has failures")
	rootCmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered suite files",
		Long:    "Scan and list suite files without executing them, optionally with the suites and test cases they declare",
		RunE:    c.List.Execute,
		PreRunE: syncFlags,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter suite files by name pattern (supports wildcards, e.g., '*user_test.yml' or '*payment*')")
	listCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where suite detection should start")
	listCmd.Flags().StringVarP(&flags.SuiteFilter, "suite", "s", "", "Show only suites matching a name pattern (exact, wildcard or /regexp/)")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List the suites and test cases of each suite file")
	rootCmd.AddCommand(listCmd)

	// Status command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the test server is running",
		Args:  cobra.NoArgs,
		RunE:  c.Status.Execute,
	})

	// Stop command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the running test server",
		Args:  cobra.NoArgs,
		RunE:  c.Stop.Execute,
	})

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Prepare the test database and run boot commands",
		Long:    "Boot the warm environment once without serving: load env files, ensure the test database, run boot commands and load helper files",
		Args:    cobra.NoArgs,
		RunE:    c.Migrate.Execute,
		PreRunE: syncFlags,
	}
	migrateCmd.Flags().StringVar(&flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd)

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "warmtest %s\n", c.version)
		},
	})
}
