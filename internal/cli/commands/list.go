package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"warmtest/internal/config"
	"warmtest/internal/discovery"
	"warmtest/internal/domain"
	"warmtest/internal/ui"
)

// ListCommand shows the suite files under the test path and, on request,
// the suites and test cases they declare
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	parser    *discovery.Parser
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	parser *discovery.Parser,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		parser:    parser,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	files, err := lc.scanner.Scan(lc.config.GetTestPath())
	if err != nil {
		return err
	}
	files = lc.filter.FilterByName(files, lc.config.Flags.NameFilter)

	showSuites := lc.config.Flags.TestCases || lc.config.Flags.SuiteFilter != ""
	if !showSuites {
		if len(files) == 0 {
			color.Yellow("No suite files found")
			return nil
		}
		lc.formatter.PrintTestList(files)
		return nil
	}

	listings := lc.listSuites(files, lc.config.Flags.SuiteFilter)
	if len(listings) == 0 {
		color.Yellow("No suites found")
		return nil
	}
	lc.formatter.PrintSuiteTree(listings)
	return nil
}

// listSuites parses files and keeps the suites whose name matches pattern.
// Files left without a matching suite are dropped unless they failed to parse.
func (lc *ListCommand) listSuites(files []string, pattern string) []ui.SuiteListing {
	listings := make([]ui.SuiteListing, 0, len(files))
	for _, file := range files {
		src, err := lc.parser.ParseFile(file)
		if err != nil {
			listings = append(listings, ui.SuiteListing{Path: file, Err: err})
			continue
		}

		suites := src.Suites
		if pattern != "" {
			suites = make([]domain.SuiteSpec, 0, len(src.Suites))
			for _, s := range src.Suites {
				if lc.filter.Match(s.Name, pattern) {
					suites = append(suites, s)
				}
			}
			if len(suites) == 0 {
				continue
			}
		}
		listings = append(listings, ui.SuiteListing{Path: file, Suites: suites})
	}
	return listings
}
