// Package commands wires the despesas command line: the web server and the
// terminal renditions of the calendar and the interest calculator.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"despesas/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "despesas",
		Short:   "Calendário de despesas e calculadora de juros compostos",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newInterestCommand())
	rootCmd.AddCommand(newCalendarCommand())
	rootCmd.AddCommand(newGoogleAuthCommand())

	return rootCmd
}
