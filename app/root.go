// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-user-groups",
	Short: "GoUserGroups is a criteria-driven user group membership service",
	Long: `GoUserGroups is a criteria-driven user group membership service
that keeps group rosters in sync with declarative membership criteria
and re-evaluates them when platform events arrive.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
