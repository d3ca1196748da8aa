// academyctl is the command-line client for the academy management API. It
// drives the same session, guard and cache layers the UI uses, persisting the
// identity projection and session cookie under the state directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "academyctl",
	Short: "Academy management client",
	Long: `academyctl is the command-line interface for the youth soccer academy
management API. Use it to authenticate, inspect your session, and manage
players, teams, matches, statistics and user accounts.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(serveCmd)
}
