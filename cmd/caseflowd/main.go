// Command caseflowd runs the case execution engine: its HTTP surface,
// its scheduler scan/dispatch loop, a standalone worker pool, a one-shot
// case run, or a one-shot database migration, selected by subcommand.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "caseflowd",
		Short: "API test-case execution engine",
		Long:  "caseflowd [server|scheduler|worker|run|migrate] [options]",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")

	root.AddCommand(serverCmd())
	root.AddCommand(schedulerCmd())
	root.AddCommand(workerCmd())
	root.AddCommand(runCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
