package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wrench",
		Short: "wrench runs incremental, schedulable data-integration pipelines",
		Long: `wrench builds and runs a DAG of pipeline components (harvester,
grouper, enricher, cataloger, or your own) against a declarative YAML
config, tracking incremental change between runs via a delta log.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newHistoryCommand())
	cmd.AddCommand(newScheduleCommand())

	return cmd
}
