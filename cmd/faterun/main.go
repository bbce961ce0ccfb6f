package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"faterun/internal/cli"
)

func main() {
	inv := cli.Invocation{}
	exitCode := cli.ExitSuccess

	root := &cobra.Command{
		Use:           "faterun [flags] TARGET...",
		Short:         "Run declared targets in dependency order",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.Targets = args
			code, err := cli.Execute(cmd.Context(), inv)
			exitCode = code
			return err
		},
	}
	root.PersistentFlags().StringVarP(&inv.File, "file", "f", "", "manifest file (default: discover in the working directory)")
	root.PersistentFlags().StringVar(&inv.ParserName, "parser", "", "force a manifest parser (pyproject|yaml|json)")
	root.PersistentFlags().StringVarP(&inv.Dir, "chdir", "C", "", "working directory for discovery and commands")
	root.PersistentFlags().StringVar(&inv.LogLevel, "log-level", "info", "log level (trace|debug|info|warn|error|fatal)")
	root.Flags().BoolVar(&inv.KeepGoing, "keep-going", false, "continue independent targets after a failure")
	root.Flags().BoolVar(&inv.Dry, "dry", false, "log what would run without spawning processes")

	list := &cobra.Command{
		Use:   "list",
		Short: "List targets defined in the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv.ListOnly = true
			code, err := cli.Execute(cmd.Context(), inv)
			exitCode = code
			return err
		},
	}
	root.AddCommand(list)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if exitCode == cli.ExitSuccess {
			exitCode = cli.ExitInvalidInvocation
		}
	}
	os.Exit(exitCode)
}
