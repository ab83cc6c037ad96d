package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose bool
	dryRun  bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "uecfg",
		Short:         "uecfg audits and remediates workstation readiness for Unreal Engine source builds",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", true, "Preview actions without making changes")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable styled output")

	cmd.AddCommand(newScanCmd(flags))
	cmd.AddCommand(newFixCmd(flags))
	cmd.AddCommand(newVerifyCmd(flags))
	cmd.AddCommand(newSetupCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// applyRequested resolves --apply against --dry-run. The dry-run
// default never blocks an explicit --apply; a --dry-run passed on the
// command line always wins.
func applyRequested(cmd *cobra.Command, apply, dryRun bool) bool {
	if dryRun && cmd.Flags().Changed("dry-run") {
		return false
	}
	return apply
}
