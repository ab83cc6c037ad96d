package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/report"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/setup"
)

type verifyOptions struct {
	scanInputs
	JSONPath string
	NoColor  bool
}

var verifyCmdRunner = runVerify

func newVerifyCmd(root *rootFlags) *cobra.Command {
	opts := verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Judge an engine source tree against its version manifest",
		Long: `Verify focuses on manifest compliance: it probes the source tree and
toolchain, then reports whether the detected versions satisfy the pins
for the engine line found at --ue-root. Exit code 0 means compliant,
1 means a pin is violated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			return verifyCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.UERoot, "ue-root", "", "Path to the engine source tree")
	cmd.Flags().StringVar(&opts.UEVersion, "ue-version", "", "Engine version line to verify against (e.g. 5.6)")
	cmd.Flags().StringVar(&opts.JSONPath, "json", "", "Also write the JSON report to this path")
	_ = cmd.MarkFlagRequired("ue-root")

	return cmd
}

func runVerify(ctx context.Context, opts verifyOptions) error {
	// Compliance needs the toolchain and source-tree phases probed.
	opts.Phases = []int{1, 2}

	art, err := runScanPipeline(ctx, opts.scanInputs)
	if err != nil {
		return err
	}
	if art.Manifest == nil {
		fmt.Fprintln(os.Stderr, "Error: no manifest found for this engine tree; pass --ue-version or add one under manifests/")
		exitFunc(setup.ExitUsage)
		return nil
	}

	rep := report.Build(art.Scan, art.Card, art.Verdict, art.Manifest)
	report.RenderConsole(os.Stdout, rep, nil, report.ConsoleOptions{
		NoColor: opts.NoColor,
		Verbose: opts.Verbose,
	})
	if opts.JSONPath != "" {
		if err := rep.SaveJSON(opts.JSONPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON report: %v\n", err)
			exitFunc(setup.ExitUsage)
			return err
		}
	}

	if art.Verdict != nil && art.Verdict.Status == model.StatusFail {
		exitFunc(setup.ExitFailed)
	}
	return nil
}
