package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/report"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/setup"
)

type scanOptions struct {
	scanInputs
	JSONPath string
	NoColor  bool
}

var scanCmdRunner = runScan

func newScanCmd(root *rootFlags) *cobra.Command {
	opts := scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Audit workstation readiness without changing anything",
		Long: `Scan runs every applicable readiness probe, scores the results per
phase, and judges the detected toolchain against the engine version
manifest when one is available. Scanning never mutates the system.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			return scanCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntSliceVar(&opts.Phases, "phase", nil, "Limit the scan to specific phases (repeatable, 0-3)")
	cmd.Flags().StringVar(&opts.UERoot, "ue-root", "", "Path to the engine source tree")
	cmd.Flags().StringVar(&opts.UEVersion, "ue-version", "", "Engine version line to audit against (e.g. 5.6)")
	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "Explicit manifest file, overrides --ue-version lookup")
	cmd.Flags().StringVar(&opts.ProfileName, "profile", "", "Machine profile: workstation, agent or minimal")
	cmd.Flags().StringVar(&opts.JSONPath, "json", "", "Also write the JSON report to this path")

	return cmd
}

func runScan(ctx context.Context, opts scanOptions) error {
	art, err := runScanPipeline(ctx, opts.scanInputs)
	if err != nil {
		return err
	}

	rep := report.Build(art.Scan, art.Card, art.Verdict, art.Manifest)
	plan := planner.Build(art.Scan)
	report.RenderConsole(os.Stdout, rep, plan, report.ConsoleOptions{
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

	if scanHasFailures(art) {
		exitFunc(setup.ExitFailed)
	}
	return nil
}

func scanHasFailures(art *scanArtifacts) bool {
	for _, result := range art.Scan.Results {
		if result.Status == model.StatusFail {
			return true
		}
	}
	return art.Verdict != nil && art.Verdict.Status == model.StatusFail
}
