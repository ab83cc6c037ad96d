package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/setup"
)

type fixOptions struct {
	scanInputs
	Phase   int
	Apply   bool
	NoColor bool
}

var fixCmdRunner = runFix

func newFixCmd(root *rootFlags) *cobra.Command {
	opts := fixOptions{}

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Remediate one phase's findings",
		Long: `Fix re-scans a single phase, plans its remediation actions, and runs
them under the guarded executor. Without --apply every action is only
previewed. Automated actions needing elevation stop the run with exit
code 3 and a resume instruction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			opts.Apply = applyRequested(cmd, opts.Apply, root.dryRun)
			return fixCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.Phase, "phase", -1, "Phase to remediate (0-3)")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "Perform the actions instead of previewing them")
	cmd.Flags().StringVar(&opts.UERoot, "ue-root", "", "Path to the engine source tree")
	cmd.Flags().StringVar(&opts.UEVersion, "ue-version", "", "Engine version line (e.g. 5.6)")
	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "Explicit manifest file")
	cmd.Flags().StringVar(&opts.ProfileName, "profile", "", "Machine profile: workstation, agent or minimal")
	_ = cmd.MarkFlagRequired("phase")

	return cmd
}

func runFix(ctx context.Context, opts fixOptions) error {
	if !model.Phase(opts.Phase).Valid() {
		fmt.Fprintf(os.Stderr, "Error: --phase must be between 0 and %d\n", model.PhaseCount-1)
		exitFunc(setup.ExitUsage)
		return nil
	}
	opts.Phases = []int{opts.Phase}
	opts.LogFile = setupLogPath()

	art, err := runScanPipeline(ctx, opts.scanInputs)
	if err != nil {
		return err
	}

	plan := planner.Build(art.Scan)
	if plan.Empty() {
		fmt.Println("Nothing to fix: no failing or warning checks produced actions.")
		return nil
	}

	store := setup.NewStore(stateStorePath(opts.UERoot), art.Log)
	state := setup.Reconcile(store, plan, art.Log.FilePath(), false)
	if err := store.Save(state); err != nil {
		return err
	}

	executor := setup.NewExecutor(store, setup.Options{
		Apply:    opts.Apply,
		Logger:   art.Log,
		Mutators: buildMutators(art, opts.scanInputs),
	})
	outcome, err := executor.Execute(ctx, state)
	if err != nil {
		return err
	}
	printOutcome(outcome, opts.Apply)
	if outcome.ExitCode != setup.ExitOK {
		exitFunc(outcome.ExitCode)
	}
	return nil
}

func printOutcome(outcome *setup.Outcome, applied bool) {
	counts := outcome.State.CountByState()
	mode := "dry-run"
	if applied {
		mode = "apply"
	}
	fmt.Printf("%s: %d done, %d failed, %d blocked, %d waiting for elevation\n",
		mode,
		counts[setup.StepDone], counts[setup.StepFailed],
		counts[setup.StepBlocked], counts[setup.StepWaitingForElevation])
	if outcome.Message != "" {
		fmt.Println(outcome.Message)
	}
}
