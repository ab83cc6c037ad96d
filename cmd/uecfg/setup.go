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

type setupOptions struct {
	scanInputs
	PlanOnly     bool
	Apply        bool
	Resume       bool
	BuildEngine  bool
	BuildTargets []string
	NoColor      bool
}

var setupCmdRunner = runSetup

func newSetupCmd(root *rootFlags) *cobra.Command {
	opts := setupOptions{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Scan, plan and remediate end to end",
		Long: `Setup runs the full workflow: scan the applicable phases, turn the
findings into an ordered action plan, and execute it step by step with
progress persisted to ` + setup.StateFileName + `. A run interrupted by
an elevation requirement or a reboot continues with --resume without
repeating completed steps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			opts.Apply = applyRequested(cmd, opts.Apply, root.dryRun)
			if opts.PlanOnly && (opts.Apply || opts.Resume) {
				fmt.Fprintln(os.Stderr, "Error: --plan cannot be combined with --apply or --resume")
				exitFunc(setup.ExitUsage)
				return nil
			}
			return setupCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.PlanOnly, "plan", false, "Print the action plan and stop")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "Execute automated actions instead of previewing them")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "Continue a previous run, skipping completed steps")
	cmd.Flags().IntSliceVar(&opts.Phases, "phase", nil, "Limit to specific phases (repeatable, 0-3)")
	cmd.Flags().StringVar(&opts.UERoot, "ue-root", "", "Path to the engine source tree")
	cmd.Flags().StringVar(&opts.UEVersion, "ue-version", "", "Engine version line (e.g. 5.6)")
	cmd.Flags().StringVar(&opts.ManifestPath, "manifest", "", "Explicit manifest file")
	cmd.Flags().StringVar(&opts.ProfileName, "profile", "", "Machine profile: workstation, agent or minimal")
	cmd.Flags().BoolVar(&opts.IncludeHorde, "include-horde", false, "Include distributed-build readiness even when the profile skips it")
	cmd.Flags().BoolVar(&opts.BuildEngine, "build-engine", false, "Append an engine build step after remediation")
	cmd.Flags().StringSliceVar(&opts.BuildTargets, "build-target", nil, "Build targets to append (repeatable, implies --build-engine)")

	return cmd
}

func runSetup(ctx context.Context, opts setupOptions) error {
	opts.LogFile = setupLogPath()

	art, err := runScanPipeline(ctx, opts.scanInputs)
	if err != nil {
		return err
	}

	plan := planner.Build(art.Scan)
	appendBuildSteps(plan, opts)
	if plan.Empty() {
		fmt.Println("Nothing to do: the workstation already satisfies every applicable check.")
		return nil
	}

	if opts.PlanOnly {
		printPlan(plan, art, opts.NoColor)
		return nil
	}

	store := setup.NewStore(stateStorePath(opts.UERoot), art.Log)
	state := setup.Reconcile(store, plan, art.Log.FilePath(), opts.Resume)
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

// appendBuildSteps adds the optional engine build actions at the end
// of the plan, after every remediation action.
func appendBuildSteps(plan *planner.Plan, opts setupOptions) {
	if !opts.BuildEngine && len(opts.BuildTargets) == 0 {
		return
	}
	if opts.UERoot == "" {
		return
	}
	targets := opts.BuildTargets
	if len(targets) == 0 {
		targets = []string{"UnrealEditor"}
	}

	plan.Items = append(plan.Items, planner.Item{
		Action: model.Action{
			Key:     "build.generate-project-files",
			Kind:    model.ActionAutomated,
			Title:   "Generate project files",
			Command: buildScriptCommand(opts.UERoot, "GenerateProjectFiles"),
		},
		Phase:        model.PhaseSourceTree,
		SourceID:     "setup.build",
		SourceStatus: model.StatusWarn,
	})
	for _, target := range targets {
		plan.Items = append(plan.Items, planner.Item{
			Action: model.Action{
				Key:     "build.target." + target,
				Kind:    model.ActionAutomated,
				Title:   "Build " + target,
				Command: buildTargetCommand(opts.UERoot, target),
			},
			Phase:        model.PhaseSourceTree,
			SourceID:     "setup.build",
			SourceStatus: model.StatusWarn,
		})
	}
}

func printPlan(plan *planner.Plan, art *scanArtifacts, noColor bool) {
	rep := report.Build(art.Scan, art.Card, art.Verdict, art.Manifest)
	report.RenderConsole(os.Stdout, rep, plan, report.ConsoleOptions{NoColor: noColor})
	fmt.Printf("\nPlan %s: %d step(s)\n", plan.Hash()[:12], len(plan.Items))
}
