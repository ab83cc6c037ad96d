package setup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
)

func boolPtr(b bool) *bool { return &b }

func planFromActions(actions ...model.Action) *planner.Plan {
	scan := &engine.Scan{Results: []model.CheckResult{{
		ID: "toolchain.tools", Phase: 1, Status: model.StatusFail, Actions: actions,
	}}}
	return planner.Build(scan)
}

type recordingRunner struct {
	commands []string
	failOn   map[string]error
}

func (r *recordingRunner) run(_ context.Context, command string) error {
	r.commands = append(r.commands, command)
	if err, ok := r.failOn[command]; ok {
		return err
	}
	return nil
}

func TestExecuteDryRunPreviewsWithoutSideEffects(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "git.install", Kind: model.ActionAutomated, Command: "winget install Git.Git"},
	), "")

	exec := NewExecutor(store, Options{Apply: false, Runner: runner.run, Elevated: boolPtr(false)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Empty(t, runner.commands)
	require.Equal(t, StepDone, state.Steps[0].State)
	require.Equal(t, "dry-run preview", state.Steps[0].Detail)
}

func TestExecuteApplyRunsInOrder(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "a", Kind: model.ActionAutomated, Command: "cmd-a"},
		model.Action{Key: "b", Kind: model.ActionAutomated, Command: "cmd-b"},
	), "")

	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(true)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Equal(t, []string{"cmd-a", "cmd-b"}, runner.commands)
}

func TestExecuteFailedAutomatedHaltsLaterSteps(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{failOn: map[string]error{"cmd-a": errors.New("installer exit 1")}}
	state := NewState(planFromActions(
		model.Action{Key: "a", Kind: model.ActionAutomated, Command: "cmd-a"},
		model.Action{Key: "b", Kind: model.ActionAutomated, Command: "cmd-b"},
	), "")

	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(true)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitFailed, out.ExitCode)
	require.Equal(t, []string{"cmd-a"}, runner.commands)
	require.Equal(t, StepFailed, state.Steps[0].State)
	require.Equal(t, StepPlanned, state.Steps[1].State)
}

func TestExecuteGuidedBecomesBlockedEvenInApply(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "manual", Kind: model.ActionGuided, Command: "open installer UI"},
		model.Action{Key: "auto", Kind: model.ActionAutomated, Command: "cmd-auto"},
	), "")

	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(true)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	// Guided steps block themselves but do not halt automated ones.
	require.Equal(t, ExitFailed, out.ExitCode)
	require.Equal(t, StepBlocked, state.Steps[0].State)
	require.Equal(t, StepDone, state.Steps[1].State)
	require.Equal(t, []string{"cmd-auto"}, runner.commands)
}

func TestExecuteElevationGateExitsThree(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "cmake.install", Kind: model.ActionAutomated, Command: "winget install Kitware.CMake", RequiresElevation: true},
	), "")

	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(false)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitElevation, out.ExitCode)
	require.Empty(t, runner.commands)
	require.Equal(t, StepWaitingForElevation, state.Steps[0].State)
	require.Contains(t, out.Message, "--resume")

	// State survives the stop so an elevated resume continues here.
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, StepWaitingForElevation, loaded.Steps[0].State)
}

func TestExecuteResumeSkipsDoneAndContinuesElevated(t *testing.T) {
	store := testStore(t)
	plan := planFromActions(
		model.Action{Key: "a", Kind: model.ActionAutomated, Command: "cmd-a"},
		model.Action{Key: "b", Kind: model.ActionAutomated, Command: "cmd-b", RequiresElevation: true},
		model.Action{Key: "c", Kind: model.ActionAutomated, Command: "cmd-c"},
	)

	runner := &recordingRunner{}
	state := NewState(plan, "")
	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(false)})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitElevation, out.ExitCode)
	require.Equal(t, []string{"cmd-a"}, runner.commands)

	resumed := Reconcile(store, plan, "", true)
	require.Equal(t, StepDone, resumed.Steps[0].State)
	require.Equal(t, StepWaitingForElevation, resumed.Steps[1].State)

	elevatedRunner := &recordingRunner{}
	elevatedExec := NewExecutor(store, Options{Apply: true, Runner: elevatedRunner.run, Elevated: boolPtr(true)})
	out, err = elevatedExec.Execute(context.Background(), resumed)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Equal(t, []string{"cmd-b", "cmd-c"}, elevatedRunner.commands)
}

func TestExecuteResumeStartsAtFirstPlannedStep(t *testing.T) {
	store := testStore(t)
	plan := planFromActions(
		model.Action{Key: "a", Kind: model.ActionAutomated, Command: "cmd-a"},
		model.Action{Key: "b", Kind: model.ActionAutomated, Command: "cmd-b"},
		model.Action{Key: "c", Kind: model.ActionAutomated, Command: "cmd-c"},
		model.Action{Key: "d", Kind: model.ActionAutomated, Command: "cmd-d"},
	)
	state := NewState(plan, "")
	for i := 0; i < 2; i++ {
		require.NoError(t, state.Transition(i, StepInProgress, ""))
		require.NoError(t, state.Transition(i, StepDone, ""))
	}
	require.NoError(t, store.Save(state))

	runner := &recordingRunner{}
	exec := NewExecutor(store, Options{Apply: true, Runner: runner.run, Elevated: boolPtr(true)})
	resumed := Reconcile(store, plan, "", true)
	out, err := exec.Execute(context.Background(), resumed)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Equal(t, []string{"cmd-c", "cmd-d"}, runner.commands)
}

func TestExecuteMutatorStepRunsInProcess(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "ddc.shared", Kind: model.ActionAutomated, Command: "uecfg fix --phase 3 --apply"},
	), "")

	exec := NewExecutor(store, Options{
		Apply:    true,
		Runner:   runner.run,
		Elevated: boolPtr(true),
		Mutators: map[string]MutationFunc{
			"ddc.shared": func(context.Context, bool) (string, error) { return "no changes", nil },
		},
	})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Empty(t, runner.commands)
	require.Equal(t, StepDone, state.Steps[0].State)
	require.Equal(t, "no changes", state.Steps[0].Detail)
}

func TestExecuteMutatorFailureHalts(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "ddc.shared", Kind: model.ActionAutomated, Command: "uecfg fix --phase 3 --apply"},
		model.Action{Key: "later", Kind: model.ActionAutomated, Command: "cmd-later"},
	), "")

	exec := NewExecutor(store, Options{
		Apply:    true,
		Runner:   runner.run,
		Elevated: boolPtr(true),
		Mutators: map[string]MutationFunc{
			"ddc.shared": func(context.Context, bool) (string, error) {
				return "", errors.New("backup failed: disk full")
			},
		},
	})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitFailed, out.ExitCode)
	require.Empty(t, runner.commands)
	require.Equal(t, StepFailed, state.Steps[0].State)
	require.Equal(t, StepPlanned, state.Steps[1].State)
}

func TestExecuteDryRunProposesMutationWithoutWriting(t *testing.T) {
	store := testStore(t)
	runner := &recordingRunner{}
	state := NewState(planFromActions(
		model.Action{Key: "ddc.shared", Kind: model.ActionAutomated, Command: "uecfg fix --phase 3 --apply"},
	), "")

	var applied []bool
	exec := NewExecutor(store, Options{
		Apply:  false,
		Runner: runner.run,
		Mutators: map[string]MutationFunc{
			"ddc.shared": func(_ context.Context, apply bool) (string, error) {
				applied = append(applied, apply)
				return "-Shared=old\n+Shared=new", nil
			},
		},
	})
	out, err := exec.Execute(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, ExitOK, out.ExitCode)
	require.Equal(t, []bool{false}, applied)
	require.Empty(t, runner.commands)
	require.Equal(t, StepDone, state.Steps[0].State)
	require.Equal(t, "dry-run preview", state.Steps[0].Detail)
}
