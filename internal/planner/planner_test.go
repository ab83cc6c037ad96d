package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

func result(id string, phase model.Phase, status model.Status, actions ...model.Action) model.CheckResult {
	return model.CheckResult{ID: id, Phase: phase, Status: status, Title: id, Actions: actions}
}

func automated(key, command string) model.Action {
	return model.Action{Key: key, Kind: model.ActionAutomated, Title: key, Command: command}
}

func TestBuildCollectsFailAndWarnActions(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("os.git", 0, model.StatusFail, automated("git.install", "winget install Git.Git")),
		result("toolchain.cmake", 1, model.StatusPass),
		result("toolchain.ninja", 1, model.StatusFail, automated("ninja.install", "winget install Ninja-build.Ninja")),
		result("toolchain.dotnet", 1, model.StatusPass),
	}}

	plan := Build(scan)
	require.Equal(t, []string{"git.install", "ninja.install"}, plan.Keys())
}

func TestBuildFailuresBeforeWarningsWithinPhase(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("a", 1, model.StatusWarn, automated("warn.first", "w")),
		result("b", 1, model.StatusFail, automated("fail.second", "f")),
	}}

	plan := Build(scan)
	require.Equal(t, []string{"fail.second", "warn.first"}, plan.Keys())
}

func TestBuildDeduplicatesByKey(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("a", 0, model.StatusFail, automated("git.install", "winget install Git.Git")),
		result("b", 1, model.StatusFail, automated("git.install", "choco install git")),
	}}

	plan := Build(scan)
	require.Len(t, plan.Items, 1)
	require.Equal(t, model.Phase(0), plan.Items[0].Phase)
	require.Equal(t, "winget install Git.Git", plan.Items[0].Action.Command)
}

func TestBuildPhaseOrderBeforeStatusOrder(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("late", 2, model.StatusFail, automated("phase2.fail", "x")),
		result("early", 0, model.StatusWarn, automated("phase0.warn", "y")),
	}}

	plan := Build(scan)
	require.Equal(t, []string{"phase0.warn", "phase2.fail"}, plan.Keys())
}

func TestBuildEmptyWhenNothingActionable(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("a", 0, model.StatusPass),
		result("b", 1, model.StatusNA),
	}}
	require.True(t, Build(scan).Empty())
}

func TestHashStableAndContentSensitive(t *testing.T) {
	scan := &engine.Scan{
		ManifestFingerprint: "abc123",
		Results: []model.CheckResult{
			result("a", 0, model.StatusFail, automated("git.install", "winget install Git.Git")),
		},
	}

	first := Build(scan)
	second := Build(scan)
	require.Equal(t, first.Hash(), second.Hash())

	scan.ManifestFingerprint = "def456"
	require.NotEqual(t, first.Hash(), Build(scan).Hash())

	scan.ManifestFingerprint = "abc123"
	scan.Results[0].Actions[0].Command = "choco install git"
	require.NotEqual(t, first.Hash(), Build(scan).Hash())
}

func TestPhaseItemsFilters(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("a", 0, model.StatusFail, automated("k0", "x")),
		result("b", 1, model.StatusFail, automated("k1", "y")),
		result("c", 3, model.StatusFail, automated("k3", "z")),
	}}

	plan := Build(scan)
	items := plan.PhaseItems([]model.Phase{1, 3})
	require.Len(t, items, 2)
	require.Equal(t, "k1", items[0].Action.Key)
	require.Equal(t, "k3", items[1].Action.Key)
	require.Len(t, plan.PhaseItems(nil), 3)
}

func TestSummaryCountsKinds(t *testing.T) {
	scan := &engine.Scan{Results: []model.CheckResult{
		result("a", 0, model.StatusFail,
			automated("k0", "x"),
			model.Action{Key: "k1", Kind: model.ActionGuided, Title: "guided"},
		),
	}}

	summary := Build(scan).Summary()
	require.Equal(t, 1, summary[model.ActionAutomated])
	require.Equal(t, 1, summary[model.ActionGuided])
}
