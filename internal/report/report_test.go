package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
)

func sampleScan() *engine.Scan {
	return &engine.Scan{
		Profile: profile.Workstation,
		Applicability: map[model.Phase]profile.Applicability{
			0: profile.Required,
			3: profile.NotApplicable,
		},
		Results: []model.CheckResult{
			{ID: "os.git", Phase: 0, Status: model.StatusFail, Title: "Git",
				Evidence:    []string{"git not found on PATH"},
				Remediation: "Install Git for Windows.",
				Actions: []model.Action{{
					Key: "git.install", Kind: model.ActionAutomated,
					Title: "Install Git", Command: "winget install Git.Git",
				}}},
			{ID: "os.version", Phase: 0, Status: model.StatusPass, Title: "OS",
				Evidence: []string{"Windows 11 Pro 23H2"}},
			{ID: "phase3.not-applicable", Phase: 3, Status: model.StatusNA, Title: "Distributed"},
		},
		DetectedComponents: map[string]string{"git": "2.44.0"},
		GeneratedAt:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestBuildReportShape(t *testing.T) {
	scan := sampleScan()
	card := engine.ScoreScan(scan)
	m := &manifest.Manifest{ID: "ue_5.6", EngineLine: "5.6", Fingerprint: "abc"}
	verdict := &engine.ComplianceVerdict{Status: model.StatusWarn, Remediation: "Update Visual Studio 17.8+ (detected 17.6)"}

	rep := Build(scan, card, verdict, m)
	require.Equal(t, SchemaVersion, rep.SchemaVersion)
	require.Equal(t, "workstation", rep.Profile)
	require.Equal(t, "ue_5.6", rep.Manifest.ID)
	require.Equal(t, "WARN", rep.ComplianceVerdict.Status)
	require.Len(t, rep.Phases, 2)
	require.Equal(t, "REQUIRED", rep.Phases[0].Applicability)
	require.Equal(t, "NOT_APPLICABLE", rep.Phases[1].Applicability)
	require.InDelta(t, 50.0, rep.Phases[0].Score, 0.001)
}

func TestBuildReportNullablesStayNull(t *testing.T) {
	scan := sampleScan()
	rep := Build(scan, engine.ScoreScan(scan), nil, nil)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Nil(t, decoded["manifest"])
	require.Nil(t, decoded["complianceVerdict"])
	require.Contains(t, decoded, "overallScore")
	require.Contains(t, decoded, "generatedAt")
}

func TestWriteJSONStableFieldNames(t *testing.T) {
	scan := sampleScan()
	rep := Build(scan, engine.ScoreScan(scan), nil, nil)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))
	out := buf.String()
	for _, field := range []string{
		`"schemaVersion"`, `"profile"`, `"phases"`, `"applicability"`,
		`"results"`, `"evidence"`, `"overallScore"`, `"generatedAt"`,
	} {
		require.Contains(t, out, field)
	}
}

func TestRenderConsolePlain(t *testing.T) {
	scan := sampleScan()
	card := engine.ScoreScan(scan)
	rep := Build(scan, card, nil, nil)
	plan := planner.Build(scan)

	var buf bytes.Buffer
	RenderConsole(&buf, rep, plan, ConsoleOptions{NoColor: true})
	out := buf.String()

	require.Contains(t, out, "Readiness audit (workstation profile)")
	require.Contains(t, out, "[FAIL] os.git")
	require.Contains(t, out, "git not found on PATH")
	require.Contains(t, out, "fix: Install Git for Windows.")
	require.Contains(t, out, "not applicable")
	require.Contains(t, out, "Next actions")
	require.Contains(t, out, "winget install Git.Git")
	require.Contains(t, out, "Detected toolchain")
	require.Contains(t, out, "2.44.0")
	// Passing checks keep their evidence quiet unless verbose.
	require.NotContains(t, out, "Windows 11 Pro 23H2")
}

func TestRenderConsoleVerboseShowsPassingEvidence(t *testing.T) {
	scan := sampleScan()
	rep := Build(scan, engine.ScoreScan(scan), nil, nil)

	var buf bytes.Buffer
	RenderConsole(&buf, rep, nil, ConsoleOptions{NoColor: true, Verbose: true})
	require.Contains(t, buf.String(), "Windows 11 Pro 23H2")
}

func TestRenderConsoleComplianceSection(t *testing.T) {
	scan := sampleScan()
	rep := Build(scan, engine.ScoreScan(scan), &engine.ComplianceVerdict{
		Status:      model.StatusWarn,
		Details:     []string{"Visual Studio: 17.6 below pin 17.8 (same major line)"},
		Remediation: "Update Visual Studio 17.8+ (detected 17.6)",
	}, &manifest.Manifest{ID: "ue_5.6", EngineLine: "5.6"})

	var buf bytes.Buffer
	RenderConsole(&buf, rep, nil, ConsoleOptions{NoColor: true})
	out := buf.String()
	require.Contains(t, out, "Compliance")
	require.Contains(t, out, "Update Visual Studio 17.8+ (detected 17.6)")
	require.True(t, strings.Contains(out, "manifest ue_5.6"))
}
