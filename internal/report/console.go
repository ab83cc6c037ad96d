package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
)

// ConsoleOptions control human-readable rendering.
type ConsoleOptions struct {
	// NoColor disables all styling, for pipes and CI logs.
	NoColor bool
	// Verbose includes evidence lines for passing checks too.
	Verbose bool
}

const scoreBarWidth = 20

type palette struct {
	pass    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	na      lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
}

func newPalette(noColor bool) palette {
	if noColor {
		plain := lipgloss.NewStyle()
		return palette{plain, plain, plain, plain, plain, plain}
	}
	return palette{
		pass:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		na:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		heading: lipgloss.NewStyle().Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

func (p palette) status(status string) string {
	switch status {
	case string(model.StatusPass):
		return p.pass.Render("PASS")
	case string(model.StatusWarn):
		return p.warn.Render("WARN")
	case string(model.StatusFail):
		return p.fail.Render("FAIL")
	default:
		return p.na.Render("N/A ")
	}
}

// RenderConsole writes the human-readable scan summary: per-phase
// results with evidence, score bars, the detected toolchain, the
// compliance verdict, and the next actions from the plan.
func RenderConsole(w io.Writer, rep *Report, plan *planner.Plan, opts ConsoleOptions) {
	p := newPalette(opts.NoColor)

	fmt.Fprintf(w, "%s\n", p.heading.Render(fmt.Sprintf("Readiness audit (%s profile)", rep.Profile)))
	if rep.Manifest != nil {
		fmt.Fprintf(w, "%s\n", p.dim.Render(fmt.Sprintf("manifest %s (UE %s)", rep.Manifest.ID, rep.Manifest.Version)))
	}
	fmt.Fprintln(w)

	for _, phase := range rep.Phases {
		if phase.Applicability == string(profile.NotApplicable) {
			fmt.Fprintf(w, "%s  %s\n\n", p.heading.Render(phase.Name), p.na.Render("not applicable"))
			continue
		}
		fmt.Fprintf(w, "%s  %s %.0f%%\n", p.heading.Render(phase.Name), scoreBar(phase.Score, p), phase.Score)
		for _, result := range phase.Results {
			fmt.Fprintf(w, "  [%s] %s\n", p.status(result.Status), result.ID)
			showEvidence := opts.Verbose || result.Status != string(model.StatusPass)
			if showEvidence {
				for _, line := range result.Evidence {
					fmt.Fprintf(w, "        %s\n", p.dim.Render(line))
				}
				if result.Remediation != "" {
					fmt.Fprintf(w, "        %s\n", p.dim.Render("fix: "+result.Remediation))
				}
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s  %s %.0f%%\n", p.heading.Render("Overall"), scoreBar(rep.OverallScore, p), rep.OverallScore)

	if rep.ComplianceVerdict != nil {
		fmt.Fprintf(w, "%s  [%s]\n", p.heading.Render("Compliance"), p.status(rep.ComplianceVerdict.Status))
		for _, line := range rep.ComplianceVerdict.Details {
			fmt.Fprintf(w, "  %s\n", p.dim.Render(line))
		}
		if rep.ComplianceVerdict.Remediation != "" {
			fmt.Fprintf(w, "  %s\n", rep.ComplianceVerdict.Remediation)
		}
	}

	if len(rep.DetectedVersions) > 0 {
		fmt.Fprintf(w, "\n%s\n", p.heading.Render("Detected toolchain"))
		names := make([]string, 0, len(rep.DetectedVersions))
		for name := range rep.DetectedVersions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-16s %s\n", name, rep.DetectedVersions[name])
		}
	}

	if plan != nil && !plan.Empty() {
		fmt.Fprintf(w, "\n%s\n", p.heading.Render("Next actions"))
		for _, item := range plan.Items {
			marker := p.warn.Render(string(item.Action.Kind))
			fmt.Fprintf(w, "  [%s] %s\n", marker, item.Action.Title)
			if item.Action.Command != "" {
				fmt.Fprintf(w, "        %s\n", p.dim.Render(item.Action.Command))
			}
		}
	}
}

func scoreBar(score float64, p palette) string {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	filled := int(score / 100 * scoreBarWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", scoreBarWidth-filled)
	style := p.fail
	switch {
	case score >= 90:
		style = p.pass
	case score >= 60:
		style = p.warn
	}
	return style.Render(bar)
}
