package engine

import (
	"fmt"
	"sort"

	goversion "github.com/hashicorp/go-version"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/probe"
)

// ComplianceVerdict judges detected toolchain versions against a manifest
// independently of the numeric readiness score.
type ComplianceVerdict struct {
	Status model.Status
	// Details names each checked component with its outcome.
	Details []string
	// Remediation names the specific mismatched components.
	Remediation string
}

// Compliance compares the scan's detected component versions against the
// manifest pins. Exact or better matches PASS; a detected version below
// the pin but within the same major line WARNs; anything else FAILs with
// the mismatched component named. It never alters the readiness score.
func Compliance(scan *Scan, m *manifest.Manifest) *ComplianceVerdict {
	if m == nil {
		return nil
	}

	verdict := &ComplianceVerdict{Status: model.StatusPass}
	var mismatches []string

	judge := func(component, label, required string, requiredMajor int) {
		detected, ok := scan.DetectedComponents[component]
		if !ok {
			verdict.downgrade(model.StatusFail)
			verdict.Details = append(verdict.Details, fmt.Sprintf("%s: not detected (required %s)", label, required))
			mismatches = append(mismatches, fmt.Sprintf("%s %s+ (not detected)", label, required))
			return
		}
		status := compareVersions(detected, required, requiredMajor)
		verdict.downgrade(status)
		switch status {
		case model.StatusPass:
			verdict.Details = append(verdict.Details, fmt.Sprintf("%s: %s satisfies %s", label, detected, required))
		case model.StatusWarn:
			verdict.Details = append(verdict.Details, fmt.Sprintf("%s: %s below pin %s (same major line)", label, detected, required))
			mismatches = append(mismatches, fmt.Sprintf("%s %s+ (detected %s)", label, required, detected))
		default:
			verdict.Details = append(verdict.Details, fmt.Sprintf("%s: %s does not satisfy %s", label, detected, required))
			mismatches = append(mismatches, fmt.Sprintf("%s %s+ (detected %s)", label, required, detected))
		}
	}

	if m.VisualStudio.MinVersion != "" {
		judge(probe.ComponentVisualStudio, "Visual Studio", m.VisualStudio.MinVersion, m.VisualStudio.RequiredMajor)
	}
	if m.MSVC.ToolsetFamily != "" {
		judge(probe.ComponentMSVC, "MSVC toolset", m.MSVC.ToolsetFamily, 0)
	}
	if m.WindowsSDK.MinimumVersion != "" {
		judge(probe.ComponentWindowsSDK, "Windows SDK", m.WindowsSDK.MinimumVersion, 0)
	}

	names := make([]string, 0, len(m.Extras))
	for name := range m.Extras {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		req := m.Extras[name]
		if req.MinVersion == "" || !req.Required {
			continue
		}
		judge(name, req.Name, req.MinVersion, 0)
	}

	if len(mismatches) > 0 {
		verdict.Remediation = "Update " + joinAnd(mismatches)
	}
	return verdict
}

// compareVersions maps detected-vs-required onto the compliance bands:
// at or above the pin is PASS, below the pin within the same major line
// is WARN, a different major line (or unparseable evidence) is FAIL.
func compareVersions(detected, required string, requiredMajor int) model.Status {
	dv, err := goversion.NewVersion(detected)
	if err != nil {
		return model.StatusFail
	}
	rv, err := goversion.NewVersion(required)
	if err != nil {
		return model.StatusFail
	}

	major := rv.Segments()[0]
	if requiredMajor > 0 {
		major = requiredMajor
	}
	if dv.Segments()[0] != major {
		return model.StatusFail
	}
	if dv.GreaterThanOrEqual(rv) {
		return model.StatusPass
	}
	return model.StatusWarn
}

func (v *ComplianceVerdict) downgrade(status model.Status) {
	rank := map[model.Status]int{model.StatusPass: 0, model.StatusWarn: 1, model.StatusFail: 2}
	if rank[status] > rank[v.Status] {
		v.Status = status
	}
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		out := items[0]
		for _, item := range items[1:] {
			out += ", " + item
		}
		return out
	}
}
