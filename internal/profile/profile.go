// Package profile defines machine profiles and their per-phase
// applicability policy.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Profile names an applicability policy mapping each phase to a mode.
type Profile string

const (
	// Workstation is the default developer machine profile.
	Workstation Profile = "workstation"
	// Agent is the CI/build-agent profile; distributed-build readiness
	// matters more there.
	Agent Profile = "agent"
	// Minimal audits only the baseline with the toolchain as optional.
	Minimal Profile = "minimal"
)

// EnvVar overrides the default profile when no --profile flag is given.
const EnvVar = "UECFG_PROFILE"

// Applicability is the per-phase mode a profile assigns.
type Applicability string

const (
	// Required phases count toward the overall score and gate readiness.
	Required Applicability = "REQUIRED"
	// Optional phases count toward the score when probed but do not gate.
	Optional Applicability = "OPTIONAL"
	// NotApplicable phases are synthesized as a single N/A result and
	// excluded from the overall score.
	NotApplicable Applicability = "NOT_APPLICABLE"
)

// All lists the defined profiles.
func All() []Profile {
	return []Profile{Workstation, Agent, Minimal}
}

// Parse resolves a profile from flag value, then environment, then the
// workstation default. Unknown names are an error.
func Parse(value string) (Profile, error) {
	raw := strings.ToLower(strings.TrimSpace(value))
	if raw == "" {
		raw = strings.ToLower(strings.TrimSpace(os.Getenv(EnvVar)))
	}
	if raw == "" {
		return Workstation, nil
	}
	for _, p := range All() {
		if string(p) == raw {
			return p, nil
		}
	}
	return Workstation, fmt.Errorf("unknown profile %q (expected workstation, agent, or minimal)", raw)
}

// PhaseMode returns the applicability of the given phase under p.
// hasEngineRoot loosens source-tree requirements when no tree was given.
func (p Profile) PhaseMode(phase model.Phase, hasEngineRoot bool) Applicability {
	switch p {
	case Minimal:
		switch phase {
		case model.PhaseBaseline:
			return Required
		case model.PhaseToolchain:
			return Optional
		default:
			return NotApplicable
		}
	case Agent:
		switch phase {
		case model.PhaseBaseline, model.PhaseToolchain:
			return Required
		case model.PhaseSourceTree:
			if hasEngineRoot {
				return Required
			}
			return NotApplicable
		default:
			return Optional
		}
	default: // Workstation
		if phase == model.PhaseDistributed {
			return Optional
		}
		return Required
	}
}

// DefaultPhases lists the phases a scan covers when none are requested.
func (p Profile) DefaultPhases() []model.Phase {
	switch p {
	case Agent, Minimal:
		return []model.Phase{model.PhaseBaseline, model.PhaseToolchain, model.PhaseSourceTree, model.PhaseDistributed}
	default:
		return []model.Phase{model.PhaseBaseline, model.PhaseToolchain, model.PhaseSourceTree}
	}
}
