package probe

import (
	"context"
	"sort"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Probe is a single read-only system check. Implementations may read the
// system (files, registry, external tools via the Context) but must never
// write persisted state. A probe that cannot determine an answer returns
// WARN or FAIL with evidence explaining why; it never returns an error.
type Probe interface {
	ID() string
	Phase() model.Phase
	Evaluate(ctx context.Context, pc *Context) model.CheckResult
}

// Registry is the closed, statically populated set of probes. Iteration
// order is phases ascending, registration order within a phase, so scan
// output is deterministic.
type Registry struct {
	byPhase map[model.Phase][]Probe
}

// NewRegistry builds a registry from the given probes, preserving their
// relative order within each phase.
func NewRegistry(probes ...Probe) *Registry {
	r := &Registry{byPhase: make(map[model.Phase][]Probe)}
	for _, p := range probes {
		r.byPhase[p.Phase()] = append(r.byPhase[p.Phase()], p)
	}
	return r
}

// DefaultRegistry returns the full built-in probe table.
func DefaultRegistry() *Registry {
	return NewRegistry(
		// Phase 0: OS and baseline
		&osVersionProbe{},
		&gitProbe{},
		&diskSpaceProbe{},
		&hardwareProbe{},
		// Phase 1: toolchain
		&visualStudioProbe{},
		&msvcProbe{},
		&windowsSDKProbe{},
		&dotnetProbe{},
		&cmakeNinjaProbe{},
		&manifestExtrasProbe{},
		// Phase 2: source tree
		&engineRootProbe{},
		&setupScriptsProbe{},
		&sourceControlProbe{},
		&redistProbe{},
		&buildCommandsProbe{},
		// Phase 3: distributed build
		&hordeAgentProbe{},
		&networkProbe{},
		&buildConfigProbe{},
		&sharedDDCProbe{},
	)
}

// ForPhases returns registered probes for the selected phases, phases in
// ascending order, registration order within each phase.
func (r *Registry) ForPhases(phases []model.Phase) []Probe {
	selected := make([]model.Phase, 0, len(phases))
	seen := make(map[model.Phase]bool)
	for _, phase := range phases {
		if phase.Valid() && !seen[phase] {
			selected = append(selected, phase)
			seen[phase] = true
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	var out []Probe
	for _, phase := range selected {
		out = append(out, r.byPhase[phase]...)
	}
	return out
}

// Phases lists the phases that have at least one registered probe.
func (r *Registry) Phases() []model.Phase {
	out := make([]model.Phase, 0, len(r.byPhase))
	for phase := range r.byPhase {
		out = append(out, phase)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
