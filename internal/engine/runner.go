// Package engine executes probe scans and aggregates their results into
// readiness scores and compliance verdicts.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/probe"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

const (
	// DefaultProbeTimeout bounds a single probe's execution.
	DefaultProbeTimeout = 30 * time.Second
	// DefaultWorkers bounds concurrent probe execution. Probes spawn
	// external tools, so the pool stays small.
	DefaultWorkers = 4
)

// ScanOptions selects what a scan covers.
type ScanOptions struct {
	Phases       []model.Phase
	Profile      profile.Profile
	ProbeTimeout time.Duration
	Workers      int
}

// Scan is the complete output of one scan invocation. Results are always
// in phase-then-registration order regardless of completion order, and
// no partial output is ever discarded: N/A synthesis included.
type Scan struct {
	Profile             profile.Profile
	Applicability       map[model.Phase]profile.Applicability
	Results             []model.CheckResult
	DetectedComponents  map[string]string
	ManifestFingerprint string
	GeneratedAt         time.Time
}

// ResultsForPhase filters results belonging to one phase, order preserved.
func (s *Scan) ResultsForPhase(phase model.Phase) []model.CheckResult {
	var out []model.CheckResult
	for _, r := range s.Results {
		if r.Phase == phase {
			out = append(out, r)
		}
	}
	return out
}

// Phases lists the phases present in the scan, ascending.
func (s *Scan) Phases() []model.Phase {
	seen := map[model.Phase]bool{}
	var out []model.Phase
	for _, r := range s.Results {
		if !seen[r.Phase] {
			seen[r.Phase] = true
			out = append(out, r.Phase)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Run executes every registered probe for the applicable phases. Probes
// within the selection run on a bounded worker pool; a probe that exceeds
// the timeout yields a FAIL result with the timeout as evidence and the
// scan proceeds. Phases the profile marks NOT_APPLICABLE are synthesized
// as a single N/A result without invoking probes.
func Run(ctx context.Context, registry *probe.Registry, pc *probe.Context, opts ScanOptions) *Scan {
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	hasRoot := pc.EngineRoot != ""
	applicability := make(map[model.Phase]profile.Applicability)
	var probePhases []model.Phase
	var skipped []model.Phase
	for _, phase := range normalizePhases(opts.Phases) {
		mode := opts.Profile.PhaseMode(phase, hasRoot)
		applicability[phase] = mode
		if mode == profile.NotApplicable {
			skipped = append(skipped, phase)
			continue
		}
		probePhases = append(probePhases, phase)
	}

	probes := registry.ForPhases(probePhases)
	results := make([]model.CheckResult, len(probes))
	pool := make(chan struct{}, workers)
	done := make(chan int)

	for i, p := range probes {
		go func(idx int, p probe.Probe) {
			pool <- struct{}{}
			defer func() { <-pool }()
			results[idx] = evaluateBounded(ctx, p, pc, timeout)
			done <- idx
		}(i, p)
	}
	for range probes {
		<-done
	}

	for _, phase := range skipped {
		results = append(results, model.CheckResult{
			ID:       fmt.Sprintf("phase%d.not-applicable", phase),
			Phase:    phase,
			Status:   model.StatusNA,
			Title:    model.PhaseNames[phase],
			Evidence: []string{fmt.Sprintf("phase excluded by profile %s", opts.Profile)},
		})
	}

	// Completion order is nondeterministic; present phase-then-registration.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Phase < results[j].Phase })

	scan := &Scan{
		Profile:            opts.Profile,
		Applicability:      applicability,
		Results:            results,
		DetectedComponents: pc.DetectedComponents(),
		GeneratedAt:        time.Now().UTC(),
	}
	if pc.Manifest != nil {
		scan.ManifestFingerprint = pc.Manifest.Fingerprint
	}
	return scan
}

// evaluateBounded runs one probe under its own deadline. Probe failure
// degrades one check, never the whole scan: timeouts and panics become
// FAIL results with evidence.
func evaluateBounded(ctx context.Context, p probe.Probe, pc *probe.Context, timeout time.Duration) model.CheckResult {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result model.CheckResult
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := uecfgerrors.NewProbeError(p.ID(), fmt.Errorf("panicked: %v", r))
				ch <- outcome{model.CheckResult{
					ID:          p.ID(),
					Phase:       p.Phase(),
					Status:      model.StatusFail,
					Title:       p.ID(),
					Evidence:    []string{err.Error()},
					Remediation: "Re-run the scan; report this probe if it keeps failing.",
				}}
			}
		}()
		ch <- outcome{p.Evaluate(probeCtx, pc)}
	}()

	select {
	case out := <-ch:
		return out.result
	case <-probeCtx.Done():
		err := uecfgerrors.NewProbeError(p.ID(), fmt.Errorf("timed out after %s", timeout))
		return model.CheckResult{
			ID:          p.ID(),
			Phase:       p.Phase(),
			Status:      model.StatusFail,
			Title:       p.ID(),
			Evidence:    []string{err.Error()},
			Remediation: "The underlying tool did not respond; re-run with --verbose to investigate.",
		}
	}
}

func normalizePhases(phases []model.Phase) []model.Phase {
	seen := map[model.Phase]bool{}
	var out []model.Phase
	for _, phase := range phases {
		if phase.Valid() && !seen[phase] {
			seen[phase] = true
			out = append(out, phase)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
