// Package planner turns scan findings into an ordered, deduplicated
// action plan the setup executor can run.
package planner

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Item is one planned action together with the finding that produced it.
type Item struct {
	Action       model.Action `json:"action"`
	Phase        model.Phase  `json:"phase"`
	SourceID     string       `json:"source_id"`
	SourceStatus model.Status `json:"source_status"`
}

// Plan is the ordered set of remediation actions for one scan. Items
// appear at most once per action key, phases ascending, failures ahead
// of warnings within each phase.
type Plan struct {
	Items               []Item `json:"items"`
	ManifestFingerprint string `json:"manifest_fingerprint,omitempty"`
}

// Empty reports whether the plan has nothing to do.
func (p *Plan) Empty() bool { return len(p.Items) == 0 }

// Hash identifies the plan content. Two scans that produce the same
// actions against the same manifest share a hash, which is what lets a
// resumed setup recognize its saved state.
func (p *Plan) Hash() string {
	type hashItem struct {
		Key       string `json:"key"`
		Kind      string `json:"kind"`
		Command   string `json:"command"`
		Elevation bool   `json:"elevation"`
		Phase     int    `json:"phase"`
	}
	doc := struct {
		Items       []hashItem `json:"items"`
		Fingerprint string     `json:"fingerprint"`
	}{Fingerprint: p.ManifestFingerprint}
	for _, item := range p.Items {
		doc.Items = append(doc.Items, hashItem{
			Key:       item.Action.Key,
			Kind:      string(item.Action.Kind),
			Command:   item.Action.Command,
			Elevation: item.Action.RequiresElevation,
			Phase:     int(item.Phase),
		})
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		// The struct is marshal-safe; this path is unreachable.
		panic(fmt.Sprintf("plan hash: %v", err))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Build collects actions from every FAIL and WARN result in the scan.
// Within a phase, actions sourced from failures come before actions
// sourced from warnings, each group in scan order. A key that appears
// more than once keeps only its first occurrence, so a key shared
// across phases resolves to the lower phase.
func Build(scan *engine.Scan) *Plan {
	plan := &Plan{ManifestFingerprint: scan.ManifestFingerprint}

	var candidates []Item
	for _, phase := range scan.Phases() {
		results := scan.ResultsForPhase(phase)
		for _, wanted := range []model.Status{model.StatusFail, model.StatusWarn} {
			for _, result := range results {
				if result.Status != wanted {
					continue
				}
				for _, action := range result.Actions {
					candidates = append(candidates, Item{
						Action:       action,
						Phase:        phase,
						SourceID:     result.ID,
						SourceStatus: result.Status,
					})
				}
			}
		}
	}

	seen := map[string]bool{}
	for _, item := range candidates {
		if seen[item.Action.Key] {
			continue
		}
		seen[item.Action.Key] = true
		plan.Items = append(plan.Items, item)
	}
	return plan
}

// Keys lists the plan's action keys in execution order.
func (p *Plan) Keys() []string {
	keys := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		keys = append(keys, item.Action.Key)
	}
	return keys
}

// PhaseItems filters the plan down to the named phases, order preserved.
// An empty phase list returns the full plan.
func (p *Plan) PhaseItems(phases []model.Phase) []Item {
	if len(phases) == 0 {
		return p.Items
	}
	want := map[model.Phase]bool{}
	for _, phase := range phases {
		want[phase] = true
	}
	var out []Item
	for _, item := range p.Items {
		if want[item.Phase] {
			out = append(out, item)
		}
	}
	return out
}

// Summary counts plan items by kind for display.
func (p *Plan) Summary() map[model.ActionKind]int {
	out := map[model.ActionKind]int{}
	for _, item := range p.Items {
		out[item.Action.Kind]++
	}
	return out
}

// SortedKinds lists the kinds present in the plan in a stable order.
func (p *Plan) SortedKinds() []model.ActionKind {
	seen := map[model.ActionKind]bool{}
	var kinds []model.ActionKind
	for _, item := range p.Items {
		if !seen[item.Action.Kind] {
			seen[item.Action.Kind] = true
			kinds = append(kinds, item.Action.Kind)
		}
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
