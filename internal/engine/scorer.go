package engine

import (
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
)

// PhaseScore is the weighted readiness of one phase, 0-100.
type PhaseScore struct {
	Phase         model.Phase
	Applicability profile.Applicability
	Score         float64
	Counted       int
}

// Scorecard aggregates phase scores into the overall readiness verdict.
type Scorecard struct {
	Phases  []PhaseScore
	Overall float64
}

// PhaseScoreFor returns the entry for one phase, if present.
func (s Scorecard) PhaseScoreFor(phase model.Phase) (PhaseScore, bool) {
	for _, ps := range s.Phases {
		if ps.Phase == phase {
			return ps, true
		}
	}
	return PhaseScore{}, false
}

// ScoreScan computes per-phase and overall readiness. A PASS contributes
// its full weight, a WARN half, and N/A results are excluded from the
// denominator entirely. The overall score is the unweighted mean of
// applicable phase scores; phases with no scored results contribute
// nothing. Result order within a phase does not affect any score.
func ScoreScan(scan *Scan) Scorecard {
	card := Scorecard{}
	applicableSum := 0.0
	applicableCount := 0

	for _, phase := range scan.Phases() {
		numerator := 0.0
		denominator := 0.0
		counted := 0
		for _, result := range scan.ResultsForPhase(phase) {
			if !result.Scored() {
				continue
			}
			weight := result.EffectiveWeight()
			denominator += weight
			counted++
			switch result.Status {
			case model.StatusPass:
				numerator += weight
			case model.StatusWarn:
				numerator += 0.5 * weight
			}
		}

		ps := PhaseScore{
			Phase:         phase,
			Applicability: scan.Applicability[phase],
			Counted:       counted,
		}
		if denominator > 0 {
			ps.Score = numerator / denominator * 100
		}
		card.Phases = append(card.Phases, ps)

		if ps.Applicability != profile.NotApplicable && counted > 0 {
			applicableSum += ps.Score
			applicableCount++
		}
	}

	if applicableCount > 0 {
		card.Overall = applicableSum / float64(applicableCount)
	}
	return card
}
