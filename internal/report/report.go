// Package report renders scan output for machines (stable JSON) and
// humans (styled console text).
package report

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/engine"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/profile"
)

// SchemaVersion identifies the JSON report layout for CI consumers.
const SchemaVersion = 1

// ManifestRef identifies the manifest a scan was judged against.
type ManifestRef struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Fingerprint string `json:"fingerprint"`
}

// ResultEntry is one check result in the report.
type ResultEntry struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	Evidence    []string `json:"evidence"`
	Remediation string   `json:"remediation,omitempty"`
}

// PhaseEntry groups one phase's results with its score.
type PhaseEntry struct {
	Phase         int           `json:"phase"`
	Name          string        `json:"name"`
	Applicability string        `json:"applicability"`
	Score         float64       `json:"score"`
	Results       []ResultEntry `json:"results"`
}

// ComplianceEntry is the manifest verdict in the report.
type ComplianceEntry struct {
	Status      string   `json:"status"`
	Details     []string `json:"details"`
	Remediation string   `json:"remediation,omitempty"`
}

// Report is the stable external representation of one scan. Field
// names form a contract with CI consumers and do not change without a
// schema version bump.
type Report struct {
	SchemaVersion     int               `json:"schemaVersion"`
	Profile           string            `json:"profile"`
	Manifest          *ManifestRef      `json:"manifest"`
	Phases            []PhaseEntry      `json:"phases"`
	OverallScore      float64           `json:"overallScore"`
	ComplianceVerdict *ComplianceEntry  `json:"complianceVerdict"`
	DetectedVersions  map[string]string `json:"detectedVersions,omitempty"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

// Build assembles the report from one scan and its derived verdicts.
// Manifest and compliance stay null when no manifest was in play.
func Build(scan *engine.Scan, card engine.Scorecard, verdict *engine.ComplianceVerdict, m *manifest.Manifest) *Report {
	rep := &Report{
		SchemaVersion:    SchemaVersion,
		Profile:          string(scan.Profile),
		OverallScore:     card.Overall,
		DetectedVersions: scan.DetectedComponents,
		GeneratedAt:      scan.GeneratedAt,
	}
	if m != nil {
		rep.Manifest = &ManifestRef{ID: m.ID, Version: m.EngineLine, Fingerprint: m.Fingerprint}
	}
	if verdict != nil {
		rep.ComplianceVerdict = &ComplianceEntry{
			Status:      string(verdict.Status),
			Details:     verdict.Details,
			Remediation: verdict.Remediation,
		}
	}

	for _, phase := range scan.Phases() {
		entry := PhaseEntry{
			Phase:         int(phase),
			Name:          model.PhaseNames[phase],
			Applicability: applicabilityString(scan.Applicability[phase]),
		}
		if ps, ok := card.PhaseScoreFor(phase); ok {
			entry.Score = ps.Score
		}
		for _, result := range scan.ResultsForPhase(phase) {
			entry.Results = append(entry.Results, ResultEntry{
				ID:          result.ID,
				Status:      string(result.Status),
				Evidence:    result.Evidence,
				Remediation: result.Remediation,
			})
		}
		rep.Phases = append(rep.Phases, entry)
	}
	return rep
}

// WriteJSON encodes the report to a writer.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// SaveJSON writes the report to a file.
func (r *Report) SaveJSON(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.WriteJSON(f)
}

func applicabilityString(a profile.Applicability) string {
	if a == "" {
		return string(profile.Required)
	}
	return string(a)
}
