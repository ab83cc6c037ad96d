package model

// Status is the outcome of a single readiness check.
type Status string

const (
	// StatusPass indicates the check is fully satisfied.
	StatusPass Status = "PASS"
	// StatusWarn indicates a usable but not ideal state; it contributes
	// half weight to the readiness score.
	StatusWarn Status = "WARN"
	// StatusFail indicates the check is not satisfied.
	StatusFail Status = "FAIL"
	// StatusNA indicates the check does not apply; it never contributes
	// to a score denominator.
	StatusNA Status = "N/A"
)

// Phase identifies one of the four fixed audit stages. The set is closed
// and not user-extensible.
type Phase int

const (
	// PhaseBaseline covers the OS and hardware baseline.
	PhaseBaseline Phase = 0
	// PhaseToolchain covers compilers, SDKs, and build tools.
	PhaseToolchain Phase = 1
	// PhaseSourceTree covers source-tree and build completeness.
	PhaseSourceTree Phase = 2
	// PhaseDistributed covers optional distributed-build readiness.
	PhaseDistributed Phase = 3

	// PhaseCount is the number of defined phases.
	PhaseCount = 4
)

// PhaseNames maps each phase to its display name.
var PhaseNames = map[Phase]string{
	PhaseBaseline:    "Phase 0 — OS & baseline",
	PhaseToolchain:   "Phase 1 — Visual Studio & toolchain",
	PhaseSourceTree:  "Phase 2 — Unreal prerequisites",
	PhaseDistributed: "Phase 3 — Horde / UBA (optional)",
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseBaseline && p < PhaseCount
}

// ActionKind classifies how a remediation action may be executed.
type ActionKind string

const (
	// ActionAutomated actions run without user intervention in apply mode.
	ActionAutomated ActionKind = "AUTOMATED"
	// ActionGuided actions are surfaced with their exact command text but
	// never auto-executed; the user performs them manually.
	ActionGuided ActionKind = "GUIDED"
	// ActionBlocked actions cannot proceed until an external condition
	// changes (e.g. a missing source tree).
	ActionBlocked ActionKind = "BLOCKED"
)

// Action is one remediation suggestion attached to a check result.
type Action struct {
	// Key is the dedup identity, e.g. tool id plus target version.
	Key string `json:"key"`
	// Kind classifies execution policy for the action.
	Kind ActionKind `json:"kind"`
	// Title is a short human description of the action.
	Title string `json:"title"`
	// Command is the literal, displayable command the action would run.
	Command string `json:"command"`
	// RequiresElevation marks actions needing an elevated shell.
	RequiresElevation bool `json:"requiresElevation"`
}

// CheckResult is the value type every probe produces.
type CheckResult struct {
	ID          string   `json:"id"`
	Phase       Phase    `json:"phase"`
	Status      Status   `json:"status"`
	Title       string   `json:"title"`
	Evidence    []string `json:"evidence"`
	Remediation string   `json:"remediation,omitempty"`
	Actions     []Action `json:"actions,omitempty"`
	// Weight scales the result's contribution to the phase score.
	// Zero is treated as the default weight of 1.
	Weight float64 `json:"weight,omitempty"`
}

// EffectiveWeight returns the weight to use in scoring, defaulting to 1.
func (r CheckResult) EffectiveWeight() float64 {
	if r.Weight <= 0 {
		return 1
	}
	return r.Weight
}

// Scored reports whether the result participates in a score denominator.
func (r CheckResult) Scored() bool {
	return r.Status != StatusNA
}
