// Package setup persists remediation progress and executes planned
// actions under the guarded dry-run/apply discipline.
package setup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/logger"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/planner"
	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

// StateFileName is the default on-disk name for persisted setup state.
const StateFileName = ".uecfg_state.json"

const stateSchema = 1

// StepState is the lifecycle position of one Step.
type StepState string

const (
	StepPlanned             StepState = "PLANNED"
	StepInProgress          StepState = "IN_PROGRESS"
	StepWaitingForElevation StepState = "WAITING_FOR_ELEVATION"
	StepBlocked             StepState = "BLOCKED"
	StepDone                StepState = "DONE"
	StepFailed              StepState = "FAILED"
)

// Terminal reports whether the state admits no further transitions
// within a run. BLOCKED clears only through a fresh scan and plan.
func (s StepState) Terminal() bool {
	return s == StepDone || s == StepFailed || s == StepBlocked
}

// allowedTransitions encodes the step lifecycle. Transitions are
// monotonic with one exception: WAITING_FOR_ELEVATION returns to
// IN_PROGRESS when a resumed invocation carries elevation.
var allowedTransitions = map[StepState][]StepState{
	StepPlanned:             {StepInProgress},
	StepInProgress:          {StepDone, StepFailed, StepWaitingForElevation, StepBlocked},
	StepWaitingForElevation: {StepInProgress},
}

// Step is one planned action plus its persisted execution state.
type Step struct {
	ID        string       `json:"id"`
	Phase     model.Phase  `json:"phase"`
	Action    model.Action `json:"action"`
	SourceID  string       `json:"sourceId"`
	State     StepState    `json:"state"`
	Detail    string       `json:"detail,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// State is the persisted record of one remediation run, keyed by the
// plan hash. It is the single source of truth for resume.
type State struct {
	Schema    int       `json:"schemaVersion"`
	PlanHash  string    `json:"planHash"`
	LogPath   string    `json:"logPath,omitempty"`
	Steps     []Step    `json:"steps"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewState builds a fresh state from a plan, every step PLANNED.
func NewState(plan *planner.Plan, logPath string) *State {
	now := time.Now().UTC()
	state := &State{
		Schema:    stateSchema,
		PlanHash:  plan.Hash(),
		LogPath:   logPath,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, item := range plan.Items {
		state.Steps = append(state.Steps, Step{
			ID:        item.Action.Key,
			Phase:     item.Phase,
			Action:    item.Action,
			SourceID:  item.SourceID,
			State:     StepPlanned,
			UpdatedAt: now,
		})
	}
	return state
}

// Transition moves one step to a new state, enforcing the lifecycle.
func (s *State) Transition(index int, to StepState, detail string) error {
	if index < 0 || index >= len(s.Steps) {
		return fmt.Errorf("step index %d out of range", index)
	}
	step := &s.Steps[index]
	for _, next := range allowedTransitions[step.State] {
		if next == to {
			now := time.Now().UTC()
			step.State = to
			step.Detail = detail
			step.UpdatedAt = now
			s.UpdatedAt = now
			return nil
		}
	}
	return fmt.Errorf("step %s: invalid transition %s -> %s", step.ID, step.State, to)
}

// Remaining reports how many steps have not reached a terminal state.
func (s *State) Remaining() int {
	n := 0
	for _, step := range s.Steps {
		if !step.State.Terminal() {
			n++
		}
	}
	return n
}

// CountByState tallies steps per state for display.
func (s *State) CountByState() map[StepState]int {
	out := map[StepState]int{}
	for _, step := range s.Steps {
		out[step.State]++
	}
	return out
}

// Store reads and rewrites the state file. The file is replaced whole
// after every transition, so a crash loses at most the in-flight step.
type Store struct {
	path string
	log  *logger.Logger
}

// NewStore creates a store for the given path, defaulting the file
// name when given a directory.
func NewStore(path string, log *logger.Logger) *Store {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, StateFileName)
	}
	return &Store{path: path, log: log}
}

// Path returns the backing file path.
func (st *Store) Path() string { return st.path }

// Load reads the persisted state. A missing file is not an error; a
// corrupt one is reported as a state error so the caller can discard
// it and start from a fresh plan.
func (st *Store) Load() (*State, error) {
	raw, err := os.ReadFile(st.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, uecfgerrors.NewStateError(st.path, err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, uecfgerrors.NewStateError(st.path, err)
	}
	if state.Schema != stateSchema {
		return nil, uecfgerrors.NewStateError(st.path, fmt.Errorf("unsupported schema version %d", state.Schema))
	}
	return &state, nil
}

// Save rewrites the state file atomically.
func (st *Store) Save(state *State) error {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return uecfgerrors.NewStateError(st.path, err)
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return uecfgerrors.NewStateError(st.path, err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return uecfgerrors.NewStateError(st.path, err)
	}
	return nil
}

// Discard removes the state file if present.
func (st *Store) Discard() error {
	err := os.Remove(st.path)
	if err != nil && !os.IsNotExist(err) {
		return uecfgerrors.NewStateError(st.path, err)
	}
	return nil
}

// Reconcile decides which state a run starts from. A prior state is
// reused only when --resume was passed and its plan hash matches the
// current plan; any other combination supersedes it with a fresh state.
// A corrupt prior state is discarded with a warning, since no step can
// be assumed complete.
func Reconcile(store *Store, plan *planner.Plan, logPath string, resume bool) *State {
	prior, err := store.Load()
	if err != nil {
		if store.log != nil {
			store.log.Warn(fmt.Sprintf("discarding unreadable state file %s; no steps assumed complete", store.path))
		}
		_ = store.Discard()
		return NewState(plan, logPath)
	}
	if prior == nil {
		return NewState(plan, logPath)
	}
	if !resume {
		return NewState(plan, logPath)
	}
	if prior.PlanHash != plan.Hash() {
		if store.log != nil {
			store.log.Warn("plan changed since last run; previous progress superseded")
		}
		return NewState(plan, logPath)
	}
	// An interrupted step persists as IN_PROGRESS with unknown outcome;
	// rewind it so the executor re-verifies it.
	for i := range prior.Steps {
		if prior.Steps[i].State == StepInProgress {
			prior.Steps[i].State = StepPlanned
			prior.Steps[i].Detail = "rewound after interrupt"
		}
	}
	if logPath != "" {
		prior.LogPath = logPath
	}
	return prior
}
