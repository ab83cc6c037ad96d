package setup

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/logger"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

// Exit codes shared with the CLI surface.
const (
	ExitOK        = 0
	ExitFailed    = 1
	ExitUsage     = 2
	ExitElevation = 3
)

// DefaultCommandTimeout bounds one applied action.
const DefaultCommandTimeout = 15 * time.Minute

// CommandRunner executes one action command. Injected in tests.
type CommandRunner func(ctx context.Context, command string) error

// MutationFunc performs the in-process mutation for one step. With
// apply false it only proposes, returning the pending diff (or
// "no changes"); with apply true it writes and returns a short human
// detail.
type MutationFunc func(ctx context.Context, apply bool) (string, error)

// Options configures the guarded executor.
type Options struct {
	// Apply performs actions instead of previewing them.
	Apply bool
	// Elevated reports whether the process already holds elevated
	// privileges. Defaults to platform detection when nil.
	Elevated *bool
	// Runner overrides command execution. Defaults to a shell runner.
	Runner CommandRunner
	// Mutators map a step key to an in-process handler, used for config
	// file mutations that must go through the safe writer instead of a
	// shell command.
	Mutators map[string]MutationFunc
	// CommandTimeout bounds one applied command.
	CommandTimeout time.Duration
	Logger         *logger.Logger
}

// Outcome is the result of one executor run.
type Outcome struct {
	State    *State
	ExitCode int
	// Message carries the user-facing summary line, e.g. the resume
	// instruction after an elevation stop.
	Message string
}

// Executor walks a state's steps strictly in order, one at a time.
// In dry-run it previews each automated command and marks the step
// DONE without side effects. In apply mode an automated step that
// fails halts every later step, a guided step is surfaced and set to
// BLOCKED pending manual work, and an automated step needing elevation
// from a non-elevated shell stops the run with a resume instruction.
type Executor struct {
	store *Store
	opts  Options
	log   *logger.Logger
}

// NewExecutor wires an executor to its state store.
func NewExecutor(store *Store, opts Options) *Executor {
	if opts.Runner == nil {
		opts.Runner = shellRunner
	}
	if opts.CommandTimeout <= 0 {
		opts.CommandTimeout = DefaultCommandTimeout
	}
	return &Executor{store: store, opts: opts, log: opts.Logger}
}

// Execute runs the state's pending steps. The state file is rewritten
// after every transition so a crash loses at most the in-flight step.
func (e *Executor) Execute(ctx context.Context, state *State) (*Outcome, error) {
	elevated := e.elevated()
	halted := false

	for i := range state.Steps {
		step := &state.Steps[i]
		if step.State == StepDone || step.State == StepBlocked || step.State == StepFailed {
			continue
		}
		if halted {
			e.logStep(step, "skipped: earlier automated step failed")
			continue
		}

		if step.State == StepWaitingForElevation {
			if !e.opts.Apply || !elevated {
				msg := elevationMessage(step)
				return &Outcome{State: state, ExitCode: ExitElevation, Message: msg}, nil
			}
		}
		if err := e.advance(state, i, StepInProgress, ""); err != nil {
			return nil, err
		}

		switch step.Action.Kind {
		case model.ActionGuided:
			e.logStep(step, fmt.Sprintf("manual action required: %s", step.Action.Command))
			if err := e.advance(state, i, StepBlocked, "pending manual action: "+step.Action.Command); err != nil {
				return nil, err
			}

		case model.ActionBlocked:
			if err := e.advance(state, i, StepBlocked, step.Action.Title); err != nil {
				return nil, err
			}

		case model.ActionAutomated:
			if !e.opts.Apply {
				if fn, ok := e.opts.Mutators[step.ID]; ok {
					if preview, err := fn(ctx, false); err != nil {
						e.logStep(step, fmt.Sprintf("dry-run: preview unavailable: %v", err))
					} else {
						e.logStep(step, "dry-run: pending mutation:\n"+preview)
					}
				} else {
					e.logStep(step, fmt.Sprintf("dry-run: would execute %q", step.Action.Command))
				}
				if err := e.advance(state, i, StepDone, "dry-run preview"); err != nil {
					return nil, err
				}
				continue
			}
			if step.Action.RequiresElevation && !elevated {
				if err := e.advance(state, i, StepWaitingForElevation, "elevation required"); err != nil {
					return nil, err
				}
				msg := elevationMessage(step)
				e.logStep(step, msg)
				return &Outcome{State: state, ExitCode: ExitElevation, Message: msg}, nil
			}
			if fn, ok := e.opts.Mutators[step.ID]; ok {
				detail, err := fn(ctx, true)
				if err != nil {
					e.logStep(step, fmt.Sprintf("failed: %v", err))
					if err := e.advance(state, i, StepFailed, err.Error()); err != nil {
						return nil, err
					}
					halted = true
					continue
				}
				if err := e.advance(state, i, StepDone, detail); err != nil {
					return nil, err
				}
				continue
			}
			if err := e.run(ctx, step); err != nil {
				e.logStep(step, fmt.Sprintf("failed: %v", err))
				if err := e.advance(state, i, StepFailed, err.Error()); err != nil {
					return nil, err
				}
				halted = true
				continue
			}
			if err := e.advance(state, i, StepDone, ""); err != nil {
				return nil, err
			}
		}
	}

	outcome := &Outcome{State: state, ExitCode: ExitOK}
	counts := state.CountByState()
	if counts[StepFailed] > 0 || counts[StepBlocked] > 0 {
		outcome.ExitCode = ExitFailed
		outcome.Message = fmt.Sprintf("%d step(s) failed, %d blocked pending manual action",
			counts[StepFailed], counts[StepBlocked])
	}
	return outcome, nil
}

func (e *Executor) advance(state *State, index int, to StepState, detail string) error {
	if err := state.Transition(index, to, detail); err != nil {
		return err
	}
	return e.store.Save(state)
}

func (e *Executor) run(ctx context.Context, step *Step) error {
	runCtx, cancel := context.WithTimeout(ctx, e.opts.CommandTimeout)
	defer cancel()
	e.logStep(step, fmt.Sprintf("executing %q", step.Action.Command))
	return e.opts.Runner(runCtx, step.Action.Command)
}

func (e *Executor) elevated() bool {
	if e.opts.Elevated != nil {
		return *e.opts.Elevated
	}
	return processElevated()
}

func (e *Executor) logStep(step *Step, msg string) {
	if e.log == nil {
		return
	}
	e.log.WithFields(map[string]any{"step": step.ID, "phase": int(step.Phase)}).Info(msg)
}

func elevationMessage(step *Step) string {
	err := uecfgerrors.NewElevationError(step.ID, step.Action.Command)
	return err.Error()
}

// shellRunner executes a command line through the platform shell.
func shellRunner(ctx context.Context, command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/c", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%w: %s", err, firstLine(string(out)))
		}
		return err
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
