package errors

import (
	"fmt"
)

// ManifestError reports a manifest that could not be parsed or carries an
// unknown schema version. Commands that required the manifest abort with
// exit code 2 when they see one.
type ManifestError struct {
	Path    string
	Message string
	Err     error
}

// NewManifestError constructs a ManifestError.
func NewManifestError(path, message string, err error) error {
	if message == "" && err != nil {
		message = err.Error()
	}
	return &ManifestError{Path: path, Message: message, Err: err}
}

func (e *ManifestError) Error() string {
	if e == nil {
		return ""
	}
	if e.Path != "" {
		return fmt.Sprintf("manifest error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("manifest error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ManifestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProbeError reports a probe body that could not complete (missing tool,
// timeout, permission denied). Probe errors never abort a scan; the runner
// downgrades them into WARN/FAIL check results.
type ProbeError struct {
	ProbeID string
	Message string
	Err     error
}

// NewProbeError constructs a ProbeError for the given probe.
func NewProbeError(probeID string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ProbeError{ProbeID: probeID, Message: message, Err: err}
}

func (e *ProbeError) Error() string {
	if e == nil {
		return ""
	}
	if e.ProbeID != "" {
		return fmt.Sprintf("probe error [%s]: %s", e.ProbeID, e.Message)
	}
	return fmt.Sprintf("probe error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ProbeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ConfigWriteError reports a failed config mutation: the backup could not
// be taken, the file is locked, or the disk is full. Only the owning step
// fails; the backup that was made, if any, stays on disk.
type ConfigWriteError struct {
	Path       string
	BackupPath string
	Message    string
	Err        error
}

// NewConfigWriteError constructs a ConfigWriteError.
func NewConfigWriteError(path, backupPath string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ConfigWriteError{Path: path, BackupPath: backupPath, Message: message, Err: err}
}

func (e *ConfigWriteError) Error() string {
	if e == nil {
		return ""
	}
	if e.BackupPath != "" {
		return fmt.Sprintf("config write error: %s: %s (backup preserved at %s)", e.Path, e.Message, e.BackupPath)
	}
	return fmt.Sprintf("config write error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ConfigWriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ElevationError signals that a step needs elevated privileges the current
// process does not hold. It is not a failure: the step waits and the run
// exits with a distinct code plus a resume instruction.
type ElevationError struct {
	StepID  string
	Command string
}

// NewElevationError constructs an ElevationError.
func NewElevationError(stepID, command string) error {
	return &ElevationError{StepID: stepID, Command: command}
}

func (e *ElevationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("step %s requires elevation: re-run elevated with --resume --apply (command: %s)", e.StepID, e.Command)
}

// StateError reports an unreadable or unparseable setup state file. The
// engine discards the corrupt state and regenerates a fresh plan.
type StateError struct {
	Path    string
	Message string
	Err     error
}

// NewStateError constructs a StateError.
func NewStateError(path string, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &StateError{Path: path, Message: message, Err: err}
}

func (e *StateError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("state error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *StateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
