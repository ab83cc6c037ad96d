package probe

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/logger"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
)

// DefaultCommandTimeout bounds external tool invocations made by probes.
const DefaultCommandTimeout = 20 * time.Second

// CommandResult wraps external process output used as probe evidence.
// Failures are data, never panics: a missing binary or timeout produces a
// result with a non-zero exit code and an explanatory stderr.
type CommandResult struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// OK reports whether the command completed with exit code zero.
func (r CommandResult) OK() bool {
	return r.ExitCode == 0 && !r.TimedOut
}

// FirstLine returns the first non-empty stdout line, trimmed.
func (r CommandResult) FirstLine() string {
	for _, line := range strings.Split(r.Stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Context carries per-scan state shared by probes: target tree, manifest,
// memoized tool lookups, and detected component versions. Its lifetime is
// one scan invocation; it is never a process-wide global.
type Context struct {
	EngineRoot string
	Manifest   *manifest.Manifest
	Timeout    time.Duration
	Logger     *logger.Logger

	mu       sync.Mutex
	paths    map[string]pathLookup
	commands map[string]CommandResult
	detected map[string]string
}

type pathLookup struct {
	path string
	err  error
}

// NewContext builds a scan context with memoization maps initialized.
func NewContext(engineRoot string, m *manifest.Manifest, log *logger.Logger) *Context {
	return &Context{
		EngineRoot: engineRoot,
		Manifest:   m,
		Timeout:    DefaultCommandTimeout,
		Logger:     log,
		paths:      make(map[string]pathLookup),
		commands:   make(map[string]CommandResult),
		detected:   make(map[string]string),
	}
}

// LookPath resolves a tool on PATH, memoizing the answer for the scan.
func (c *Context) LookPath(tool string) (string, error) {
	c.mu.Lock()
	if entry, ok := c.paths[tool]; ok {
		c.mu.Unlock()
		return entry.path, entry.err
	}
	c.mu.Unlock()

	path, err := exec.LookPath(tool)

	c.mu.Lock()
	c.paths[tool] = pathLookup{path: path, err: err}
	c.mu.Unlock()
	return path, err
}

// RunCommand executes name with args under the scan's command timeout,
// memoizing identical invocations. It never returns an error; failure
// modes are encoded in the CommandResult so probes can cite them as
// evidence instead of crashing the scan.
func (c *Context) RunCommand(ctx context.Context, name string, args ...string) CommandResult {
	key := name + " " + strings.Join(args, " ")

	c.mu.Lock()
	if cached, ok := c.commands[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	result := c.runUncached(ctx, key, name, args...)

	c.mu.Lock()
	c.commands[key] = result
	c.mu.Unlock()
	return result
}

func (c *Context) runUncached(ctx context.Context, key, name string, args ...string) CommandResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{
		Command: key,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	switch {
	case runCtx.Err() == context.DeadlineExceeded:
		result.TimedOut = true
		result.ExitCode = -1
		if result.Stderr == "" {
			result.Stderr = "timeout after " + timeout.String()
		}
	case err != nil:
		result.ExitCode = -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		}
		if result.Stderr == "" {
			result.Stderr = err.Error()
		}
	}
	return result
}

// RecordDetected notes a detected component version (e.g. "visual_studio"
// -> "17.6") for the compliance verdict to compare against the manifest.
func (c *Context) RecordDetected(component, version string) {
	version = strings.TrimSpace(version)
	if component == "" || version == "" {
		return
	}
	c.mu.Lock()
	c.detected[component] = version
	c.mu.Unlock()
}

// Detected returns the recorded version for a component, if any.
func (c *Context) Detected(component string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	version, ok := c.detected[component]
	return version, ok
}

// DetectedComponents returns a copy of all recorded component versions.
func (c *Context) DetectedComponents() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.detected))
	for k, v := range c.detected {
		out[k] = v
	}
	return out
}
