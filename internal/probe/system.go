package probe

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Engine source builds want a modern 64-bit OS, tens of gigabytes of free
// disk, and a reasonable core count. These probes establish that baseline.

type osVersionProbe struct{}

func (osVersionProbe) ID() string         { return "os.version" }
func (osVersionProbe) Phase() model.Phase { return model.PhaseBaseline }

func (p *osVersionProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Operating system baseline",
	}

	var version CommandResult
	switch runtime.GOOS {
	case "windows":
		version = pc.RunCommand(ctx, "cmd", "/c", "ver")
	default:
		version = pc.RunCommand(ctx, "uname", "-sr")
	}

	result.Evidence = append(result.Evidence, fmt.Sprintf("os=%s arch=%s", runtime.GOOS, runtime.GOARCH))
	if version.OK() {
		result.Evidence = append(result.Evidence, version.FirstLine())
	} else {
		result.Evidence = append(result.Evidence, "version query failed: "+version.Stderr)
	}

	if runtime.GOARCH != "amd64" && runtime.GOARCH != "arm64" {
		result.Status = model.StatusFail
		result.Remediation = "A 64-bit operating system is required to build the engine."
		return result
	}
	if !version.OK() {
		result.Status = model.StatusWarn
		result.Remediation = "Could not confirm the OS version; verify it meets the engine's minimum."
		return result
	}
	result.Status = model.StatusPass
	return result
}

type gitProbe struct{}

func (gitProbe) ID() string         { return "os.git" }
func (gitProbe) Phase() model.Phase { return model.PhaseBaseline }

func (p *gitProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Git availability",
	}

	path, err := pc.LookPath("git")
	if err != nil {
		result.Status = model.StatusFail
		result.Evidence = []string{"git not found on PATH"}
		result.Remediation = "Install Git so the engine source tree can be synced."
		result.Actions = []model.Action{{
			Key:               "git.install",
			Kind:              model.ActionAutomated,
			Title:             "Install Git",
			Command:           "winget install --id Git.Git -e --silent",
			RequiresElevation: true,
		}}
		return result
	}

	version := pc.RunCommand(ctx, "git", "--version")
	result.Evidence = []string{"path=" + path}
	if version.OK() {
		result.Evidence = append(result.Evidence, version.FirstLine())
		pc.RecordDetected("git", strings.TrimPrefix(version.FirstLine(), "git version "))
		result.Status = model.StatusPass
		return result
	}
	result.Status = model.StatusWarn
	result.Evidence = append(result.Evidence, "git --version failed: "+version.Stderr)
	result.Remediation = "Git is present but not responding; reinstall it."
	return result
}

type diskSpaceProbe struct{}

func (diskSpaceProbe) ID() string         { return "os.disk" }
func (diskSpaceProbe) Phase() model.Phase { return model.PhaseBaseline }

// minFreeGiB is the comfortable floor for a full source build plus DDC.
const minFreeGiB = 200

func (p *diskSpaceProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Free disk space",
	}

	freeGiB, evidence, ok := freeDiskSpace(ctx, pc)
	result.Evidence = evidence
	if !ok {
		result.Status = model.StatusWarn
		result.Remediation = fmt.Sprintf("Could not measure free space; ensure at least %d GiB are available.", minFreeGiB)
		return result
	}

	result.Evidence = append(result.Evidence, fmt.Sprintf("free=%d GiB (floor %d GiB)", freeGiB, minFreeGiB))
	switch {
	case freeGiB >= minFreeGiB:
		result.Status = model.StatusPass
	case freeGiB >= minFreeGiB/2:
		result.Status = model.StatusWarn
		result.Remediation = "Free disk space is tight for a full engine build; clear space before starting."
		result.Actions = []model.Action{{
			Key:     "disk.cleanup",
			Kind:    model.ActionGuided,
			Title:   "Free up disk space",
			Command: "cleanmgr /lowdisk",
		}}
	default:
		result.Status = model.StatusFail
		result.Remediation = fmt.Sprintf("At least %d GiB free are needed for engine source, intermediates, and DDC.", minFreeGiB)
		result.Actions = []model.Action{{
			Key:     "disk.cleanup",
			Kind:    model.ActionGuided,
			Title:   "Free up disk space",
			Command: "cleanmgr /lowdisk",
		}}
	}
	return result
}

func freeDiskSpace(ctx context.Context, pc *Context) (int, []string, bool) {
	if runtime.GOOS == "windows" {
		out := pc.RunCommand(ctx, "powershell", "-NoProfile", "-Command",
			"(Get-PSDrive -Name C).Free")
		if out.OK() {
			if bytes, err := strconv.ParseInt(out.FirstLine(), 10, 64); err == nil {
				return int(bytes >> 30), []string{out.Command}, true
			}
		}
		return 0, []string{"powershell free-space query failed: " + out.Stderr}, false
	}
	out := pc.RunCommand(ctx, "df", "-k", ".")
	if !out.OK() {
		return 0, []string{"df failed: " + out.Stderr}, false
	}
	lines := strings.Split(strings.TrimSpace(out.Stdout), "\n")
	if len(lines) < 2 {
		return 0, []string{"unexpected df output"}, false
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return 0, []string{"unexpected df output"}, false
	}
	kib, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return 0, []string{"unexpected df output"}, false
	}
	return int(kib >> 20), []string{lines[len(lines)-1]}, true
}

type hardwareProbe struct{}

func (hardwareProbe) ID() string         { return "os.hardware" }
func (hardwareProbe) Phase() model.Phase { return model.PhaseBaseline }

func (p *hardwareProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Hardware profile",
	}

	cores := runtime.NumCPU()
	result.Evidence = []string{fmt.Sprintf("logical cores=%d", cores)}
	switch {
	case cores >= 16:
		result.Status = model.StatusPass
	case cores >= 8:
		result.Status = model.StatusWarn
		result.Remediation = "Builds will complete but slowly; 16+ logical cores are recommended."
	default:
		result.Status = model.StatusWarn
		result.Remediation = "Engine builds on this machine will take many hours; consider distributed compilation (phase 3)."
		result.Actions = []model.Action{{
			Key:     "hardware.distributed",
			Kind:    model.ActionGuided,
			Title:   "Evaluate distributed builds",
			Command: "uecfg scan --phase 3",
		}}
	}
	return result
}
