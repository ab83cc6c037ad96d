package probe

import (
	"context"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

type engineRootProbe struct{}

func (engineRootProbe) ID() string         { return "ue.root" }
func (engineRootProbe) Phase() model.Phase { return model.PhaseSourceTree }

func (p *engineRootProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Engine source tree",
	}

	if pc.EngineRoot == "" {
		result.Status = model.StatusWarn
		result.Evidence = []string{"no engine root supplied"}
		result.Remediation = "Pass --ue-root to audit a specific source tree."
		result.Actions = []model.Action{{
			Key:     "ue.provide-root",
			Kind:    model.ActionGuided,
			Title:   "Point uecfg at an engine tree",
			Command: "uecfg scan --phase 2 --ue-root <path>",
		}}
		return result
	}

	info, err := os.Stat(pc.EngineRoot)
	if err != nil || !info.IsDir() {
		result.Status = model.StatusFail
		result.Evidence = []string{"engine root does not exist: " + pc.EngineRoot}
		result.Remediation = "Clone the engine repository before continuing."
		result.Actions = []model.Action{{
			Key:     "ue.clone",
			Kind:    model.ActionGuided,
			Title:   "Clone the engine repository",
			Command: "git clone https://github.com/EpicGames/UnrealEngine.git " + pc.EngineRoot,
		}}
		return result
	}

	result.Status = model.StatusPass
	result.Evidence = []string{"root " + pc.EngineRoot}
	return result
}

type setupScriptsProbe struct{}

func (setupScriptsProbe) ID() string         { return "ue.scripts" }
func (setupScriptsProbe) Phase() model.Phase { return model.PhaseSourceTree }

func (p *setupScriptsProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Setup scripts present",
	}

	if pc.EngineRoot == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no engine root supplied"}
		return result
	}

	missing := false
	for _, names := range [][]string{
		{"Setup.bat", "Setup.sh"},
		{"GenerateProjectFiles.bat", "GenerateProjectFiles.sh"},
	} {
		if found := firstExisting(pc.EngineRoot, names); found != "" {
			result.Evidence = append(result.Evidence, found+" present")
		} else {
			missing = true
			result.Evidence = append(result.Evidence, names[0]+" missing")
		}
	}

	if missing {
		result.Status = model.StatusFail
		result.Remediation = "The tree is incomplete; re-sync the engine repository."
		result.Actions = []model.Action{{
			Key:     "ue.sync",
			Kind:    model.ActionGuided,
			Title:   "Re-sync the engine repository",
			Command: "git -C " + pc.EngineRoot + " checkout -- . && git -C " + pc.EngineRoot + " pull",
		}}
		return result
	}
	result.Status = model.StatusPass
	return result
}

func firstExisting(root string, names []string) string {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return name
		}
	}
	return ""
}

type sourceControlProbe struct{}

func (sourceControlProbe) ID() string         { return "ue.git" }
func (sourceControlProbe) Phase() model.Phase { return model.PhaseSourceTree }

// Evaluate opens the engine root as a git repository and reports the
// checked-out reference as evidence. A tree that is not under version
// control still builds, so the downgrade is WARN, not FAIL.
func (p *sourceControlProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Source tree version control",
	}

	if pc.EngineRoot == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no engine root supplied"}
		return result
	}

	repo, err := git.PlainOpen(pc.EngineRoot)
	if err != nil {
		result.Status = model.StatusWarn
		result.Evidence = []string{"not a git repository: " + err.Error()}
		result.Remediation = "Updates cannot be pulled; clone the engine via git to track a release branch."
		return result
	}

	head, err := repo.Head()
	if err != nil {
		result.Status = model.StatusWarn
		result.Evidence = []string{"repository has no usable HEAD: " + err.Error()}
		result.Remediation = "Check out a release branch before building."
		return result
	}

	result.Status = model.StatusPass
	result.Evidence = []string{
		"ref " + head.Name().Short(),
		"commit " + head.Hash().String()[:12],
	}
	return result
}

type redistProbe struct{}

func (redistProbe) ID() string         { return "ue.redist" }
func (redistProbe) Phase() model.Phase { return model.PhaseSourceTree }

func (p *redistProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Prerequisite installer",
	}

	if pc.EngineRoot == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no engine root supplied"}
		return result
	}

	installer := filepath.Join(pc.EngineRoot, "Engine", "Extras", "Redist", "en-us", "UEPrereqSetup_x64.exe")
	if _, err := os.Stat(installer); err != nil {
		result.Status = model.StatusWarn
		result.Evidence = []string{"UEPrereqSetup_x64.exe not found (Setup has not run yet)"}
		result.Remediation = "Run Setup to download prerequisite redistributables."
		result.Actions = []model.Action{{
			Key:     "ue.run-setup",
			Kind:    model.ActionAutomated,
			Title:   "Run engine Setup script",
			Command: filepath.Join(pc.EngineRoot, "Setup.bat"),
		}}
		return result
	}
	result.Status = model.StatusPass
	result.Evidence = []string{installer}
	return result
}

type buildCommandsProbe struct{}

func (buildCommandsProbe) ID() string         { return "ue.commands" }
func (buildCommandsProbe) Phase() model.Phase { return model.PhaseSourceTree }

func (p *buildCommandsProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Build entry points",
	}

	if pc.EngineRoot == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no engine root supplied"}
		return result
	}

	batchDir := filepath.Join(pc.EngineRoot, "Engine", "Build", "BatchFiles")
	entries := []string{"Build.bat", "RunUAT.bat"}
	missing := false
	for _, name := range entries {
		if _, err := os.Stat(filepath.Join(batchDir, name)); err == nil {
			result.Evidence = append(result.Evidence, name+" present")
		} else {
			missing = true
			result.Evidence = append(result.Evidence, name+" missing")
		}
	}

	if missing {
		result.Status = model.StatusFail
		result.Remediation = "Engine build scripts are missing; generate project files after Setup completes."
		result.Actions = []model.Action{{
			Key:     "ue.generate-project-files",
			Kind:    model.ActionAutomated,
			Title:   "Generate project files",
			Command: filepath.Join(pc.EngineRoot, "GenerateProjectFiles.bat"),
		}}
		return result
	}
	result.Status = model.StatusPass
	return result
}
