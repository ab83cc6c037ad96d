package probe

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Phase 3 checks optional Horde/UBA distributed-build readiness. Nothing
// here gates a local build; workstation profiles treat it as optional.

type hordeAgentProbe struct{}

func (hordeAgentProbe) ID() string         { return "horde.agent" }
func (hordeAgentProbe) Phase() model.Phase { return model.PhaseDistributed }

func (p *hordeAgentProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Horde agent",
	}

	if _, err := pc.LookPath("HordeAgent"); err == nil {
		result.Status = model.StatusPass
		result.Evidence = []string{"HordeAgent on PATH"}
		return result
	}
	if dir := os.Getenv("ProgramData"); dir != "" {
		candidate := filepath.Join(dir, "Epic", "Horde", "Agent")
		if _, err := os.Stat(candidate); err == nil {
			result.Status = model.StatusPass
			result.Evidence = []string{"agent directory " + candidate}
			return result
		}
	}

	result.Status = model.StatusWarn
	result.Evidence = []string{"no Horde agent installation detected"}
	result.Remediation = "Install the Horde agent to participate in distributed builds."
	result.Actions = []model.Action{{
		Key:     "horde.install",
		Kind:    model.ActionGuided,
		Title:   "Install Horde agent",
		Command: "dotnet <horde-server>/api/v1/agent/software/install",
	}}
	return result
}

type networkProbe struct{}

func (networkProbe) ID() string         { return "horde.network" }
func (networkProbe) Phase() model.Phase { return model.PhaseDistributed }

func (p *networkProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Network readiness",
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		result.Status = model.StatusWarn
		result.Evidence = []string{"interface enumeration failed: " + err.Error()}
		result.Remediation = "Could not inspect network interfaces; verify connectivity to the build coordinator."
		return result
	}

	active := 0
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagLoopback == 0 {
			active++
			result.Evidence = append(result.Evidence, "up: "+iface.Name)
		}
	}
	if active == 0 {
		result.Status = model.StatusFail
		result.Evidence = append(result.Evidence, "no non-loopback interface is up")
		result.Remediation = "Distributed builds need a working network link."
		return result
	}
	result.Status = model.StatusPass
	return result
}

type buildConfigProbe struct{}

func (buildConfigProbe) ID() string         { return "horde.build-config" }
func (buildConfigProbe) Phase() model.Phase { return model.PhaseDistributed }

func (p *buildConfigProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "UBA build configuration",
	}

	for _, path := range BuildConfigurationPaths(pc.EngineRoot) {
		if _, err := os.Stat(path); err == nil {
			result.Status = model.StatusPass
			result.Evidence = []string{path}
			return result
		}
	}

	result.Status = model.StatusWarn
	result.Evidence = []string{"no BuildConfiguration.xml found"}
	result.Remediation = "Generate a BuildConfiguration.xml template to enable UBA."
	result.Actions = []model.Action{{
		Key:     "horde.template",
		Kind:    model.ActionAutomated,
		Title:   "Generate BuildConfiguration template",
		Command: "uecfg fix --phase 3 --apply",
	}}
	return result
}

// BuildConfigurationPaths lists the locations UnrealBuildTool reads
// BuildConfiguration.xml from, in precedence order.
func BuildConfigurationPaths(engineRoot string) []string {
	var paths []string
	if engineRoot != "" {
		paths = append(paths, filepath.Join(engineRoot, "Engine", "Programs", "UnrealBuildTool", "BuildConfiguration.xml"))
	}
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		paths = append(paths, filepath.Join(appdata, "Unreal Engine", "UnrealBuildTool", "BuildConfiguration.xml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "Unreal Engine", "UnrealBuildTool", "BuildConfiguration.xml"))
	}
	return paths
}

type sharedDDCProbe struct{}

func (sharedDDCProbe) ID() string         { return "horde.ddc" }
func (sharedDDCProbe) Phase() model.Phase { return model.PhaseDistributed }

func (p *sharedDDCProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Shared derived-data cache",
	}

	if pc.Manifest == nil || pc.Manifest.Horde == nil || pc.Manifest.Horde.SharedDDCPath == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no shared DDC path declared for this engine line"}
		return result
	}
	if pc.EngineRoot == "" {
		result.Status = model.StatusNA
		result.Evidence = []string{"no engine root provided"}
		return result
	}

	desired := pc.Manifest.Horde.SharedDDCPath
	iniPath := EngineConfigPath(pc.EngineRoot)
	raw, err := os.ReadFile(iniPath)
	if err == nil && strings.Contains(string(raw), desired) {
		result.Status = model.StatusPass
		result.Evidence = []string{"shared DDC configured in " + iniPath}
		return result
	}

	result.Status = model.StatusWarn
	result.Evidence = []string{"shared DDC path " + desired + " not configured"}
	result.Remediation = "Point the derived-data cache at the shared location to reuse team build artifacts."
	result.Actions = []model.Action{{
		Key:     "ddc.shared",
		Kind:    model.ActionAutomated,
		Title:   "Configure shared derived-data cache",
		Command: "uecfg fix --phase 3 --apply",
	}}
	return result
}

// EngineConfigPath is the engine-level ini the shared DDC mutation
// targets.
func EngineConfigPath(engineRoot string) string {
	return filepath.Join(engineRoot, "Engine", "Config", "DefaultEngine.ini")
}
