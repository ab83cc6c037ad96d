package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

// Component keys probes record into the Context for the compliance
// verdict. The scorer compares these against the manifest pins.
const (
	ComponentVisualStudio = "visual_studio"
	ComponentMSVC         = "msvc"
	ComponentWindowsSDK   = "windows_sdk"
	ComponentDotnet       = "dotnet"
	ComponentCMake        = "cmake"
	ComponentNinja        = "ninja"
	ComponentGit          = "git"
)

type visualStudioProbe struct{}

func (visualStudioProbe) ID() string         { return "toolchain.vs" }
func (visualStudioProbe) Phase() model.Phase { return model.PhaseToolchain }

func (p *visualStudioProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Visual Studio installation",
	}

	if runtime.GOOS != "windows" {
		result.Status = model.StatusNA
		result.Evidence = []string{"not a Windows host"}
		return result
	}

	vswhere := vswherePath(pc)
	if vswhere == "" {
		result.Status = model.StatusFail
		result.Evidence = []string{"vswhere.exe not found"}
		result.Remediation = "Install Visual Studio with the Desktop development with C++ workload."
		result.Actions = []model.Action{vsInstallAction()}
		return result
	}

	out := pc.RunCommand(ctx, vswhere, "-latest", "-products", "*",
		"-property", "catalog_productDisplayVersion")
	if !out.OK() || out.FirstLine() == "" {
		result.Status = model.StatusFail
		result.Evidence = []string{"vswhere query failed: " + out.Stderr}
		result.Remediation = "No Visual Studio instance detected; install one with the C++ workload."
		result.Actions = []model.Action{vsInstallAction()}
		return result
	}

	detected := out.FirstLine()
	pc.RecordDetected(ComponentVisualStudio, detected)
	result.Evidence = []string{"detected version " + detected}
	result.Status = model.StatusPass
	return result
}

func vsInstallAction() model.Action {
	return model.Action{
		Key:               "vs.install",
		Kind:              model.ActionGuided,
		Title:             "Install Visual Studio with C++ workload",
		Command:           "vs_installer.exe modify --add Microsoft.VisualStudio.Workload.NativeDesktop",
		RequiresElevation: true,
	}
}

func vswherePath(pc *Context) string {
	if path, err := pc.LookPath("vswhere"); err == nil {
		return path
	}
	programFiles := os.Getenv("ProgramFiles(x86)")
	if programFiles == "" {
		return ""
	}
	candidate := filepath.Join(programFiles, "Microsoft Visual Studio", "Installer", "vswhere.exe")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

type msvcProbe struct{}

func (msvcProbe) ID() string         { return "toolchain.msvc" }
func (msvcProbe) Phase() model.Phase { return model.PhaseToolchain }

func (p *msvcProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "MSVC toolset",
	}

	if runtime.GOOS != "windows" {
		result.Status = model.StatusNA
		result.Evidence = []string{"not a Windows host"}
		return result
	}

	vswhere := vswherePath(pc)
	if vswhere == "" {
		result.Status = model.StatusFail
		result.Evidence = []string{"vswhere.exe not found; toolset enumeration unavailable"}
		result.Remediation = "Install Visual Studio before checking MSVC toolsets."
		return result
	}

	out := pc.RunCommand(ctx, vswhere, "-latest", "-products", "*",
		"-requires", "Microsoft.VisualStudio.Component.VC.Tools.x86.x64",
		"-property", "installationPath")
	if !out.OK() || out.FirstLine() == "" {
		result.Status = model.StatusFail
		result.Evidence = []string{"no instance with the VC x64 toolset"}
		result.Remediation = "Add the MSVC v143 build tools component via the Visual Studio Installer."
		result.Actions = []model.Action{{
			Key:               "vs.modify",
			Kind:              model.ActionGuided,
			Title:             "Add MSVC build tools",
			Command:           "vs_installer.exe modify --add Microsoft.VisualStudio.Component.VC.Tools.x86.x64",
			RequiresElevation: true,
		}}
		return result
	}

	installPath := out.FirstLine()
	family := newestToolsetFamily(filepath.Join(installPath, "VC", "Tools", "MSVC"))
	result.Evidence = []string{"installation " + installPath}
	if family != "" {
		pc.RecordDetected(ComponentMSVC, family)
		result.Evidence = append(result.Evidence, "toolset "+family)
	}
	result.Status = model.StatusPass
	return result
}

// newestToolsetFamily returns the highest-sorting MSVC directory name,
// e.g. "14.38.33130", or empty when none can be read.
func newestToolsetFamily(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	newest := ""
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() > newest {
			newest = entry.Name()
		}
	}
	return newest
}

type windowsSDKProbe struct{}

func (windowsSDKProbe) ID() string         { return "toolchain.sdk" }
func (windowsSDKProbe) Phase() model.Phase { return model.PhaseToolchain }

func (p *windowsSDKProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Windows SDK",
	}

	if runtime.GOOS != "windows" {
		result.Status = model.StatusNA
		result.Evidence = []string{"not a Windows host"}
		return result
	}

	versions := installedSDKVersions()
	if len(versions) == 0 {
		result.Status = model.StatusFail
		result.Evidence = []string{"no Windows 10/11 SDK found under Windows Kits"}
		result.Remediation = "Install a Windows 10/11 SDK via the Visual Studio Installer."
		result.Actions = []model.Action{{
			Key:               "sdk.install",
			Kind:              model.ActionGuided,
			Title:             "Install Windows SDK",
			Command:           "vs_installer.exe modify --add Microsoft.VisualStudio.Component.Windows11SDK.22621",
			RequiresElevation: true,
		}}
		return result
	}

	newest := versions[len(versions)-1]
	pc.RecordDetected(ComponentWindowsSDK, newest)
	result.Evidence = []string{"installed: " + strings.Join(versions, ", ")}
	result.Status = model.StatusPass
	return result
}

func installedSDKVersions() []string {
	root := os.Getenv("ProgramFiles(x86)")
	if root == "" {
		return nil
	}
	dir := filepath.Join(root, "Windows Kits", "10", "Include")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var versions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "10.") {
			versions = append(versions, entry.Name())
		}
	}
	return versions
}

type dotnetProbe struct{}

func (dotnetProbe) ID() string         { return "toolchain.dotnet" }
func (dotnetProbe) Phase() model.Phase { return model.PhaseToolchain }

func (p *dotnetProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: ".NET SDK",
	}

	if _, err := pc.LookPath("dotnet"); err != nil {
		result.Status = model.StatusFail
		result.Evidence = []string{"dotnet not found on PATH"}
		result.Remediation = "UnrealBuildTool requires the .NET SDK."
		result.Actions = []model.Action{{
			Key:               "dotnet.install",
			Kind:              model.ActionAutomated,
			Title:             "Install .NET SDK",
			Command:           "winget install --id Microsoft.DotNet.SDK.8 -e --silent",
			RequiresElevation: true,
		}}
		return result
	}

	out := pc.RunCommand(ctx, "dotnet", "--version")
	if !out.OK() {
		result.Status = model.StatusWarn
		result.Evidence = []string{"dotnet --version failed: " + out.Stderr}
		result.Remediation = "The dotnet host is present but unresponsive; repair the SDK install."
		return result
	}
	pc.RecordDetected(ComponentDotnet, out.FirstLine())
	result.Evidence = []string{"version " + out.FirstLine()}
	result.Status = model.StatusPass
	return result
}

type cmakeNinjaProbe struct{}

func (cmakeNinjaProbe) ID() string         { return "toolchain.cmake" }
func (cmakeNinjaProbe) Phase() model.Phase { return model.PhaseToolchain }

func (p *cmakeNinjaProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "CMake and Ninja",
	}

	missing := 0
	if _, err := pc.LookPath("cmake"); err != nil {
		missing++
		result.Evidence = append(result.Evidence, "cmake not found on PATH")
		result.Actions = append(result.Actions, model.Action{
			Key:               "cmake.install",
			Kind:              model.ActionAutomated,
			Title:             "Install CMake",
			Command:           "winget install --id Kitware.CMake -e --silent",
			RequiresElevation: true,
		})
	} else {
		out := pc.RunCommand(ctx, "cmake", "--version")
		if out.OK() {
			version := strings.TrimPrefix(out.FirstLine(), "cmake version ")
			pc.RecordDetected(ComponentCMake, version)
			result.Evidence = append(result.Evidence, "cmake "+version)
		}
	}

	if _, err := pc.LookPath("ninja"); err != nil {
		missing++
		result.Evidence = append(result.Evidence, "ninja not found on PATH")
		result.Actions = append(result.Actions, model.Action{
			Key:               "ninja.install",
			Kind:              model.ActionAutomated,
			Title:             "Install Ninja",
			Command:           "winget install --id Ninja-build.Ninja -e --silent",
			RequiresElevation: true,
		})
	} else {
		out := pc.RunCommand(ctx, "ninja", "--version")
		if out.OK() {
			pc.RecordDetected(ComponentNinja, out.FirstLine())
			result.Evidence = append(result.Evidence, "ninja "+out.FirstLine())
		}
	}

	switch missing {
	case 0:
		result.Status = model.StatusPass
	case 1:
		result.Status = model.StatusWarn
		result.Remediation = "Some third-party engine modules need both CMake and Ninja."
	default:
		result.Status = model.StatusFail
		result.Remediation = "Install CMake and Ninja before building third-party engine modules."
	}
	return result
}

type manifestExtrasProbe struct{}

func (manifestExtrasProbe) ID() string         { return "toolchain.manifest" }
func (manifestExtrasProbe) Phase() model.Phase { return model.PhaseToolchain }

// Evaluate checks the auxiliary tools the manifest pins beyond the fixed
// probes above. Without a manifest the check does not apply.
func (p *manifestExtrasProbe) Evaluate(ctx context.Context, pc *Context) model.CheckResult {
	result := model.CheckResult{
		ID:    p.ID(),
		Phase: p.Phase(),
		Title: "Manifest-pinned tools",
	}

	if pc.Manifest == nil || len(pc.Manifest.Extras) == 0 {
		result.Status = model.StatusNA
		result.Evidence = []string{"no manifest supplied"}
		return result
	}

	names := make([]string, 0, len(pc.Manifest.Extras))
	for name := range pc.Manifest.Extras {
		names = append(names, name)
	}
	sort.Strings(names)

	missingRequired := false
	for _, name := range names {
		req := pc.Manifest.Extras[name]
		if _, err := pc.LookPath(name); err == nil {
			result.Evidence = append(result.Evidence, name+" present")
			continue
		}
		result.Evidence = append(result.Evidence, name+" missing")
		if req.Required {
			missingRequired = true
		}
		if req.PackageID != "" {
			result.Actions = append(result.Actions, manifestExtraAction(name, req.PackageID))
		}
	}

	switch {
	case missingRequired:
		result.Status = model.StatusFail
		result.Remediation = fmt.Sprintf("Manifest %s requires tools that are not installed.", pc.Manifest.Describe())
	case len(result.Actions) > 0:
		result.Status = model.StatusWarn
		result.Remediation = "Optional manifest tools are missing."
	default:
		result.Status = model.StatusPass
	}
	return result
}

// manifestExtraAction maps a manifest extras entry to an install action.
func manifestExtraAction(name, packageID string) model.Action {
	command := fmt.Sprintf("winget install --id %s -e --silent", packageID)
	return model.Action{
		Key:               name + ".install",
		Kind:              model.ActionAutomated,
		Title:             "Install " + name,
		Command:           command,
		RequiresElevation: true,
	}
}
