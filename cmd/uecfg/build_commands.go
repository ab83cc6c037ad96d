package main

import (
	"path/filepath"
	"runtime"
)

// buildScriptCommand resolves a root-level engine script invocation
// (Setup, GenerateProjectFiles) for the current platform.
func buildScriptCommand(ueRoot, script string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(ueRoot, script+".bat")
	}
	return filepath.Join(ueRoot, script+".sh")
}

// buildTargetCommand resolves the UnrealBuildTool invocation for one
// build target in the default development configuration.
func buildTargetCommand(ueRoot, target string) string {
	if runtime.GOOS == "windows" {
		bat := filepath.Join(ueRoot, "Engine", "Build", "BatchFiles", "Build.bat")
		return bat + " " + target + " Win64 Development"
	}
	sh := filepath.Join(ueRoot, "Engine", "Build", "BatchFiles", "Linux", "Build.sh")
	return sh + " " + target + " Linux Development"
}
