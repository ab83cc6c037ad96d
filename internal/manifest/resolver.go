package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolution carries the outcome of manifest discovery.
type Resolution struct {
	Manifest        *Manifest
	Source          string
	DetectedVersion string
}

// DetectEngineVersion reads Engine/Build/Build.version under the given
// source tree and returns e.g. "5.6" or "5.6.1". Empty when unknown.
func DetectEngineVersion(engineRoot string) string {
	if engineRoot == "" {
		return ""
	}
	path := filepath.Join(engineRoot, "Engine", "Build", "Build.version")
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var payload struct {
		MajorVersion *int `json:"MajorVersion"`
		MinorVersion *int `json:"MinorVersion"`
		PatchVersion *int `json:"PatchVersion"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	if payload.MajorVersion == nil || payload.MinorVersion == nil {
		return ""
	}
	parts := []string{fmt.Sprint(*payload.MajorVersion), fmt.Sprint(*payload.MinorVersion)}
	if payload.PatchVersion != nil && *payload.PatchVersion != 0 {
		parts = append(parts, fmt.Sprint(*payload.PatchVersion))
	}
	return strings.Join(parts, ".")
}

// Resolve finds and loads a manifest. Lookup order: explicit path or id,
// then --ue-version, then the version autodetected from the source tree.
// A nil Manifest with nil error means no manifest applies to this run;
// an explicit reference that fails to load is an error.
func Resolve(spec, ueVersion, engineRoot, dir string) (Resolution, error) {
	if dir == "" {
		dir = DefaultDir
	}

	if spec != "" {
		if path := findManifestPath(spec, dir); path != "" {
			m, err := Load(path)
			if err != nil {
				return Resolution{}, err
			}
			return Resolution{Manifest: m, Source: path, DetectedVersion: ueVersion}, nil
		}
		return Resolution{}, fmt.Errorf("manifest %q not found (searched %s)", spec, dir)
	}

	version := ueVersion
	detected := ""
	if version == "" {
		detected = DetectEngineVersion(engineRoot)
		version = detected
	}
	if version == "" {
		return Resolution{}, nil
	}
	path := findManifestPath("ue_"+version, dir)
	if path == "" {
		if ueVersion != "" {
			return Resolution{}, fmt.Errorf("no manifest for UE %s (searched %s)", ueVersion, dir)
		}
		// Autodetected version with no matching manifest is not an error.
		return Resolution{DetectedVersion: detected}, nil
	}
	m, err := Load(path)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Manifest: m, Source: path, DetectedVersion: version}, nil
}

func findManifestPath(spec, dir string) string {
	candidate := strings.ToLower(strings.TrimSpace(spec))
	if candidate == "" {
		return ""
	}
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate
	}
	available := Available(dir)
	names := []string{candidate}
	// Dotted ids like ue_5.6 must not lose their version suffix.
	switch ext := filepath.Ext(candidate); ext {
	case ".yaml", ".yml", ".json":
		names = append(names, strings.TrimSuffix(candidate, ext))
	}
	for _, name := range names {
		if path, ok := available[name]; ok {
			return path
		}
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(dir, candidate+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
