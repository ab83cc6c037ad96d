// Package manifest loads and resolves versioned toolchain compliance
// manifests for Unreal Engine release lines.
package manifest

import (
	"fmt"
)

// SchemaVersion is the manifest schema this build understands.
const SchemaVersion = 1

// ToolRequirement pins one auxiliary tool (git, cmake, ninja, dotnet).
type ToolRequirement struct {
	Name       string `yaml:"name" validate:"required"`
	Required   bool   `yaml:"required"`
	PackageID  string `yaml:"package_id,omitempty"`
	MinVersion string `yaml:"min_version,omitempty"`
	Notes      string `yaml:"notes,omitempty"`
}

// VisualStudioRequirement pins the IDE major line and component set.
type VisualStudioRequirement struct {
	RequiredMajor      int      `yaml:"required_major" validate:"required,gt=0"`
	MinVersion         string   `yaml:"min_version,omitempty"`
	RecommendedVersion string   `yaml:"recommended_version,omitempty"`
	RequiredComponents []string `yaml:"required_components,omitempty"`
	Notes              string   `yaml:"notes,omitempty"`
}

// MSVCRequirement pins the compiler toolset family.
type MSVCRequirement struct {
	ToolsetFamily string `yaml:"toolset_family"`
	Notes         string `yaml:"notes,omitempty"`
}

// WindowsSDKRequirement pins acceptable SDK versions.
type WindowsSDKRequirement struct {
	PreferredVersions []string `yaml:"preferred_versions,omitempty"`
	MinimumVersion    string   `yaml:"minimum_version,omitempty"`
	Notes             string   `yaml:"notes,omitempty"`
}

// HordeRequirement flags optional distributed-build expectations.
type HordeRequirement struct {
	Recommended bool `yaml:"recommended"`
	// Server is the Horde server URL used when generating a
	// BuildConfiguration.xml template.
	Server string `yaml:"server,omitempty"`
	// SharedDDCPath is the team's shared derived-data cache location.
	SharedDDCPath string `yaml:"shared_ddc_path,omitempty"`
	Notes         string `yaml:"notes,omitempty"`
}

// Manifest is an immutable, versioned compliance document. It is loaded
// once per invocation and never mutated.
type Manifest struct {
	Schema       int                        `yaml:"schema" validate:"required"`
	ID           string                     `yaml:"id" validate:"required"`
	EngineLine   string                     `yaml:"ue_version" validate:"required"`
	VisualStudio VisualStudioRequirement    `yaml:"visual_studio" validate:"required"`
	MSVC         MSVCRequirement            `yaml:"msvc"`
	WindowsSDK   WindowsSDKRequirement      `yaml:"windows_sdk"`
	Extras       map[string]ToolRequirement `yaml:"extras,omitempty"`
	Horde        *HordeRequirement          `yaml:"horde_uba,omitempty"`
	Notes        string                     `yaml:"notes,omitempty"`

	// Fingerprint is the SHA-256 of the canonicalized document,
	// computed at load time.
	Fingerprint string `yaml:"-"`
	// Path is where the manifest was loaded from.
	Path string `yaml:"-"`
}

// Describe returns a short human identity of the manifest.
func (m *Manifest) Describe() string {
	return fmt.Sprintf("%s (UE %s)", m.ID, m.EngineLine)
}
