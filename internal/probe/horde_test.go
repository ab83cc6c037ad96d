package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/manifest"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

func ddcManifest(path string) *manifest.Manifest {
	return &manifest.Manifest{
		ID:         "ue_5.6",
		EngineLine: "5.6",
		Horde:      &manifest.HordeRequirement{Recommended: true, SharedDDCPath: path},
	}
}

func TestSharedDDCProbeNAWithoutManifest(t *testing.T) {
	p := &sharedDDCProbe{}
	result := p.Evaluate(context.Background(), NewContext(t.TempDir(), nil, nil))
	require.Equal(t, model.StatusNA, result.Status)
}

func TestSharedDDCProbeWarnsWhenUnconfigured(t *testing.T) {
	root := t.TempDir()
	pc := NewContext(root, ddcManifest("//san/ddc"), nil)

	p := &sharedDDCProbe{}
	result := p.Evaluate(context.Background(), pc)
	require.Equal(t, model.StatusWarn, result.Status)
	require.Len(t, result.Actions, 1)
	require.Equal(t, "ddc.shared", result.Actions[0].Key)
	require.Equal(t, model.ActionAutomated, result.Actions[0].Kind)
}

func TestSharedDDCProbePassesWhenConfigured(t *testing.T) {
	root := t.TempDir()
	iniPath := EngineConfigPath(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(iniPath), 0o755))
	ini := "[InstalledDerivedDataBackendGraph]\nShared=(Type=FileSystem, Path=//san/ddc)\n"
	require.NoError(t, os.WriteFile(iniPath, []byte(ini), 0o644))

	pc := NewContext(root, ddcManifest("//san/ddc"), nil)
	p := &sharedDDCProbe{}
	result := p.Evaluate(context.Background(), pc)
	require.Equal(t, model.StatusPass, result.Status)
}

func TestBuildConfigurationPathsPrefersEngineRoot(t *testing.T) {
	paths := BuildConfigurationPaths("/src/ue")
	require.NotEmpty(t, paths)
	require.Equal(t, filepath.Join("/src/ue", "Engine", "Programs", "UnrealBuildTool", "BuildConfiguration.xml"), paths[0])
}
