package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/model"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))
}

func TestEngineRootProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("no root is a warning with guidance", func(t *testing.T) {
		result := (&engineRootProbe{}).Evaluate(ctx, NewContext("", nil, nil))
		require.Equal(t, model.StatusWarn, result.Status)
		require.Len(t, result.Actions, 1)
		require.Equal(t, model.ActionGuided, result.Actions[0].Kind)
	})

	t.Run("missing directory fails with clone action", func(t *testing.T) {
		result := (&engineRootProbe{}).Evaluate(ctx, NewContext("/does/not/exist", nil, nil))
		require.Equal(t, model.StatusFail, result.Status)
		require.Equal(t, "ue.clone", result.Actions[0].Key)
	})

	t.Run("existing directory passes", func(t *testing.T) {
		result := (&engineRootProbe{}).Evaluate(ctx, NewContext(t.TempDir(), nil, nil))
		require.Equal(t, model.StatusPass, result.Status)
	})
}

func TestSetupScriptsProbe(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	pc := NewContext(root, nil, nil)

	result := (&setupScriptsProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusFail, result.Status)
	require.Equal(t, "ue.sync", result.Actions[0].Key)

	touch(t, filepath.Join(root, "Setup.sh"))
	touch(t, filepath.Join(root, "GenerateProjectFiles.sh"))
	result = (&setupScriptsProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusPass, result.Status)
}

func TestSetupScriptsProbeNAWithoutRoot(t *testing.T) {
	result := (&setupScriptsProbe{}).Evaluate(context.Background(), NewContext("", nil, nil))
	require.Equal(t, model.StatusNA, result.Status)
}

func TestSourceControlProbe(t *testing.T) {
	ctx := context.Background()

	t.Run("plain directory warns", func(t *testing.T) {
		result := (&sourceControlProbe{}).Evaluate(ctx, NewContext(t.TempDir(), nil, nil))
		require.Equal(t, model.StatusWarn, result.Status)
	})

	t.Run("repository without commits warns", func(t *testing.T) {
		root := t.TempDir()
		_, err := git.PlainInit(root, false)
		require.NoError(t, err)
		result := (&sourceControlProbe{}).Evaluate(ctx, NewContext(root, nil, nil))
		require.Equal(t, model.StatusWarn, result.Status)
	})
}

func TestBuildCommandsProbe(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	pc := NewContext(root, nil, nil)

	result := (&buildCommandsProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusFail, result.Status)

	touch(t, filepath.Join(root, "Engine", "Build", "BatchFiles", "Build.bat"))
	touch(t, filepath.Join(root, "Engine", "Build", "BatchFiles", "RunUAT.bat"))
	result = (&buildCommandsProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusPass, result.Status)
}

func TestRedistProbe(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	pc := NewContext(root, nil, nil)

	result := (&redistProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusWarn, result.Status)
	require.Equal(t, "ue.run-setup", result.Actions[0].Key)

	touch(t, filepath.Join(root, "Engine", "Extras", "Redist", "en-us", "UEPrereqSetup_x64.exe"))
	result = (&redistProbe{}).Evaluate(ctx, pc)
	require.Equal(t, model.StatusPass, result.Status)
}
