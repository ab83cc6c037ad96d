package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifestError(t *testing.T) {
	base := fmt.Errorf("yaml: line 3: mapping values are not allowed")
	err := NewManifestError("manifests/ue_5.6.yaml", "", base)

	var manifestErr *ManifestError
	require.ErrorAs(t, err, &manifestErr)
	require.Equal(t, "manifests/ue_5.6.yaml", manifestErr.Path)
	require.Contains(t, err.Error(), "manifest error: manifests/ue_5.6.yaml")
	require.ErrorIs(t, err, base)
}

func TestProbeErrorWithoutID(t *testing.T) {
	err := NewProbeError("", fmt.Errorf("not found"))
	require.Equal(t, "probe error: not found", err.Error())
}

func TestConfigWriteErrorMentionsBackup(t *testing.T) {
	err := NewConfigWriteError("/tmp/DerivedDataCache.ini", "/tmp/DerivedDataCache.ini.20250101T000000.bak", errors.New("disk full"))
	require.Contains(t, err.Error(), "backup preserved at /tmp/DerivedDataCache.ini.20250101T000000.bak")
}

func TestElevationErrorHasResumeInstruction(t *testing.T) {
	err := NewElevationError("install.cmake", "winget install Kitware.CMake")
	require.Contains(t, err.Error(), "--resume --apply")
	require.Contains(t, err.Error(), "install.cmake")
}

func TestStateErrorUnwraps(t *testing.T) {
	base := errors.New("unexpected end of JSON input")
	err := NewStateError(".uecfg_state.json", base)
	require.ErrorIs(t, err, base)
	require.Contains(t, err.Error(), ".uecfg_state.json")
}
