package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

const sampleManifest = `schema: 1
id: ue_5.6
ue_version: "5.6"
visual_studio:
  required_major: 17
  min_version: "17.8"
  recommended_version: "17.10"
  required_components:
    - Microsoft.VisualStudio.Workload.NativeDesktop
msvc:
  toolset_family: "14.38"
windows_sdk:
  minimum_version: "10.0.22621.0"
extras:
  cmake:
    name: CMake
    required: true
    package_id: Kitware.CMake
    min_version: "3.28"
horde_uba:
  recommended: true
`

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesAndFingerprints(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "ue_5.6.yaml", sampleManifest)

	m, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "ue_5.6", m.ID)
	require.Equal(t, "5.6", m.EngineLine)
	require.Equal(t, 17, m.VisualStudio.RequiredMajor)
	require.Equal(t, "17.8", m.VisualStudio.MinVersion)
	require.Equal(t, "14.38", m.MSVC.ToolsetFamily)
	require.Len(t, m.Fingerprint, 64)
	require.True(t, m.Extras["cmake"].Required)
	require.NotNil(t, m.Horde)
}

func TestFingerprintIgnoresFormatting(t *testing.T) {
	dir := t.TempDir()
	a := writeManifest(t, dir, "ue_a.yaml", "schema: 1\nid: x\nue_version: \"5.6\"\nvisual_studio:\n  required_major: 17\n")
	b := writeManifest(t, dir, "ue_b.yaml", "ue_version: \"5.6\"\nid: x\n\nvisual_studio:\n    required_major: 17\nschema: 1\n")

	ma, err := Load(a)
	require.NoError(t, err)
	mb, err := Load(b)
	require.NoError(t, err)
	require.Equal(t, ma.Fingerprint, mb.Fingerprint)
}

func TestLoadRejectsUnknownSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "ue_9.yaml", "schema: 99\nid: x\nue_version: \"9.0\"\nvisual_studio:\n  required_major: 20\n")

	_, err := Load(path)
	var manifestErr *uecfgerrors.ManifestError
	require.ErrorAs(t, err, &manifestErr)
	require.Contains(t, err.Error(), "unsupported schema version 99")
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "ue_bad.yaml", "schema: [1\n")

	_, err := Load(path)
	var manifestErr *uecfgerrors.ManifestError
	require.ErrorAs(t, err, &manifestErr)
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "ue_empty.yaml", "schema: 1\nid: x\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestDetectEngineVersion(t *testing.T) {
	root := t.TempDir()
	buildDir := filepath.Join(root, "Engine", "Build")
	require.NoError(t, os.MkdirAll(buildDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "Build.version"),
		[]byte(`{"MajorVersion": 5, "MinorVersion": 6, "PatchVersion": 1}`), 0o644))

	require.Equal(t, "5.6.1", DetectEngineVersion(root))
	require.Empty(t, DetectEngineVersion(t.TempDir()))
	require.Empty(t, DetectEngineVersion(""))
}

func TestResolveByVersionAndAutodetect(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "ue_5.6.yaml", sampleManifest)

	res, err := Resolve("", "5.6", "", dir)
	require.NoError(t, err)
	require.NotNil(t, res.Manifest)
	require.Equal(t, "5.6", res.Manifest.EngineLine)

	root := t.TempDir()
	buildDir := filepath.Join(root, "Engine", "Build")
	require.NoError(t, os.MkdirAll(buildDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "Build.version"),
		[]byte(`{"MajorVersion": 5, "MinorVersion": 6}`), 0o644))

	res, err = Resolve("", "", root, dir)
	require.NoError(t, err)
	require.NotNil(t, res.Manifest)
	require.Equal(t, "5.6", res.DetectedVersion)
}

func TestResolveExplicitMissingIsError(t *testing.T) {
	_, err := Resolve("ue_0.0", "", "", t.TempDir())
	require.Error(t, err)

	_, err = Resolve("", "0.0", "", t.TempDir())
	require.Error(t, err)
}

func TestResolveNothingRequestedIsQuiet(t *testing.T) {
	res, err := Resolve("", "", "", t.TempDir())
	require.NoError(t, err)
	require.Nil(t, res.Manifest)
}

func TestResolveDottedVersionNeverMatchesShorterID(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "ue_5.yaml", sampleManifest)

	_, err := Resolve("", "5.6", "", dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no manifest for UE 5.6")

	res, err := Resolve("", "5", "", dir)
	require.NoError(t, err)
	require.NotNil(t, res.Manifest)
}
