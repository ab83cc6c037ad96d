package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "shout"})
	require.Error(t, err)
}

func TestLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Writer: &buf})
	require.NoError(t, err)

	log.WithFields(map[string]any{"phase": 1, "probe": "toolchain.cmake"}).Info("probe complete")

	out := buf.String()
	require.Contains(t, out, `"phase":1`)
	require.Contains(t, out, `"probe":"toolchain.cmake"`)
	require.Contains(t, out, "probe complete")
}

func TestLoggerTeesIntoFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "uecfg_setup.log")

	log, err := New(Options{Level: "info", Writer: &buf, FilePath: path})
	require.NoError(t, err)
	require.Equal(t, path, log.FilePath())

	log.Info("step done")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "step done")
	require.Contains(t, buf.String(), "step done")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var log *Logger
	log.Info("ignored")
	log.Warn("ignored")
	log.Error(nil, "ignored")
	require.Nil(t, log.WithFields(map[string]any{"k": "v"}))
	require.Empty(t, log.FilePath())
	require.NoError(t, log.Close())
}
