// Package configwriter mutates engine config files under a strict
// allow-list and backup-first discipline. Every change is previewable
// as a diff before anything touches disk, and an apply that would
// change nothing writes nothing.
package configwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/internal/logger"
	"github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/diff"
	uecfgerrors "github.com/SometimesYouNeverKnow/Unreal-Engine-Dev-Configurator/pkg/errors"
)

// Setting is one desired key assignment within an ini section.
type Setting struct {
	Section string
	Key     string
	Value   string
}

// Mutation is a proposed change to one file. Before and After hold the
// full contents; an empty Diff means the file is already at the desired
// value and Apply becomes a no-op.
type Mutation struct {
	Path       string
	Before     []byte
	After      []byte
	Diff       string
	BackupPath string
	applied    bool
}

// Empty reports whether applying the mutation would change the file.
func (m *Mutation) Empty() bool { return m.Diff == "" }

// Writer proposes and applies config mutations. Only keys registered
// on the allow-list may be assigned; everything else in the file is
// preserved byte for byte.
type Writer struct {
	allowed map[string]map[string]bool
	log     *logger.Logger
}

// NewWriter creates a writer with an empty allow-list.
func NewWriter(log *logger.Logger) *Writer {
	return &Writer{allowed: map[string]map[string]bool{}, log: log}
}

// Allow registers one section/key pair as mutable.
func (w *Writer) Allow(section, key string) *Writer {
	if w.allowed[section] == nil {
		w.allowed[section] = map[string]bool{}
	}
	w.allowed[section][key] = true
	return w
}

// Allowed reports whether a section/key pair may be mutated.
func (w *Writer) Allowed(section, key string) bool {
	return w.allowed[section][key]
}

// Propose computes the mutation that would bring the file to the
// desired settings. A missing file proposes creation from empty. Any
// setting outside the allow-list is rejected before disk is touched.
func (w *Writer) Propose(path string, settings []Setting) (*Mutation, error) {
	for _, s := range settings {
		if !w.Allowed(s.Section, s.Key) {
			return nil, uecfgerrors.NewConfigWriteError(path, "",
				fmt.Errorf("key [%s] %s is not on the allow-list", s.Section, s.Key))
		}
	}

	before, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, uecfgerrors.NewConfigWriteError(path, "", err)
	}

	after := applySettings(before, settings)
	return &Mutation{
		Path:   path,
		Before: before,
		After:  after,
		Diff:   diff.Unified(before, after, path, path+" (proposed)"),
	}, nil
}

// ProposeFile computes a whole-file mutation, used for generated
// templates rather than keyed ini edits.
func (w *Writer) ProposeFile(path string, desired []byte) (*Mutation, error) {
	before, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, uecfgerrors.NewConfigWriteError(path, "", err)
	}
	return &Mutation{
		Path:   path,
		Before: before,
		After:  desired,
		Diff:   diff.Unified(before, desired, path, path+" (proposed)"),
	}, nil
}

// Apply writes the mutation. The original content is backed up first;
// if the backup cannot be written the mutation is aborted untouched.
// Applying an empty mutation reports no changes and writes nothing,
// so re-running an already-applied fix costs nothing.
func (w *Writer) Apply(m *Mutation) error {
	if m.Empty() {
		if w.log != nil {
			w.log.WithFields(map[string]any{"path": m.Path}).Info("no changes")
		}
		return nil
	}
	if m.applied {
		return nil
	}

	if len(m.Before) > 0 || fileExists(m.Path) {
		backupPath, err := createBackup(m.Path, m.Before)
		if err != nil {
			return uecfgerrors.NewConfigWriteError(m.Path, "", fmt.Errorf("backup failed: %w", err))
		}
		m.BackupPath = backupPath
	}

	if err := writeAtomic(m.Path, m.After, 0o644); err != nil {
		return uecfgerrors.NewConfigWriteError(m.Path, m.BackupPath, err)
	}
	m.applied = true
	if w.log != nil {
		w.log.WithFields(map[string]any{"path": m.Path, "backup": m.BackupPath}).Info("config updated")
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func createBackup(path string, content []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	timestamp := time.Now().UTC().Format("20060102T150405")
	backupPath := filepath.Join(dir, fmt.Sprintf("%s.%s.bak", base, timestamp))
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return "", err
	}
	return backupPath, nil
}

func writeAtomic(path string, content []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
