// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the private directory one build works in.
type Workspace struct {
	directory string
	keep      bool
}

// NewWorkspace creates a fresh temporary workspace under parent (the
// system temporary directory when parent is empty).
func NewWorkspace(parent string) (*Workspace, error) {
	directory, err := os.MkdirTemp(parent, "prtk-pkg-*")
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{directory: directory}, nil
}

// MarkerName is the file OpenWorkspace leaves in an explicit
// workspace. A non-empty directory without it is never cleared.
const MarkerName = ".prtk-pkg-workspace"

// ErrUnsafeWorkspace is returned when OpenWorkspace would delete files
// it does not own.
var ErrUnsafeWorkspace = errors.New("unsafe workspace directory")

// OpenWorkspace uses directory as the workspace, deleting anything
// already there. The directory must be absent, empty, or a workspace
// from an earlier run (it holds [MarkerName]), and must not contain
// any of the protected paths (build inputs and the output directory).
// The directory is kept on Close.
func OpenWorkspace(directory string, protected ...string) (*Workspace, error) {
	if directory == "" {
		return nil, fmt.Errorf("%w: no directory given", ErrUnsafeWorkspace)
	}
	absolute, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace %s: %w", directory, err)
	}
	if absolute == filepath.Dir(absolute) {
		return nil, fmt.Errorf("%w: %s is a filesystem root", ErrUnsafeWorkspace, absolute)
	}
	for _, path := range protected {
		if path == "" {
			continue
		}
		inside, err := contains(absolute, path)
		if err != nil {
			return nil, err
		}
		if inside {
			return nil, fmt.Errorf("%w: %s contains %s", ErrUnsafeWorkspace, absolute, path)
		}
	}

	entries, err := os.ReadDir(absolute)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading workspace %s: %w", absolute, err)
	case len(entries) > 0:
		if _, err := os.Lstat(filepath.Join(absolute, MarkerName)); err != nil {
			return nil, fmt.Errorf("%w: %s is not empty and was not created by prtk-pkg", ErrUnsafeWorkspace, absolute)
		}
	}

	if err := os.RemoveAll(absolute); err != nil {
		return nil, fmt.Errorf("clearing workspace %s: %w", absolute, err)
	}
	if err := os.MkdirAll(absolute, 0755); err != nil {
		return nil, fmt.Errorf("creating workspace %s: %w", absolute, err)
	}
	if err := os.WriteFile(filepath.Join(absolute, MarkerName), nil, 0644); err != nil {
		return nil, fmt.Errorf("marking workspace %s: %w", absolute, err)
	}
	return &Workspace{directory: absolute, keep: true}, nil
}

// contains reports whether path is directory or lies beneath it.
func contains(directory, path string) (bool, error) {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", path, err)
	}
	relative, err := filepath.Rel(directory, absolute)
	if err != nil {
		return false, nil
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// Directory returns the workspace directory.
func (w *Workspace) Directory() string { return w.directory }

// StagingRoot returns the staging root passed to pkgbuild --root.
func (w *Workspace) StagingRoot() string { return filepath.Join(w.directory, "root") }

// ScriptsDirectory returns the directory passed to pkgbuild --scripts.
func (w *Workspace) ScriptsDirectory() string { return filepath.Join(w.directory, "scripts") }

// UninstallScriptPath returns where the uninstall script is written.
func (w *Workspace) UninstallScriptPath() string {
	return filepath.Join(w.directory, "uninstall.sh")
}

// Keep retains the workspace on Close.
func (w *Workspace) Keep() { w.keep = true }

// Kept reports whether Close will leave the workspace in place.
func (w *Workspace) Kept() bool { return w.keep }

// PrepareScripts recreates an empty scripts directory.
func (w *Workspace) PrepareScripts() error {
	if err := os.RemoveAll(w.ScriptsDirectory()); err != nil {
		return fmt.Errorf("clearing scripts directory: %w", err)
	}
	if err := os.MkdirAll(w.ScriptsDirectory(), 0755); err != nil {
		return fmt.Errorf("creating scripts directory: %w", err)
	}
	return nil
}

// RemoveBuildInputs deletes the staging root and scripts directory
// once pkgbuild has consumed them. The uninstall script stays: the
// import step still needs it.
func (w *Workspace) RemoveBuildInputs() error {
	return errors.Join(
		os.RemoveAll(w.StagingRoot()),
		os.RemoveAll(w.ScriptsDirectory()),
	)
}

// Close removes the workspace unless it is kept.
func (w *Workspace) Close() error {
	if w.keep {
		return nil
	}
	if err := os.RemoveAll(w.directory); err != nil {
		return fmt.Errorf("removing workspace %s: %w", w.directory, err)
	}
	return nil
}
