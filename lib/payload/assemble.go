// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/bureau-foundation/prtk-pkg/lib/prtk"
)

// ProvInstallDirectory is where the prov file lands on the target
// volume. The post-install script deletes it after activation.
const ProvInstallDirectory = "/private/tmp"

// Layout records where the payload files land on the target volume.
type Layout struct {
	// ToolPath is adobe_prtk's installed path.
	ToolPath string

	// ProvPath is the prov file's installed path.
	ProvPath string
}

// PlanLayout returns the install locations Assemble uses for tool and
// provFile without touching the filesystem.
func PlanLayout(tool prtk.Tool, provFile string) Layout {
	return Layout{
		ToolPath: tool.InstallPath(),
		ProvPath: path.Join(ProvInstallDirectory, filepath.Base(provFile)),
	}
}

// Assemble deletes stagingRoot if present and rebuilds it with the
// toolkit binary and the prov file at their install locations. The
// prov file keeps its original name.
func Assemble(stagingRoot string, tool prtk.Tool, provFile string) (Layout, error) {
	if err := os.RemoveAll(stagingRoot); err != nil {
		return Layout{}, fmt.Errorf("clearing staging root: %w", err)
	}

	layout := PlanLayout(tool, provFile)

	// Directory modes mirror the target volume: pkgbuild records them
	// and Installer applies them. /private/tmp is world-writable and
	// sticky there.
	directories := []struct {
		path string
		mode os.FileMode
	}{
		{"usr", 0755},
		{"usr/local", 0755},
		{"usr/local/bin", 0755},
		{tool.InstallDirectory()[1:], 0755},
		{"private", 0755},
		{"private/tmp", os.ModeSticky | 0777},
	}
	for _, directory := range directories {
		full := filepath.Join(stagingRoot, filepath.FromSlash(directory.path))
		if err := os.MkdirAll(full, 0755); err != nil {
			return Layout{}, fmt.Errorf("creating %s: %w", full, err)
		}
		if err := os.Chmod(full, directory.mode); err != nil {
			return Layout{}, fmt.Errorf("setting mode on %s: %w", full, err)
		}
	}

	if err := copyFile(tool.Path, stagePath(stagingRoot, layout.ToolPath), 0755); err != nil {
		return Layout{}, fmt.Errorf("staging %s: %w", prtk.BinaryName, err)
	}
	if err := copyFile(provFile, stagePath(stagingRoot, layout.ProvPath), 0600); err != nil {
		return Layout{}, fmt.Errorf("staging provisioning file: %w", err)
	}

	return layout, nil
}

// stagePath maps a target-volume path into the staging root.
func stagePath(stagingRoot, installPath string) string {
	return filepath.Join(stagingRoot, filepath.FromSlash(installPath))
}

func copyFile(source, destination string, mode os.FileMode) error {
	input, err := os.Open(source)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(output, input); err != nil {
		output.Close()
		return err
	}
	if err := output.Close(); err != nil {
		return err
	}
	return os.Chmod(destination, mode)
}
