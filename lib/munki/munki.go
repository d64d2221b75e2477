// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package munki

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/prtk-pkg/lib/process"
)

// BinaryName is the default munkiimport command.
const BinaryName = "munkiimport"

// InstallDirectory is where the Munki tools install.
const InstallDirectory = "/usr/local/munki"

// PackageExtension identifies a built installer package.
const PackageExtension = ".pkg"

// Request describes one repository import.
type Request struct {
	// PackagePath is the installer package to import.
	PackagePath string

	// Subdirectory is the repository subdirectory under pkgs/ and
	// pkgsinfo/.
	Subdirectory string

	// UninstallScript is the file whose content becomes the item's
	// uninstall_script.
	UninstallScript string
}

// Args returns the munkiimport command line for the request.
func (r Request) Args() []string {
	return []string{
		"--nointeractive",
		"--subdirectory", r.Subdirectory,
		"--uninstall-script", r.UninstallScript,
		r.PackagePath,
	}
}

// Importer adds a package to a software repository.
type Importer interface {
	Import(ctx context.Context, request Request) error
}

// Tool is an Importer backed by the munkiimport executable.
type Tool struct {
	// Binary is the munkiimport command. A bare name is resolved
	// through PATH and InstallDirectory.
	Binary string

	// Runner executes the command.
	Runner process.Runner

	// Logger receives munkiimport's output at debug level.
	Logger *slog.Logger
}

// NewTool returns a Tool that runs binary through runner.
func NewTool(binary string, runner process.Runner, logger *slog.Logger) *Tool {
	if binary == "" {
		binary = BinaryName
	}
	return &Tool{Binary: binary, Runner: runner, Logger: logger}
}

// Resolve returns the path of the munkiimport binary that Import will
// run.
func (t *Tool) Resolve() (string, error) {
	return process.FindBinary(t.Binary, InstallDirectory)
}

// Import runs munkiimport. Both the package and the uninstall script
// must exist before the tool is started.
func (t *Tool) Import(ctx context.Context, request Request) error {
	if request.Subdirectory == "" {
		return fmt.Errorf("munkiimport request: subdirectory is required")
	}
	for _, required := range []string{request.PackagePath, request.UninstallScript} {
		if _, err := os.Stat(required); err != nil {
			return fmt.Errorf("munkiimport input: %w", err)
		}
	}

	binary, err := t.Resolve()
	if err != nil {
		return err
	}

	output, err := t.Runner.Run(ctx, binary, request.Args()...)
	if t.Logger != nil && output != "" {
		t.Logger.Debug("munkiimport output", "output", output)
	}
	if err != nil {
		return fmt.Errorf("importing %s: %w", filepath.Base(request.PackagePath), err)
	}
	return nil
}

// FindPackage returns directory/name when it exists as a regular file
// carrying the package extension.
func FindPackage(directory, name string) (string, error) {
	if !strings.EqualFold(filepath.Ext(name), PackageExtension) {
		return "", fmt.Errorf("%s is not an installer package (want %s extension)", name, PackageExtension)
	}

	path := filepath.Join(directory, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("locating built package: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("built package %s is not a regular file", path)
	}
	return path, nil
}
