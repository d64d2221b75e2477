// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pkgbuild

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/prtk-pkg/lib/process"
)

// BinaryName is the default pkgbuild command.
const BinaryName = "pkgbuild"

// InstallDirectory is where macOS ships pkgbuild.
const InstallDirectory = "/usr/bin"

// Request describes one package build.
type Request struct {
	// Root is the staging root whose contents become the payload.
	Root string

	// Identifier is the package identifier (reverse-DNS).
	Identifier string

	// Version is the package version.
	Version string

	// ScriptsDirectory holds the postinstall script.
	ScriptsDirectory string

	// OutputPath is the .pkg file to write.
	OutputPath string
}

// Validate reports the first missing field.
func (r Request) Validate() error {
	switch {
	case r.Root == "":
		return fmt.Errorf("pkgbuild request: root is required")
	case r.Identifier == "":
		return fmt.Errorf("pkgbuild request: identifier is required")
	case r.Version == "":
		return fmt.Errorf("pkgbuild request: version is required")
	case r.ScriptsDirectory == "":
		return fmt.Errorf("pkgbuild request: scripts directory is required")
	case r.OutputPath == "":
		return fmt.Errorf("pkgbuild request: output path is required")
	}
	return nil
}

// Args returns the pkgbuild command line for the request.
func (r Request) Args() []string {
	return []string{
		"--root", r.Root,
		"--identifier", r.Identifier,
		"--version", r.Version,
		"--scripts", r.ScriptsDirectory,
		r.OutputPath,
	}
}

// Builder produces an installer package.
type Builder interface {
	Build(ctx context.Context, request Request) (string, error)
}

// Tool is a Builder backed by the pkgbuild executable.
type Tool struct {
	// Binary is the pkgbuild command. A bare name is resolved through
	// PATH and InstallDirectory.
	Binary string

	// Runner executes the command.
	Runner process.Runner

	// Logger receives pkgbuild's output at debug level.
	Logger *slog.Logger
}

// NewTool returns a Tool that runs binary through runner.
func NewTool(binary string, runner process.Runner, logger *slog.Logger) *Tool {
	if binary == "" {
		binary = BinaryName
	}
	return &Tool{Binary: binary, Runner: runner, Logger: logger}
}

// Resolve returns the path of the pkgbuild binary that Build will run.
func (t *Tool) Resolve() (string, error) {
	return process.FindBinary(t.Binary, InstallDirectory)
}

// Build runs pkgbuild and returns the path of the written package. The
// package must exist afterwards even when pkgbuild exits zero.
func (t *Tool) Build(ctx context.Context, request Request) (string, error) {
	if err := request.Validate(); err != nil {
		return "", err
	}

	binary, err := t.Resolve()
	if err != nil {
		return "", err
	}

	output, err := t.Runner.Run(ctx, binary, request.Args()...)
	if t.Logger != nil && output != "" {
		t.Logger.Debug("pkgbuild output", "output", output)
	}
	if err != nil {
		return "", fmt.Errorf("building %s: %w", request.OutputPath, err)
	}

	if _, err := os.Stat(request.OutputPath); err != nil {
		return "", fmt.Errorf("pkgbuild exited successfully but %s is missing: %w", request.OutputPath, err)
	}
	return request.OutputPath, nil
}
