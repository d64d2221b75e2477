// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the prtk-pkg command tree.
//
// The root command runs the build pipeline for a provisioning file;
// the doctor, scripts, and version subcommands inspect the build host,
// preview the generated scripts, and report build information. Every
// command takes its process-level dependencies (environment, clock,
// external tool runner, stdout) from an [Environment], so the whole
// tree runs in tests against fakes.
package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli"
	"github.com/bureau-foundation/prtk-pkg/lib/buildconfig"
	"github.com/bureau-foundation/prtk-pkg/lib/clock"
	"github.com/bureau-foundation/prtk-pkg/lib/munki"
	"github.com/bureau-foundation/prtk-pkg/lib/packager"
	"github.com/bureau-foundation/prtk-pkg/lib/payload"
	"github.com/bureau-foundation/prtk-pkg/lib/pkgbuild"
	"github.com/bureau-foundation/prtk-pkg/lib/process"
	"github.com/bureau-foundation/prtk-pkg/lib/prtk"
)

// Environment holds what commands take from the process.
type Environment struct {
	// Lookup reads environment variables.
	Lookup buildconfig.LookupFunc

	// Clock supplies the default package version.
	Clock clock.Clock

	// Runner executes pkgbuild and munkiimport. Nil selects
	// process.ExecRunner.
	Runner process.Runner

	// Prober reads the adobe_prtk version.
	Prober prtk.Prober

	// Stdout receives command output.
	Stdout io.Writer

	// WorkingDirectory is searched first for adobe_prtk. Empty means
	// the process working directory.
	WorkingDirectory string

	// ToolkitInstallPath is the fallback adobe_prtk location.
	ToolkitInstallPath string

	// StyledOutput enables colored doctor output.
	StyledOutput bool
}

// DefaultEnvironment returns the environment of the running process.
func DefaultEnvironment() *Environment {
	return &Environment{
		Lookup:             os.LookupEnv,
		Clock:              clock.Real(),
		Prober:             prtk.MachOProber{},
		Stdout:             os.Stdout,
		ToolkitInstallPath: prtk.DefaultInstallPath,
		StyledOutput:       cli.StdoutIsTerminal(),
	}
}

// Root builds the complete command tree.
func Root(env *Environment) *cli.Command {
	root := buildCommand(env)
	root.Subcommands = []*cli.Command{
		doctorCommand(env),
		scriptsCommand(env),
		versionCommand(env),
	}
	return root
}

func (env *Environment) runner(logger *slog.Logger) process.Runner {
	if env.Runner != nil {
		return env.Runner
	}
	return process.ExecRunner{Logger: logger}
}

// newPackager wires the pipeline to this environment's capabilities.
func (env *Environment) newPackager(config *buildconfig.Config, logger *slog.Logger) *packager.Packager {
	runner := env.runner(logger)
	return &packager.Packager{
		Prober:             env.Prober,
		Builder:            pkgbuild.NewTool(config.Tools.Pkgbuild, runner, logger),
		Importer:           munki.NewTool(config.Tools.Munkiimport, runner, logger),
		Logger:             logger,
		Clock:              env.Clock,
		WorkingDirectory:   env.WorkingDirectory,
		ToolkitInstallPath: env.ToolkitInstallPath,
	}
}

// configParams are the flags shared by commands that load a build
// configuration.
type configParams struct {
	Config string `flag:"config,c" desc:"YAML or JSONC config file (default: $PRTK_PKG_CONFIG)"`
	Tool   string `flag:"tool" desc:"path to adobe_prtk (default: ./adobe_prtk, then the Creative Cloud Packager install)"`
}

// loadConfig loads the configuration and applies the shared flags.
func (env *Environment) loadConfig(params configParams) (*buildconfig.Config, error) {
	config, err := buildconfig.Load(params.Config, env.Lookup, env.Clock)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	if params.Tool != "" {
		config.Tools.Prtk = params.Tool
	}
	return config, nil
}

// categorize attaches a CLI error category to a pipeline error based
// on the step that failed.
func categorize(err error) error {
	var stepError *packager.StepError
	if !errors.As(err, &stepError) {
		return err
	}
	if errors.Is(err, payload.ErrUnsafeWorkspace) {
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
	}
	switch stepError.Step {
	case packager.StepValidate, packager.StepReadLEID, packager.StepProbe:
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
	case packager.StepLocate:
		return &cli.ToolError{Category: cli.CategoryNotFound, Err: err}
	}
	return err
}
