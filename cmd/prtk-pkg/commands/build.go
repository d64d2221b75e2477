// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli"
	"github.com/bureau-foundation/prtk-pkg/lib/buildconfig"
	"github.com/bureau-foundation/prtk-pkg/lib/packager"
)

type buildParams struct {
	cli.JSONOutput
	configParams
	OutputDirectory string `flag:"output-dir,o" desc:"directory the package is written to (default: config file value, then .)"`
	Workdir         string `flag:"workdir" desc:"use this directory as the workspace and keep it afterwards; it is wiped first, so it must be empty or a previous workdir"`
	KeepWorkspace   bool   `flag:"keep-workspace" desc:"keep the temporary workspace for inspection"`
	SkipImport      bool   `flag:"skip-import" desc:"build the package but do not run munkiimport"`
}

func buildCommand(env *Environment) *cli.Command {
	var params buildParams

	return &cli.Command{
		Name:    "prtk-pkg",
		Summary: "Build and import an Adobe license package",
		Description: `Build a macOS installer package that installs adobe_prtk and a
provisioning file, serializes the license at install time, and imports the
package into Munki with a matching deactivation uninstall script.

Required environment variables:
  PKGNAME            package name, e.g. AdobeCC-Serial
  REVERSE_DOMAIN     package identifier prefix, e.g. com.example
  MUNKI_REPO_SUBDIR  Munki repository subdirectory (not needed with --skip-import)

Optional:
  VERSION            package version (default: today's date, YYYY.MM.DD)
  PRTK_PKG_CONFIG    config file supplying the same values and tool paths`,
		Usage: "prtk-pkg [flags] <prov.xml>",
		Examples: []cli.Example{
			{
				Description: "Build and import into apps/adobe",
				Command:     "PKGNAME=AdobeCC-Serial REVERSE_DOMAIN=com.example MUNKI_REPO_SUBDIR=apps/adobe prtk-pkg prov.xml",
			},
			{
				Description: "Build only, keeping the workspace",
				Command:     "prtk-pkg --skip-import --keep-workspace prov.xml",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("prtk-pkg", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			config, err := env.loadConfig(params.configParams)
			if err != nil {
				return err
			}
			applyBuildFlags(config, params)
			if err := config.SetProvFile(args); err != nil {
				return cli.Validation("%w", err)
			}

			logger = logger.With("package", config.PackageFileName())
			pipeline := env.newPackager(config, logger)
			pipeline.WorkspaceDirectory = params.Workdir
			pipeline.KeepWorkspace = params.KeepWorkspace

			result, err := pipeline.Run(ctx, config)
			if err != nil {
				return categorize(err)
			}

			if done, err := params.EmitJSON(env.Stdout, result); done {
				return err
			}
			printResult(env, result, config)
			return nil
		},
	}
}

func applyBuildFlags(config *buildconfig.Config, params buildParams) {
	if params.OutputDirectory != "" {
		config.OutputDirectory = params.OutputDirectory
	}
	if params.SkipImport {
		config.SkipImport = true
	}
}

func printResult(env *Environment, result *packager.Result, config *buildconfig.Config) {
	fmt.Fprintf(env.Stdout, "Built %s %s\n", result.Identifier, result.Version)
	fmt.Fprintf(env.Stdout, "  package:       %s\n", result.PackagePath)
	fmt.Fprintf(env.Stdout, "  sha256:        %s\n", result.PackageSHA256)
	fmt.Fprintf(env.Stdout, "  leid:          %s\n", result.LEID)
	fmt.Fprintf(env.Stdout, "  adobe_prtk:    %s\n", result.ToolVersion)
	if result.Imported {
		fmt.Fprintf(env.Stdout, "  imported into: %s\n", config.RepoSubdirectory)
	} else {
		fmt.Fprintf(env.Stdout, "  import:        skipped\n")
	}
	if result.Workspace != "" {
		fmt.Fprintf(env.Stdout, "  workspace:     %s\n", result.Workspace)
	}
}
