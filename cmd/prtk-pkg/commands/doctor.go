// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli"
	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli/doctor"
	"github.com/bureau-foundation/prtk-pkg/lib/buildconfig"
	"github.com/bureau-foundation/prtk-pkg/lib/installscript"
	"github.com/bureau-foundation/prtk-pkg/lib/munki"
	"github.com/bureau-foundation/prtk-pkg/lib/pkgbuild"
	"github.com/bureau-foundation/prtk-pkg/lib/process"
	"github.com/bureau-foundation/prtk-pkg/lib/prtk"
)

type doctorParams struct {
	cli.JSONOutput
	configParams
	Fix bool `flag:"fix" desc:"make ./adobe_prtk executable if it is not"`
}

func doctorCommand(env *Environment) *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check the build host for the tools and settings a build needs",
		Description: `Check for adobe_prtk (and read its version), pkgbuild, munkiimport,
pkgutil, and the required environment variables. Prints one line per check
and exits 1 if any check failed.`,
		Usage: "prtk-pkg doctor [flags]",
		Examples: []cli.Example{
			{Description: "Check the build host", Command: "prtk-pkg doctor"},
			{Description: "Machine-readable output", Command: "prtk-pkg doctor --json"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("doctor", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			results := runChecks(ctx, env, params)
			if params.Fix {
				if fixed := doctor.ExecuteFixes(ctx, results); fixed > 0 {
					logger.Info("applied fixes", "count", fixed)
				}
			}

			if done, err := params.EmitJSON(env.Stdout, doctor.BuildJSON(results)); done {
				if err != nil {
					return err
				}
				if doctor.Failed(results) {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}

			if doctor.PrintChecklist(env.Stdout, results, params.Fix, env.StyledOutput) {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, env *Environment, params doctorParams) []doctor.Result {
	config, err := buildconfig.Load(params.Config, env.Lookup, env.Clock)
	if err != nil {
		return []doctor.Result{doctor.Fail("config", err.Error())}
	}
	if params.Tool != "" {
		config.Tools.Prtk = params.Tool
	}

	var results []doctor.Result
	results = append(results, checkEnvironment(config)...)
	results = append(results, checkToolkit(ctx, env, config)...)
	results = append(results, checkBinary(pkgbuild.NewTool(config.Tools.Pkgbuild, nil, nil).Resolve, pkgbuild.BinaryName))
	results = append(results, checkBinary(munki.NewTool(config.Tools.Munkiimport, nil, nil).Resolve, munki.BinaryName))
	results = append(results, checkPkgutil())
	return results
}

func checkEnvironment(config *buildconfig.Config) []doctor.Result {
	required := []struct {
		variable string
		value    string
	}{
		{buildconfig.EnvPackageName, config.PackageName},
		{buildconfig.EnvReverseDomain, config.ReverseDomain},
		{buildconfig.EnvRepoSubdirectory, config.RepoSubdirectory},
	}

	var results []doctor.Result
	for _, entry := range required {
		if entry.value == "" {
			results = append(results, doctor.Fail(entry.variable, "not set"))
		} else {
			results = append(results, doctor.Pass(entry.variable, entry.value))
		}
	}
	results = append(results, doctor.Pass(buildconfig.EnvVersion, config.Version))

	if config.PackageName != "" && config.ReverseDomain != "" {
		// Only the naming checks: missing variables are reported above.
		naming := *config
		naming.SkipImport = true
		if err := naming.Validate(); err != nil {
			results = append(results, doctor.Fail("package name", err.Error()))
		} else {
			results = append(results, doctor.Pass("package name",
				fmt.Sprintf("%s (%s)", config.PackageFileName(), config.PackageIdentifier())))
		}
	}
	return results
}

func checkToolkit(ctx context.Context, env *Environment, config *buildconfig.Config) []doctor.Result {
	const name = prtk.BinaryName

	var toolPath string
	if config.Tools.Prtk != "" {
		if err := prtk.CheckExecutable(config.Tools.Prtk); err != nil {
			return []doctor.Result{doctor.Fail(name, err.Error()), doctor.Skip(name+" version", "no toolkit")}
		}
		toolPath = config.Tools.Prtk
	} else {
		workingDirectory := env.WorkingDirectory
		if workingDirectory == "" {
			workingDirectory, _ = os.Getwd()
		}
		located, err := prtk.Locate(workingDirectory, env.ToolkitInstallPath)
		if err != nil {
			return []doctor.Result{toolkitFailure(workingDirectory, err), doctor.Skip(name+" version", "no toolkit")}
		}
		toolPath = located
	}

	results := []doctor.Result{doctor.Pass(name, toolPath)}
	version, err := env.Prober.ProbeVersion(ctx, toolPath)
	if err == nil {
		err = prtk.ValidateVersion(version)
	}
	if err != nil {
		return append(results, doctor.Fail(name+" version", err.Error()))
	}
	tool := prtk.Tool{Path: toolPath, Version: version}
	return append(results, doctor.Pass(name+" version", fmt.Sprintf("%s (installs to %s)", version, tool.InstallPath())))
}

// toolkitFailure offers a chmod fix when the only problem is a
// non-executable adobe_prtk in the working directory.
func toolkitFailure(workingDirectory string, locateErr error) doctor.Result {
	candidate := filepath.Join(workingDirectory, prtk.BinaryName)
	info, err := os.Stat(candidate)
	if err != nil || !info.Mode().IsRegular() {
		return doctor.Fail(prtk.BinaryName, locateErr.Error())
	}
	return doctor.FailWithFix(prtk.BinaryName,
		fmt.Sprintf("%s is not executable", candidate),
		fmt.Sprintf("chmod 0755 %s", candidate),
		func(context.Context) error {
			return os.Chmod(candidate, info.Mode().Perm()|0755)
		})
}

func checkBinary(resolve func() (string, error), name string) doctor.Result {
	path, err := resolve()
	if err != nil {
		return doctor.Fail(name, err.Error())
	}
	return doctor.Pass(name, path)
}

// checkPkgutil warns rather than fails: pkgutil runs on the client from
// the uninstall script, not on the build host.
func checkPkgutil() doctor.Result {
	path, err := process.FindBinary(installscript.PkgutilPath)
	if err != nil {
		return doctor.Warn("pkgutil", fmt.Sprintf("%s not found on this host; clients need it to uninstall", installscript.PkgutilPath))
	}
	return doctor.Pass("pkgutil", path)
}
