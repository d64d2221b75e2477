// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/prtk-pkg/cmd/prtk-pkg/cli"
)

type scriptsParams struct {
	cli.JSONOutput
	configParams
}

func scriptsCommand(env *Environment) *cli.Command {
	var params scriptsParams

	return &cli.Command{
		Name:    "scripts",
		Summary: "Print the postinstall and uninstall scripts for a prov file",
		Description: `Locate and probe adobe_prtk, read the LEID from the provisioning file,
and print the scripts a build would generate. Nothing is written to disk.
MUNKI_REPO_SUBDIR is not required.`,
		Usage: "prtk-pkg scripts [flags] <prov.xml>",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("scripts", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			config, err := env.loadConfig(params.configParams)
			if err != nil {
				return err
			}
			config.SkipImport = true
			if err := config.SetProvFile(args); err != nil {
				return cli.Validation("%w", err)
			}

			scripts, err := env.newPackager(config, logger).RenderScripts(ctx, config)
			if err != nil {
				return categorize(err)
			}

			if done, err := params.EmitJSON(env.Stdout, scripts); done {
				return err
			}
			fmt.Fprintf(env.Stdout, "# postinstall (embedded in %s)\n%s\n", config.PackageFileName(), scripts.Postinstall)
			fmt.Fprintf(env.Stdout, "# uninstall_script (attached by munkiimport)\n%s", scripts.Uninstall)
			return nil
		},
	}
}
