// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for prtk-pkg.
//
// The central type is [Command], which represents a named command with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. The tree is assembled in cmd/prtk-pkg/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// The root command both runs the build (positional prov file) and
// carries subcommands. A first argument that names no subcommand is
// handed to the root's Run, unless it is a near-miss of a subcommand
// name and not an existing file, in which case the framework suggests
// the subcommand instead.
//
// Flags are declared as tagged fields on a params struct and bound with
// [FlagsFromParams]. Errors returned from Run are either categorized
// [ToolError]s (validation, not found, internal) or an [ExitError] for
// commands that have already printed their own output.
package cli
