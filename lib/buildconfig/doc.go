// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildconfig loads and validates the parameters of a package
// build.
//
// The required inputs come from the process environment, matching the
// way the tool is driven from Munki admin scripts and CI jobs:
//
//   - PKGNAME -- package name, also the first half of the .pkg file name
//   - MUNKI_REPO_SUBDIR -- repository subdirectory passed to munkiimport
//   - REVERSE_DOMAIN -- identifier prefix; the package identifier is
//     REVERSE_DOMAIN.PKGNAME
//   - VERSION -- optional; defaults to today's date as YYYY.MM.DD
//
// An optional config file (named by --config or PRTK_PKG_CONFIG) may
// supply the same values plus tool path overrides. YAML is the default
// format; files ending in .json or .jsonc are read as JSON with
// comments. Environment variables always win over file values, so a
// shared config file can pin tool locations while each job sets its own
// PKGNAME.
//
// [Config.Validate] reports every missing required value at once (one
// [MissingError] per variable, joined), before any filesystem mutation.
// [Config.SetProvFile] validates the single positional argument.
package buildconfig
