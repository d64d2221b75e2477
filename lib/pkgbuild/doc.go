// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pkgbuild builds flat installer packages from a staging root
// with macOS pkgbuild.
//
// Package format details are entirely pkgbuild's: this package only
// assembles the command line and surfaces pkgbuild's exit status. A
// non-zero exit is returned as a *process.CommandError so the
// entrypoint can exit with the same status.
package pkgbuild
