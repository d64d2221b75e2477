// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for prtk-pkg.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/prtk-pkg/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Unset variables keep their development defaults, so an unstamped
// binary reports "0.1.0-dev (unknown, unknown)".
package version
