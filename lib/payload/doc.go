// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload owns the build workspace and the staging tree that
// pkgbuild turns into the package payload.
//
// A [Workspace] is an explicit directory handle passed through the
// build. By default it is a fresh temporary directory, so concurrent
// builds never share state and nothing in the operator's working
// directory is deleted. An explicit directory (--workdir) is wiped and
// recreated instead, which keeps a stable location for inspecting
// intermediate files. It is only wiped when it is empty or carries the
// marker file of an earlier run, and never when it holds the build
// inputs or the output directory.
//
// Inside the workspace:
//
//	root/                      staging root (pkgbuild --root)
//	  usr/local/bin/adobe_prtk_<version>/adobe_prtk
//	  private/tmp/<prov file name>
//	scripts/postinstall        pkgbuild --scripts
//	uninstall.sh               handed to munkiimport
//
// [Assemble] rebuilds the staging root from scratch on every call, so
// the same inputs always produce the same tree.
package payload
