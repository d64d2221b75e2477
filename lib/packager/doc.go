// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package packager runs the build pipeline: validate the
// configuration, locate and probe adobe_prtk, read the LEID from the
// provisioning file, stage the payload, generate the scripts, build
// the package, and import it into Munki.
//
// The pipeline is an ordered list of named steps. Each step returns an
// error and the first failure aborts the run with a *StepError naming
// the step. Everything that reads user input runs before the first
// step that writes to disk, so invalid configuration never leaves a
// partial workspace or deletes an earlier package.
//
// External tools are reached only through capability interfaces
// ([prtk.Prober], [pkgbuild.Builder], [munki.Importer]), so the whole
// pipeline runs in tests against fakes.
package packager
