// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for prtk-pkg packages.
//
// [WriteFile] and [WriteExecutable] create fixture files with an exact
// mode (umask is overridden). [WriteProvFile] writes a minimal
// prov.xml carrying a given LEID. [FakeToolkit] writes a stand-in
// adobe_prtk into a directory.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no prtk-pkg dependencies.
package testutil
