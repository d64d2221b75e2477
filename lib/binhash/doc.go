// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides content digests for build inputs and outputs.
//
// Two digests are produced for every build:
//
//   - [HashFile] -- SHA256 of a single file, streamed with constant
//     memory. Used for the built .pkg; SHA256 is what Munki records as
//     installer_item_hash, so operators can compare the two directly.
//   - [HashTree] -- a BLAKE3 keyed digest of a whole directory tree
//     (relative paths, permission bits, and file contents in lexical
//     order). Used for the staging root, so two runs with the same
//     inputs can be shown to produce the same payload.
//
// [FormatDigest] converts either digest to its canonical hex form for
// log output and JSON results.
//
// This package has no dependencies on other prtk-pkg packages.
package binhash
