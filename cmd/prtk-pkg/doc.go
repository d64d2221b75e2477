// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Prtk-pkg builds a macOS installer package that serializes an Adobe
// volume license at install time and imports it into a Munki
// repository.
//
// Given a provisioning file (prov.xml) exported from Creative Cloud
// Packager, prtk-pkg:
//
//   - locates adobe_prtk and reads its version from the binary,
//   - reads the license entitlement ID (LEID) from prov.xml,
//   - stages adobe_prtk under /usr/local/bin/adobe_prtk_<version>/ and
//     prov.xml under /private/tmp/,
//   - generates a postinstall script that serializes with prov.xml and
//     deletes it, and an uninstall script that deactivates the LEID and
//     forgets the package receipt,
//   - runs pkgbuild, then munkiimport with the uninstall script.
//
// Configuration comes from PKGNAME, VERSION, MUNKI_REPO_SUBDIR and
// REVERSE_DOMAIN, optionally backed by a YAML or JSONC config file.
// The process exits with pkgbuild's or munkiimport's status when one of
// them fails, and 1 for any other error.
//
// Usage:
//
//	prtk-pkg [flags] <prov.xml>
//	prtk-pkg doctor [--fix] [--json]
//	prtk-pkg scripts <prov.xml>
//	prtk-pkg version
package main
