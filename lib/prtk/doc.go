// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package prtk locates and describes adobe_prtk, Adobe's provisioning
// toolkit enterprise binary.
//
// adobe_prtk ships with Creative Cloud Packager. The build looks for it
// in two places (see [Locate]): a copy in the working directory, which
// lets an admin pin a specific build next to their prov.xml, and the
// CCP installation path. Anything else must be passed explicitly.
//
// The tool's version comes from the Info.plist Apple's linker embeds in
// the __TEXT,__info_plist section of the binary. [MachOProber] reads it
// directly with debug/macho, so probing works on any build host, not
// only macOS. The version is part of the install path
// (/usr/local/bin/adobe_prtk_<version>/adobe_prtk), which lets several
// packages built against different toolkit releases coexist; because
// it comes from the binary rather than the operator, [ValidateVersion]
// checks it against an allow-list before it is used in a path.
//
// [ActivationArgs] and [DeactivationArgs] are the adobe_prtk command
// lines the generated install scripts run.
package prtk
