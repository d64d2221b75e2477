// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package munki imports built packages into a Munki repository.
//
// Import shells out to munkiimport non-interactively, attaching the
// deactivation script as the item's uninstall_script. The repository
// location and makecatalogs behaviour come from munkiimport's own
// configuration on the build host.
package munki
