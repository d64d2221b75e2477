// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint error helper and the external
// command capability used by every step that shells out.
//
// prtk-pkg delegates all real work to platform tools (pkgbuild,
// munkiimport, adobe_prtk). Each of those is invoked through a [Runner],
// so pipeline code never calls os/exec directly and tests substitute a
// [FakeRunner] that records invocations and returns canned results.
//
// [ExecRunner] is the production implementation. It captures stdout and
// stderr separately; when the command exits non-zero it returns a
// [CommandError] whose message prefers the captured stderr (tools write
// their diagnostics there) and whose [CommandError.ExitCode] lets the
// entrypoint propagate the tool's exit status.
//
// [FindBinary] resolves a tool by name: PATH first, then a list of fixed
// installation directories. Munki installs munkiimport outside PATH by
// default, which is why the fallback exists.
//
// [Fatal] is the pre-logger error path for main().
package process
