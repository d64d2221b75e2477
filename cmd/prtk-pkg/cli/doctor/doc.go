// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the check-and-report workflow behind
// "prtk-pkg doctor".
//
// Each check produces a [Result] with a status and a message. Fixable
// failures carry a fix closure that runs in --fix mode. The package
// provides:
//
//   - [Result] type with status, message, and optional fix action
//   - Constructors: [Pass], [Fail], [FailWithFix], [Warn], [Skip]
//   - [ExecuteFixes] for running fix closures
//   - [PrintChecklist] for human-readable output, styled with lipgloss
//     when writing to a terminal
//   - [BuildJSON] for machine-readable output
//
// What to check lives in the doctor command; this package provides
// only the workflow.
package doctor
