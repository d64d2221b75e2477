// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The only time-dependent behavior in prtk-pkg is the default package
// version, which is today's date. Code that needs the current time
// accepts a [Clock] instead of calling time.Now directly, so tests can
// pin the date:
//
//	c := clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
//	config, err := buildconfig.FromEnvironment(lookup, c)
//
// In production, [Real] returns a Clock backed by the time package.
package clock
