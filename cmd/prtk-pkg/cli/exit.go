// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command handler returns an ExitError, the
// entrypoint exits with the specified code without printing the error
// string: the command has already written its own output.
//
// "prtk-pkg doctor" returns one when a check failed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitStatus maps an error returned from the command tree to a process
// exit status and reports whether the error message should be printed.
//
// An *ExitError exits silently with its code. Any other error in the
// chain with an ExitCode method (such as a failed pkgbuild or
// munkiimport run) supplies the status and is printed. Everything else
// exits 1.
func ExitStatus(err error) (code int, printMessage bool) {
	if err == nil {
		return 0, false
	}

	var exitError *ExitError
	if errors.As(err, &exitError) {
		return exitError.Code, false
	}

	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		if code := coder.ExitCode(); code > 0 {
			return code, true
		}
	}
	return 1, true
}
