// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Runner executes an external command and returns its stdout. A
// non-zero exit is reported as a *CommandError.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec. The zero value is ready to use.
type ExecRunner struct {
	// Logger receives one debug record per invocation. Nil disables
	// logging.
	Logger *slog.Logger
}

// Run executes name with args, blocking until it exits. There is no
// timeout beyond ctx: a hung tool hangs the caller until ctx is
// cancelled.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, name, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if r.Logger != nil {
		r.Logger.Debug("running external command", "command", name, "args", args)
	}

	if err := command.Run(); err != nil {
		commandError := &CommandError{
			Command: commandString(name, args),
			Code:    -1,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			commandError.Code = exitError.ExitCode()
		}
		return stdout.String(), commandError
	}
	return stdout.String(), nil
}

// CommandError reports an external command that failed to start or
// exited non-zero.
type CommandError struct {
	// Command is the command line as a single display string.
	Command string

	// Code is the process exit status, or -1 when the process did not
	// start or was terminated by a signal.
	Code int

	// Stderr is the trimmed standard error output.
	Stderr string

	// Err is the underlying os/exec error.
	Err error
}

// Error prefers the tool's own stderr over the generic exec error.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the status the entrypoint should exit with: the
// tool's own exit status when it has one, otherwise 1.
func (e *CommandError) ExitCode() int {
	if e.Code > 0 {
		return e.Code
	}
	return 1
}

// FindBinary resolves an executable by name. A name containing a path
// separator is used as-is. Otherwise PATH is searched first, then each
// fallback directory in order. Either way the result must be a regular
// file the process may execute. Returns the path to the binary.
func FindBinary(name string, fallbackDirectories ...string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if err := CheckExecutable(name); err != nil {
			return "", err
		}
		return name, nil
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	for _, directory := range fallbackDirectories {
		candidate := filepath.Join(directory, name)
		if CheckExecutable(candidate) == nil {
			return candidate, nil
		}
	}

	if len(fallbackDirectories) == 0 {
		return "", fmt.Errorf("%s not found on PATH", name)
	}
	return "", fmt.Errorf("%s not found on PATH or in %s", name, strings.Join(fallbackDirectories, ", "))
}

// CheckExecutable returns an error unless path is a regular file the
// process has permission to execute.
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if err := unix.Access(path, unix.X_OK); err != nil {
		return fmt.Errorf("%s is not executable: %w", path, err)
	}
	return nil
}

func commandString(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
