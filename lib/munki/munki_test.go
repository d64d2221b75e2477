// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package munki

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/bureau-foundation/prtk-pkg/lib/process"
	"github.com/bureau-foundation/prtk-pkg/lib/testutil"
)

func testRequest(t *testing.T) Request {
	t.Helper()
	directory := t.TempDir()
	return Request{
		PackagePath:     testutil.WriteFile(t, directory, "Foo-2024.01.01.pkg", "xar!", 0644),
		Subdirectory:    "apps/adobe",
		UninstallScript: testutil.WriteFile(t, directory, "uninstall.sh", "#!/bin/sh\n", 0644),
	}
}

func TestRequestArgs(t *testing.T) {
	request := Request{
		PackagePath:     "/out/Foo.pkg",
		Subdirectory:    "apps/adobe",
		UninstallScript: "/w/uninstall.sh",
	}
	want := []string{
		"--nointeractive",
		"--subdirectory", "apps/adobe",
		"--uninstall-script", "/w/uninstall.sh",
		"/out/Foo.pkg",
	}
	if got := request.Args(); !slices.Equal(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

func TestImport_Success(t *testing.T) {
	request := testRequest(t)
	binary := testutil.WriteExecutable(t, t.TempDir(), "munkiimport", "exit 0\n")
	runner := &process.FakeRunner{}

	if err := NewTool(binary, runner, nil).Import(context.Background(), request); err != nil {
		t.Fatalf("Import: %v", err)
	}

	invocations := runner.Invocations()
	if len(invocations) != 1 {
		t.Fatalf("got %d invocations, want 1", len(invocations))
	}
	if invocations[0].Name != binary || !slices.Equal(invocations[0].Args, request.Args()) {
		t.Errorf("invocation = %+v", invocations[0])
	}
}

func TestImport_PropagatesExitCode(t *testing.T) {
	request := testRequest(t)
	binary := testutil.WriteExecutable(t, t.TempDir(), "munkiimport", "exit 0\n")
	runner := &process.FakeRunner{Handler: func(name string, args []string) (string, error) {
		return "", &process.CommandError{Command: name, Code: 2, Stderr: "repo not mounted"}
	}}

	err := NewTool(binary, runner, nil).Import(context.Background(), request)
	var commandError *process.CommandError
	if !errors.As(err, &commandError) {
		t.Fatalf("Import error = %v, want *process.CommandError", err)
	}
	if commandError.ExitCode() != 2 {
		t.Errorf("ExitCode() = %d, want 2", commandError.ExitCode())
	}
}

func TestImport_MissingInputs(t *testing.T) {
	binary := testutil.WriteExecutable(t, t.TempDir(), "munkiimport", "exit 0\n")

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"package", func(r *Request) { r.PackagePath = filepath.Join(filepath.Dir(r.PackagePath), "missing.pkg") }},
		{"uninstall script", func(r *Request) { os.Remove(r.UninstallScript) }},
		{"subdirectory", func(r *Request) { r.Subdirectory = "" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			request := testRequest(t)
			test.mutate(&request)
			runner := &process.FakeRunner{}
			if err := NewTool(binary, runner, nil).Import(context.Background(), request); err == nil {
				t.Fatal("Import succeeded")
			}
			if len(runner.Invocations()) != 0 {
				t.Error("munkiimport started despite invalid request")
			}
		})
	}
}

func TestFindPackage(t *testing.T) {
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "Foo-2024.01.01.pkg", "xar!", 0644)
	testutil.WriteFile(t, directory, "Foo-2024.01.01.txt", "notes", 0644)
	if err := os.Mkdir(filepath.Join(directory, "Dir.pkg"), 0755); err != nil {
		t.Fatal(err)
	}

	path, err := FindPackage(directory, "Foo-2024.01.01.pkg")
	if err != nil {
		t.Fatalf("FindPackage: %v", err)
	}
	if path != filepath.Join(directory, "Foo-2024.01.01.pkg") {
		t.Errorf("FindPackage() = %q", path)
	}

	for _, name := range []string{"Foo-2024.01.01.txt", "Missing.pkg", "Dir.pkg"} {
		if _, err := FindPackage(directory, name); err == nil {
			t.Errorf("FindPackage(%q) succeeded", name)
		}
	}
}
