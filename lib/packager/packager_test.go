// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/prtk-pkg/lib/buildconfig"
	"github.com/bureau-foundation/prtk-pkg/lib/clock"
	"github.com/bureau-foundation/prtk-pkg/lib/installscript"
	"github.com/bureau-foundation/prtk-pkg/lib/munki"
	"github.com/bureau-foundation/prtk-pkg/lib/payload"
	"github.com/bureau-foundation/prtk-pkg/lib/pkgbuild"
	"github.com/bureau-foundation/prtk-pkg/lib/process"
	"github.com/bureau-foundation/prtk-pkg/lib/testutil"
)

type fakeProber struct {
	version string
	err     error
	calls   int
}

func (f *fakeProber) ProbeVersion(ctx context.Context, binaryPath string) (string, error) {
	f.calls++
	return f.version, f.err
}

// fakeBuilder checks the workspace the way pkgbuild would see it and
// writes a package whose content is the postinstall script.
type fakeBuilder struct {
	t        *testing.T
	err      error
	requests []pkgbuild.Request
}

func (f *fakeBuilder) Build(ctx context.Context, request pkgbuild.Request) (string, error) {
	f.t.Helper()
	f.requests = append(f.requests, request)
	if f.err != nil {
		return "", f.err
	}

	if _, err := os.Stat(request.OutputPath); !os.IsNotExist(err) {
		f.t.Errorf("package %s exists before pkgbuild runs (stat err = %v)", request.OutputPath, err)
	}
	info, err := os.Stat(filepath.Join(request.ScriptsDirectory, installscript.PostinstallName))
	if err != nil {
		f.t.Fatalf("postinstall missing at build time: %v", err)
	}
	if info.Mode().Perm() != 0755 {
		f.t.Errorf("postinstall mode = %o, want 0755", info.Mode().Perm())
	}
	if _, err := os.Stat(filepath.Join(request.Root, "usr", "local", "bin", "adobe_prtk_9.0.0.2", "adobe_prtk")); err != nil {
		f.t.Errorf("staged toolkit missing at build time: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(request.ScriptsDirectory, installscript.PostinstallName))
	if err != nil {
		f.t.Fatal(err)
	}
	testutil.WriteFile(f.t, filepath.Dir(request.OutputPath), filepath.Base(request.OutputPath), string(content), 0644)
	return request.OutputPath, nil
}

type fakeImporter struct {
	t         *testing.T
	err       error
	requests  []munki.Request
	uninstall string
}

func (f *fakeImporter) Import(ctx context.Context, request munki.Request) error {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return f.err
	}
	content, err := os.ReadFile(request.UninstallScript)
	if err != nil {
		f.t.Fatalf("uninstall script missing at import time: %v", err)
	}
	f.uninstall = string(content)
	return nil
}

type fixture struct {
	packager *Packager
	config   *buildconfig.Config
	prober   *fakeProber
	builder  *fakeBuilder
	importer *fakeImporter
	temp     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	inputs := t.TempDir()
	temp := t.TempDir()

	config := buildconfig.Default()
	config.PackageName = "Foo"
	config.Version = "2024.01.01"
	config.ReverseDomain = "org.bar"
	config.RepoSubdirectory = "apps/adobe"
	config.OutputDirectory = t.TempDir()
	config.Tools.Prtk = testutil.FakeToolkit(t, inputs)
	config.ProvFile = testutil.WriteProvFile(t, inputs, "XYZ123")

	f := &fixture{
		config:   config,
		prober:   &fakeProber{version: "9.0.0.2"},
		builder:  &fakeBuilder{t: t},
		importer: &fakeImporter{t: t},
		temp:     temp,
	}
	f.packager = &Packager{
		Prober:     f.prober,
		Builder:    f.builder,
		Importer:   f.importer,
		Clock:      clock.Fake(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		TempParent: temp,
	}
	return f
}

func (f *fixture) assertNoWorkspace(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.temp)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace left behind: %d entries in temp parent", len(entries))
	}
}

func stepOf(t *testing.T, err error) string {
	t.Helper()
	var stepError *StepError
	if !errors.As(err, &stepError) {
		t.Fatalf("error %v is not a *StepError", err)
	}
	return stepError.Step
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t)

	result, err := f.packager.Run(context.Background(), f.config)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Identifier != "org.bar.Foo" {
		t.Errorf("Identifier = %q, want org.bar.Foo", result.Identifier)
	}
	if filepath.Base(result.PackagePath) != "Foo-2024.01.01.pkg" {
		t.Errorf("PackagePath = %q, want Foo-2024.01.01.pkg", result.PackagePath)
	}
	if result.LEID != "XYZ123" || result.ToolVersion != "9.0.0.2" {
		t.Errorf("LEID = %q, ToolVersion = %q", result.LEID, result.ToolVersion)
	}
	if len(result.PackageSHA256) != 64 || len(result.StagingDigest) != 64 {
		t.Errorf("digests = %q, %q", result.PackageSHA256, result.StagingDigest)
	}
	if !result.Imported {
		t.Error("Imported = false")
	}
	if result.CompletedAt != "2024-01-01T12:00:00Z" {
		t.Errorf("CompletedAt = %q", result.CompletedAt)
	}
	if result.Workspace != "" {
		t.Errorf("Workspace = %q for a temporary workspace", result.Workspace)
	}

	if len(f.builder.requests) != 1 {
		t.Fatalf("builder called %d times, want 1", len(f.builder.requests))
	}
	request := f.builder.requests[0]
	if request.Identifier != "org.bar.Foo" || request.Version != "2024.01.01" {
		t.Errorf("build request = %+v", request)
	}

	if len(f.importer.requests) != 1 {
		t.Fatalf("importer called %d times, want 1", len(f.importer.requests))
	}
	if f.importer.requests[0].Subdirectory != "apps/adobe" {
		t.Errorf("import subdirectory = %q", f.importer.requests[0].Subdirectory)
	}
	for _, want := range []string{"XYZ123", "--deactivate", "/usr/sbin/pkgutil", "org.bar.Foo"} {
		if !strings.Contains(f.importer.uninstall, want) {
			t.Errorf("uninstall script missing %q:\n%s", want, f.importer.uninstall)
		}
	}

	f.assertNoWorkspace(t)
}

func TestRun_RemovesStalePackage(t *testing.T) {
	f := newFixture(t)
	stale := testutil.WriteFile(t, f.config.OutputDirectory, "Foo-2024.01.01.pkg", "stale", 0644)

	if _, err := f.packager.Run(context.Background(), f.config); err != nil {
		t.Fatalf("Run: %v", err)
	}
	content, err := os.ReadFile(stale)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) == "stale" {
		t.Error("stale package was not replaced")
	}
}

func TestRun_MissingVariablesAbortBeforeStaging(t *testing.T) {
	f := newFixture(t)
	f.config.PackageName = ""
	f.config.ReverseDomain = ""
	stale := testutil.WriteFile(t, f.config.OutputDirectory, "-2024.01.01.pkg", "stale", 0644)

	_, err := f.packager.Run(context.Background(), f.config)
	if err == nil {
		t.Fatal("Run succeeded without PKGNAME and REVERSE_DOMAIN")
	}
	if step := stepOf(t, err); step != StepValidate {
		t.Errorf("failed at %q, want %q", step, StepValidate)
	}
	for _, variable := range []string{"PKGNAME", "REVERSE_DOMAIN"} {
		if !strings.Contains(err.Error(), variable) {
			t.Errorf("error %q does not name %s", err, variable)
		}
	}

	if _, statErr := os.Stat(stale); statErr != nil {
		t.Errorf("output directory modified before validation: %v", statErr)
	}
	if f.prober.calls != 0 {
		t.Error("toolkit probed before validation")
	}
	f.assertNoWorkspace(t)
}

func TestRun_MissingLEIDAbortsBeforeStaging(t *testing.T) {
	f := newFixture(t)
	f.config.ProvFile = testutil.WriteFile(t, t.TempDir(), "prov.xml",
		`<Provisioning><EnigmaData type="Volume"/></Provisioning>`, 0644)
	stale := testutil.WriteFile(t, f.config.OutputDirectory, "Foo-2024.01.01.pkg", "stale", 0644)

	_, err := f.packager.Run(context.Background(), f.config)
	if err == nil {
		t.Fatal("Run succeeded without a LEID")
	}
	if step := stepOf(t, err); step != StepReadLEID {
		t.Errorf("failed at %q, want %q", step, StepReadLEID)
	}
	if _, statErr := os.Stat(stale); statErr != nil {
		t.Errorf("stale package removed before staging: %v", statErr)
	}
	if len(f.builder.requests) != 0 {
		t.Error("builder called")
	}
	f.assertNoWorkspace(t)
}

func TestRun_RejectsUnsafeToolVersion(t *testing.T) {
	f := newFixture(t)
	f.prober.version = "../../etc"

	_, err := f.packager.Run(context.Background(), f.config)
	if err == nil {
		t.Fatal("Run accepted a path-traversing tool version")
	}
	if step := stepOf(t, err); step != StepProbe {
		t.Errorf("failed at %q, want %q", step, StepProbe)
	}
	f.assertNoWorkspace(t)
}

func TestRun_ToolkitNotFound(t *testing.T) {
	f := newFixture(t)
	f.config.Tools.Prtk = ""
	f.packager.WorkingDirectory = t.TempDir()
	f.packager.ToolkitInstallPath = filepath.Join(t.TempDir(), "missing", "adobe_prtk")

	_, err := f.packager.Run(context.Background(), f.config)
	if err == nil {
		t.Fatal("Run succeeded without a toolkit")
	}
	if step := stepOf(t, err); step != StepLocate {
		t.Errorf("failed at %q, want %q", step, StepLocate)
	}
}

func TestRun_ToolkitInWorkingDirectory(t *testing.T) {
	f := newFixture(t)
	f.config.Tools.Prtk = ""
	workingDirectory := t.TempDir()
	testutil.FakeToolkit(t, workingDirectory)
	f.packager.WorkingDirectory = workingDirectory
	f.packager.ToolkitInstallPath = filepath.Join(t.TempDir(), "missing", "adobe_prtk")

	if _, err := f.packager.Run(context.Background(), f.config); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_BuildFailurePropagatesExitCode(t *testing.T) {
	f := newFixture(t)
	f.builder.err = &process.CommandError{Command: "pkgbuild", Code: 4, Stderr: "pkgbuild: error"}

	_, err := f.packager.Run(context.Background(), f.config)
	if step := stepOf(t, err); step != StepBuild {
		t.Errorf("failed at %q, want %q", step, StepBuild)
	}
	var commandError *process.CommandError
	if !errors.As(err, &commandError) || commandError.ExitCode() != 4 {
		t.Errorf("error %v does not carry exit code 4", err)
	}
	if len(f.importer.requests) != 0 {
		t.Error("importer called after a failed build")
	}
	f.assertNoWorkspace(t)
}

func TestRun_ImportFailure(t *testing.T) {
	f := newFixture(t)
	f.importer.err = &process.CommandError{Command: "munkiimport", Code: 1}

	_, err := f.packager.Run(context.Background(), f.config)
	if step := stepOf(t, err); step != StepImport {
		t.Errorf("failed at %q, want %q", step, StepImport)
	}
	f.assertNoWorkspace(t)
}

func TestRun_SkipImport(t *testing.T) {
	f := newFixture(t)
	f.config.SkipImport = true
	f.config.RepoSubdirectory = ""

	result, err := f.packager.Run(context.Background(), f.config)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Imported {
		t.Error("Imported = true with SkipImport")
	}
	if len(f.importer.requests) != 0 {
		t.Error("importer called with SkipImport")
	}
}

func TestRun_KeepWorkspace(t *testing.T) {
	f := newFixture(t)
	f.packager.KeepWorkspace = true

	result, err := f.packager.Run(context.Background(), f.config)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Workspace == "" {
		t.Fatal("Workspace not reported")
	}
	if _, err := os.Stat(filepath.Join(result.Workspace, "uninstall.sh")); err != nil {
		t.Errorf("kept workspace lacks uninstall script: %v", err)
	}
	if _, err := os.Stat(filepath.Join(result.Workspace, "root")); !os.IsNotExist(err) {
		t.Errorf("staging root not removed after build (stat err = %v)", err)
	}
}

func TestRun_RepeatedRunsStageIdenticalTrees(t *testing.T) {
	f := newFixture(t)
	f.packager.WorkspaceDirectory = filepath.Join(t.TempDir(), testutil.UniqueID("work"))

	first, err := f.packager.Run(context.Background(), f.config)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := f.packager.Run(context.Background(), f.config)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if first.StagingDigest != second.StagingDigest {
		t.Errorf("staging digests differ: %s vs %s", first.StagingDigest, second.StagingDigest)
	}
	if first.PackageSHA256 != second.PackageSHA256 {
		t.Errorf("package digests differ: %s vs %s", first.PackageSHA256, second.PackageSHA256)
	}
}

func TestRun_WorkdirHoldingInputsIsRefused(t *testing.T) {
	f := newFixture(t)
	inputs := filepath.Dir(f.config.ProvFile)
	notes := testutil.WriteFile(t, inputs, "notes.txt", "operator notes", 0644)
	f.packager.WorkspaceDirectory = inputs

	_, err := f.packager.Run(context.Background(), f.config)
	if !errors.Is(err, payload.ErrUnsafeWorkspace) {
		t.Fatalf("Run error = %v, want ErrUnsafeWorkspace", err)
	}
	if step := stepOf(t, err); step != StepWorkspace {
		t.Errorf("failed step = %q, want %q", step, StepWorkspace)
	}
	for _, path := range []string{f.config.ProvFile, f.config.Tools.Prtk, notes} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s removed: %v", filepath.Base(path), err)
		}
	}
	if len(f.builder.requests) != 0 {
		t.Error("pkgbuild ran after the workspace was refused")
	}
}

func TestRun_WorkdirRefusals(t *testing.T) {
	tests := []struct {
		name    string
		workdir func(t *testing.T, f *fixture) string
	}{
		{"output directory", func(t *testing.T, f *fixture) string { return f.config.OutputDirectory }},
		{"parent of output directory", func(t *testing.T, f *fixture) string { return filepath.Dir(f.config.OutputDirectory) }},
		{"unrelated non-empty directory", func(t *testing.T, f *fixture) string {
			directory := t.TempDir()
			testutil.WriteFile(t, directory, "keep.txt", "x", 0644)
			return directory
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture(t)
			f.packager.WorkspaceDirectory = test.workdir(t, f)

			_, err := f.packager.Run(context.Background(), f.config)
			if !errors.Is(err, payload.ErrUnsafeWorkspace) {
				t.Fatalf("Run error = %v, want ErrUnsafeWorkspace", err)
			}
			if _, err := os.Stat(f.packager.WorkspaceDirectory); err != nil {
				t.Errorf("workdir removed: %v", err)
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.packager.Run(ctx, f.config)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	f.assertNoWorkspace(t)
}

func TestRenderScripts(t *testing.T) {
	f := newFixture(t)

	scripts, err := f.packager.RenderScripts(context.Background(), f.config)
	if err != nil {
		t.Fatalf("RenderScripts: %v", err)
	}

	toolPath := "/usr/local/bin/adobe_prtk_9.0.0.2/adobe_prtk"
	for _, want := range []string{toolPath, "--tool=VolumeSerialize", "/private/tmp/prov.xml", "exit $status"} {
		if !strings.Contains(scripts.Postinstall, want) {
			t.Errorf("postinstall missing %q:\n%s", want, scripts.Postinstall)
		}
	}
	for _, want := range []string{toolPath, "XYZ123", "--forget"} {
		if !strings.Contains(scripts.Uninstall, want) {
			t.Errorf("uninstall missing %q:\n%s", want, scripts.Uninstall)
		}
	}
	if len(f.builder.requests) != 0 {
		t.Error("RenderScripts built a package")
	}
	f.assertNoWorkspace(t)
}
