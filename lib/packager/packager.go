// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package packager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bureau-foundation/prtk-pkg/lib/binhash"
	"github.com/bureau-foundation/prtk-pkg/lib/buildconfig"
	"github.com/bureau-foundation/prtk-pkg/lib/clock"
	"github.com/bureau-foundation/prtk-pkg/lib/installscript"
	"github.com/bureau-foundation/prtk-pkg/lib/munki"
	"github.com/bureau-foundation/prtk-pkg/lib/payload"
	"github.com/bureau-foundation/prtk-pkg/lib/pkgbuild"
	"github.com/bureau-foundation/prtk-pkg/lib/provfile"
	"github.com/bureau-foundation/prtk-pkg/lib/prtk"
)

// Packager holds the capabilities one build uses.
type Packager struct {
	// Prober reads the toolkit version.
	Prober prtk.Prober

	// Builder builds the package.
	Builder pkgbuild.Builder

	// Importer imports the package. Unused when the config skips the
	// import.
	Importer munki.Importer

	// Logger receives one record per step.
	Logger *slog.Logger

	// Clock stamps the result.
	Clock clock.Clock

	// WorkingDirectory is searched first for adobe_prtk.
	// Default: the process working directory.
	WorkingDirectory string

	// ToolkitInstallPath is the fallback adobe_prtk location.
	// Default: prtk.DefaultInstallPath.
	ToolkitInstallPath string

	// WorkspaceDirectory, when set, is wiped and used as the workspace
	// instead of a fresh temporary directory. See payload.OpenWorkspace
	// for the directories it refuses.
	WorkspaceDirectory string

	// TempParent is where temporary workspaces are created.
	// Default: the system temporary directory.
	TempParent string

	// KeepWorkspace leaves the workspace in place after the run.
	KeepWorkspace bool
}

// Result describes a completed build.
type Result struct {
	Identifier    string `json:"identifier"`
	Version       string `json:"version"`
	LEID          string `json:"leid"`
	ToolVersion   string `json:"tool_version"`
	PackagePath   string `json:"package_path"`
	PackageSHA256 string `json:"package_sha256"`
	StagingDigest string `json:"staging_digest"`
	Imported      bool   `json:"imported"`
	Workspace     string `json:"workspace,omitempty"`
	CompletedAt   string `json:"completed_at"`
}

// StepError reports the pipeline step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

// Step names, in pipeline order.
const (
	StepValidate     = "validate"
	StepLocate       = "locate toolkit"
	StepReadLEID     = "read LEID"
	StepProbe        = "probe toolkit version"
	StepWorkspace    = "create workspace"
	StepRemoveStale  = "remove stale package"
	StepAssemble     = "assemble payload"
	StepHashStaging  = "hash staging tree"
	StepScripts      = "write scripts"
	StepBuild        = "build package"
	StepCleanStaging = "remove build inputs"
	StepVerify       = "verify package"
	StepImport       = "import package"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// run is the mutable state of one pipeline execution.
type run struct {
	packager  *Packager
	config    *buildconfig.Config
	logger    *slog.Logger
	tool      prtk.Tool
	leid      string
	workspace *payload.Workspace
	layout    payload.Layout
	result    Result
}

// Run executes the full pipeline for config.
func (p *Packager) Run(ctx context.Context, config *buildconfig.Config) (*Result, error) {
	r := &run{packager: p, config: config, logger: p.logger()}

	steps := []step{
		{StepValidate, r.validate},
		{StepLocate, r.locate},
		{StepReadLEID, r.readLEID},
		{StepProbe, r.probe},
		{StepWorkspace, r.createWorkspace},
		{StepRemoveStale, r.removeStalePackage},
		{StepAssemble, r.assemble},
		{StepHashStaging, r.hashStaging},
		{StepScripts, r.writeScripts},
		{StepBuild, r.build},
		{StepCleanStaging, r.removeBuildInputs},
		{StepVerify, r.verify},
	}
	if !config.SkipImport {
		steps = append(steps, step{StepImport, r.importPackage})
	}

	err := r.execute(ctx, steps)
	if closeErr := r.closeWorkspace(); closeErr != nil {
		if err == nil {
			return nil, closeErr
		}
		r.logger.Warn("workspace cleanup failed", "error", closeErr)
	}
	if err != nil {
		return nil, err
	}

	r.result.CompletedAt = p.clock().Now().UTC().Format(time.RFC3339)
	return &r.result, nil
}

// Scripts are the generated install-time scripts.
type Scripts struct {
	Postinstall string `json:"postinstall"`
	Uninstall   string `json:"uninstall"`
}

// RenderScripts runs the read-only steps of the pipeline and returns
// the scripts a build would embed, without creating a workspace.
func (p *Packager) RenderScripts(ctx context.Context, config *buildconfig.Config) (*Scripts, error) {
	r := &run{packager: p, config: config, logger: p.logger()}

	steps := []step{
		{StepValidate, r.validate},
		{StepLocate, r.locate},
		{StepReadLEID, r.readLEID},
		{StepProbe, r.probe},
	}
	if err := r.execute(ctx, steps); err != nil {
		return nil, err
	}

	params := r.scriptParams(payload.PlanLayout(r.tool, config.ProvFile))
	return &Scripts{
		Postinstall: installscript.Postinstall(params),
		Uninstall:   installscript.Uninstall(params),
	}, nil
}

func (r *run) execute(ctx context.Context, steps []step) error {
	for _, current := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: current.name, Err: err}
		}
		r.logger.Debug("running step", "step", current.name)
		if err := current.run(ctx); err != nil {
			return &StepError{Step: current.name, Err: err}
		}
	}
	return nil
}

func (r *run) validate(ctx context.Context) error {
	if r.config.ProvFile == "" {
		return errors.New("no provisioning file given")
	}
	return r.config.Validate()
}

func (r *run) locate(ctx context.Context) error {
	var toolPath string
	if r.config.Tools.Prtk != "" {
		if err := prtk.CheckExecutable(r.config.Tools.Prtk); err != nil {
			return err
		}
		toolPath = r.config.Tools.Prtk
	} else {
		workingDirectory := r.packager.WorkingDirectory
		if workingDirectory == "" {
			var err error
			if workingDirectory, err = os.Getwd(); err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
		}
		installPath := r.packager.ToolkitInstallPath
		if installPath == "" {
			installPath = prtk.DefaultInstallPath
		}
		located, err := prtk.Locate(workingDirectory, installPath)
		if err != nil {
			return err
		}
		toolPath = located
	}

	r.tool.Path = toolPath
	r.logger.Info("using toolkit", "step", StepLocate, "path", toolPath)
	return nil
}

func (r *run) readLEID(ctx context.Context) error {
	leid, err := provfile.ReadLEID(r.config.ProvFile)
	if err != nil {
		return err
	}
	r.leid = leid
	r.logger.Info("read license entitlement ID", "step", StepReadLEID, "leid", leid)
	return nil
}

func (r *run) probe(ctx context.Context) error {
	version, err := r.packager.Prober.ProbeVersion(ctx, r.tool.Path)
	if err != nil {
		return err
	}
	if err := prtk.ValidateVersion(version); err != nil {
		return err
	}
	r.tool.Version = version
	r.logger.Info("probed toolkit version", "step", StepProbe, "tool_version", version)
	return nil
}

func (r *run) createWorkspace(ctx context.Context) error {
	var (
		workspace *payload.Workspace
		err       error
	)
	if r.packager.WorkspaceDirectory != "" {
		workspace, err = payload.OpenWorkspace(r.packager.WorkspaceDirectory,
			r.config.ProvFile, r.tool.Path, r.config.OutputDirectory)
	} else {
		workspace, err = payload.NewWorkspace(r.packager.TempParent)
	}
	if err != nil {
		return err
	}
	if r.packager.KeepWorkspace {
		workspace.Keep()
	}
	r.workspace = workspace
	r.logger.Debug("workspace ready", "step", StepWorkspace, "directory", workspace.Directory())
	return nil
}

func (r *run) removeStalePackage(ctx context.Context) error {
	packagePath := r.config.PackagePath()
	if err := os.Remove(packagePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", packagePath, err)
	}
	return nil
}

func (r *run) assemble(ctx context.Context) error {
	layout, err := payload.Assemble(r.workspace.StagingRoot(), r.tool, r.config.ProvFile)
	if err != nil {
		return err
	}
	r.layout = layout
	return nil
}

func (r *run) hashStaging(ctx context.Context) error {
	digest, err := binhash.HashTree(r.workspace.StagingRoot())
	if err != nil {
		return err
	}
	r.result.StagingDigest = binhash.FormatDigest(digest)
	r.logger.Info("staged payload", "step", StepHashStaging,
		"tool_path", r.layout.ToolPath, "prov_path", r.layout.ProvPath, "digest", r.result.StagingDigest)
	return nil
}

func (r *run) scriptParams(layout payload.Layout) installscript.Params {
	return installscript.Params{
		ToolInstallPath:   layout.ToolPath,
		ProvInstallPath:   layout.ProvPath,
		LEID:              r.leid,
		PackageIdentifier: r.config.PackageIdentifier(),
	}
}

func (r *run) writeScripts(ctx context.Context) error {
	if err := r.workspace.PrepareScripts(); err != nil {
		return err
	}
	params := r.scriptParams(r.layout)
	if _, err := installscript.WritePostinstall(r.workspace.ScriptsDirectory(), params); err != nil {
		return err
	}
	return installscript.WriteUninstall(r.workspace.UninstallScriptPath(), params)
}

func (r *run) build(ctx context.Context) error {
	packagePath, err := r.packager.Builder.Build(ctx, pkgbuild.Request{
		Root:             r.workspace.StagingRoot(),
		Identifier:       r.config.PackageIdentifier(),
		Version:          r.config.Version,
		ScriptsDirectory: r.workspace.ScriptsDirectory(),
		OutputPath:       r.config.PackagePath(),
	})
	if err != nil {
		return err
	}
	r.logger.Info("built package", "step", StepBuild, "package", packagePath)
	return nil
}

func (r *run) removeBuildInputs(ctx context.Context) error {
	return r.workspace.RemoveBuildInputs()
}

func (r *run) verify(ctx context.Context) error {
	packagePath, err := munki.FindPackage(r.config.OutputDirectory, r.config.PackageFileName())
	if err != nil {
		return err
	}
	digest, err := binhash.HashFile(packagePath)
	if err != nil {
		return err
	}

	r.result.Identifier = r.config.PackageIdentifier()
	r.result.Version = r.config.Version
	r.result.LEID = r.leid
	r.result.ToolVersion = r.tool.Version
	r.result.PackagePath = packagePath
	r.result.PackageSHA256 = binhash.FormatDigest(digest)
	return nil
}

func (r *run) importPackage(ctx context.Context) error {
	if r.packager.Importer == nil {
		return errors.New("no importer configured")
	}
	err := r.packager.Importer.Import(ctx, munki.Request{
		PackagePath:     r.result.PackagePath,
		Subdirectory:    r.config.RepoSubdirectory,
		UninstallScript: r.workspace.UninstallScriptPath(),
	})
	if err != nil {
		return err
	}
	r.result.Imported = true
	r.logger.Info("imported package", "step", StepImport,
		"package", r.result.PackagePath, "subdirectory", r.config.RepoSubdirectory)
	return nil
}

func (r *run) closeWorkspace() error {
	if r.workspace == nil {
		return nil
	}
	if r.workspace.Kept() {
		r.result.Workspace = r.workspace.Directory()
	}
	return r.workspace.Close()
}

func (p *Packager) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (p *Packager) clock() clock.Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return clock.Real()
}
