// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prtk

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"

	"github.com/bureau-foundation/prtk-pkg/lib/process"
)

// BinaryName is the file name of the toolkit binary.
const BinaryName = "adobe_prtk"

// DefaultInstallPath is where Creative Cloud Packager installs the
// toolkit.
const DefaultInstallPath = "/Applications/Utilities/Adobe Application Manager/CCP/utilities/APTEE/adobe_prtk"

// installRoot is the target-volume directory that holds versioned
// toolkit installs.
const installRoot = "/usr/local/bin"

// Tool is a located adobe_prtk binary.
type Tool struct {
	// Path is the binary's location on the build host.
	Path string

	// Version is CFBundleVersion from the binary's embedded Info.plist.
	Version string
}

// InstallDirectory is the directory the package installs the tool
// into on the target volume.
func (t Tool) InstallDirectory() string {
	return path.Join(installRoot, BinaryName+"_"+t.Version)
}

// InstallPath is the tool's path on the target volume.
func (t Tool) InstallPath() string {
	return path.Join(t.InstallDirectory(), BinaryName)
}

// Locate returns the first executable adobe_prtk among
// <workingDirectory>/adobe_prtk and installPath. A candidate counts only
// if it is a regular file this process may execute.
func Locate(workingDirectory, installPath string) (string, error) {
	candidates := []string{filepath.Join(workingDirectory, BinaryName), installPath}
	for _, candidate := range candidates {
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found or not executable in %s or at %q: install Creative Cloud Packager or copy %s into the working directory",
		BinaryName, workingDirectory, installPath, BinaryName)
}

// CheckExecutable verifies an explicitly configured tool path.
func CheckExecutable(toolPath string) error {
	if !isExecutableFile(toolPath) {
		return fmt.Errorf("%s is not an executable file", toolPath)
	}
	return nil
}

func isExecutableFile(candidate string) bool {
	return process.CheckExecutable(candidate) == nil
}

// versionPattern is the allow-list for versions read from the binary.
// The value becomes a path component, so separators and dot-only
// names are excluded by construction.
var versionPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// ValidateVersion rejects a probed version that cannot safely be used
// as a path component.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("%s version is empty", BinaryName)
	}
	if len(version) > 64 || !versionPattern.MatchString(version) {
		return fmt.Errorf("%s version %q contains characters not allowed in an install path", BinaryName, version)
	}
	return nil
}

// ActivationArgs returns the adobe_prtk arguments that fetch the
// package pools and volume-serialize using provFile, streaming output
// to the installer log.
func ActivationArgs(provFile string) []string {
	return []string{
		"--tool=GetPackagePools",
		"--tool=VolumeSerialize",
		"--stream",
		"--provfile=" + provFile,
	}
}

// DeactivationArgs returns the adobe_prtk arguments that deactivate
// the serialization for leid. Product software tags are deliberately
// kept: they belong to the product installer.
func DeactivationArgs(leid string) []string {
	return []string{
		"--tool=UnSerialize",
		"--leid=" + leid,
		"--deactivate",
	}
}
