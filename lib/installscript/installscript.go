// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package installscript generates the shell scripts that activate the
// license at install time and deactivate it at removal.
//
// The post-install script is embedded in the package (pkgbuild's
// --scripts directory) and runs once when the package installs. The
// uninstall script is never part of the payload: munkiimport stores it
// in the pkginfo as the item's uninstall_script, and Munki runs it
// when the item is removed.
//
// Every substituted value is shell-quoted. The values come from the
// operator and from the toolkit binary, not from untrusted users, but a
// LEID routinely contains braces and an install path may contain
// spaces.
package installscript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/prtk-pkg/lib/prtk"
)

// PkgutilPath is the receipt database tool on the target volume.
const PkgutilPath = "/usr/sbin/pkgutil"

// PostinstallName is the file name pkgbuild expects for the
// post-install script.
const PostinstallName = "postinstall"

// Params are the values substituted into both scripts.
type Params struct {
	// ToolInstallPath is adobe_prtk's path on the target volume.
	ToolInstallPath string

	// ProvInstallPath is the prov.xml path on the target volume.
	ProvInstallPath string

	// LEID is the license entitlement ID to deactivate.
	LEID string

	// PackageIdentifier is the receipt the uninstall script forgets.
	PackageIdentifier string
}

// Postinstall returns the post-install script. It serializes with the
// staged prov.xml, always deletes the file afterwards, and exits with
// adobe_prtk's status so a failed activation fails the install.
func Postinstall(params Params) string {
	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	script.WriteString("# Serialize with the provisioning file installed alongside this script,\n")
	script.WriteString("# then delete it: it carries the volume serial.\n")
	writeCommand(&script, params.ToolInstallPath, prtk.ActivationArgs(params.ProvInstallPath))
	script.WriteString("status=$?\n")
	writeCommand(&script, "rm", []string{"-f", params.ProvInstallPath})
	script.WriteString("exit $status\n")
	return script.String()
}

// Uninstall returns the uninstall script: deactivate the LEID, then
// forget the package receipt.
func Uninstall(params Params) string {
	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&script, "# Deactivate the serialization installed by %s.\n", params.PackageIdentifier)
	script.WriteString("#\n")
	script.WriteString("# The versioned adobe_prtk directory is left installed for diagnostics.\n")
	script.WriteString("# Product software tags are not removed; the product installer owns them.\n")
	writeCommand(&script, params.ToolInstallPath, prtk.DeactivationArgs(params.LEID))
	writeCommand(&script, PkgutilPath, []string{"--forget", params.PackageIdentifier})
	return script.String()
}

// WritePostinstall writes the post-install script into scriptsDirectory
// with mode 0755 and returns its path.
func WritePostinstall(scriptsDirectory string, params Params) (string, error) {
	scriptPath := filepath.Join(scriptsDirectory, PostinstallName)
	if err := writeScript(scriptPath, Postinstall(params), 0755); err != nil {
		return "", fmt.Errorf("writing postinstall script: %w", err)
	}
	return scriptPath, nil
}

// WriteUninstall writes the uninstall script to scriptPath with mode
// 0644. munkiimport reads its contents; it is never executed from this
// location.
func WriteUninstall(scriptPath string, params Params) error {
	if err := writeScript(scriptPath, Uninstall(params), 0644); err != nil {
		return fmt.Errorf("writing uninstall script: %w", err)
	}
	return nil
}

func writeScript(scriptPath, content string, mode os.FileMode) error {
	if err := os.WriteFile(scriptPath, []byte(content), mode); err != nil {
		return err
	}
	// WriteFile honours umask; the mode is part of the contract.
	return os.Chmod(scriptPath, mode)
}

func writeCommand(script *strings.Builder, command string, args []string) {
	script.WriteString(shellQuote(command))
	for _, arg := range args {
		script.WriteString(" ")
		script.WriteString(shellQuote(arg))
	}
	script.WriteString("\n")
}

// shellQuote makes one script argument. Install paths and
// identifiers made only of isShellSafe characters are left bare so the
// scripts stay readable; anything else (a LEID in braces, a path with
// spaces) is single-quoted, with embedded single quotes closed,
// escaped and reopened.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, func(char rune) bool { return !isShellSafe(char) }) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// isShellSafe reports whether char is literal to /bin/sh outside quotes.
func isShellSafe(char rune) bool {
	switch {
	case 'a' <= char && char <= 'z', 'A' <= char && char <= 'Z', '0' <= char && char <= '9':
		return true
	}
	return strings.ContainsRune("-_./:=+,@", char)
}
