// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to directory/name with exactly mode and
// returns the path. Parent directories are created as needed.
func WriteFile(t testing.TB, directory, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
	return path
}

// WriteExecutable writes a /bin/sh script with mode 0755.
func WriteExecutable(t testing.TB, directory, name, body string) string {
	t.Helper()
	return WriteFile(t, directory, name, "#!/bin/sh\n"+body, 0755)
}

// WriteProvFile writes a prov.xml whose EnigmaData carries leid.
func WriteProvFile(t testing.TB, directory, leid string) string {
	t.Helper()
	content := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<Provisioning version="1.0">
  <EnigmaData type="Volume" leid=%q>
    <DeploymentPoolID>00000000-0000-0000-0000-000000000000</DeploymentPoolID>
    <EncryptedSerial>0000</EncryptedSerial>
  </EnigmaData>
</Provisioning>
`, leid)
	return WriteFile(t, directory, "prov.xml", content, 0644)
}

// FakeToolkit writes an executable named adobe_prtk into directory and
// returns its path. Its content is fixed so staging trees built from
// it hash identically across tests.
func FakeToolkit(t testing.TB, directory string) string {
	t.Helper()
	return WriteExecutable(t, directory, "adobe_prtk", "echo adobe_prtk \"$@\"\n")
}
