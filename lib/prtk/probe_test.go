// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prtk

import (
	"bytes"
	"context"
	"debug/macho"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const infoPlistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.adobe.adobe_prtk</string>
%s
</dict>
</plist>
`

func infoPlist(entries string) []byte {
	return []byte(strings.Replace(infoPlistTemplate, "%s", entries, 1))
}

func name16(s string) [16]byte {
	var out [16]byte
	copy(out[:], s)
	return out
}

// buildMachO assembles a minimal 64-bit little-endian Mach-O with one
// __TEXT segment holding a single section named sectionName.
func buildMachO(t *testing.T, sectionName string, payload []byte) []byte {
	t.Helper()

	const headerSize = 32
	const loadSize = 72 + 80
	dataOffset := uint32(headerSize + loadSize)

	var buffer bytes.Buffer
	write := func(value any) {
		if err := binary.Write(&buffer, binary.LittleEndian, value); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}

	write(macho.FileHeader{
		Magic:  macho.Magic64,
		Cpu:    macho.CpuAmd64,
		SubCpu: 3,
		Type:   macho.TypeExec,
		Ncmd:   1,
		Cmdsz:  loadSize,
	})
	write(uint32(0)) // reserved word of mach_header_64
	write(macho.Segment64{
		Cmd:     macho.LoadCmdSegment64,
		Len:     loadSize,
		Name:    name16("__TEXT"),
		Memsz:   uint64(len(payload)),
		Offset:  uint64(dataOffset),
		Filesz:  uint64(len(payload)),
		Maxprot: 5,
		Prot:    5,
		Nsect:   1,
	})
	write(macho.Section64{
		Name:   name16(sectionName),
		Seg:    name16("__TEXT"),
		Size:   uint64(len(payload)),
		Offset: dataOffset,
	})
	buffer.Write(payload)
	return buffer.Bytes()
}

func writeBinary(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), BinaryName)
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestMachOProber_ReadsBundleVersion(t *testing.T) {
	plistData := infoPlist("\t<key>CFBundleVersion</key>\n\t<string>9.0.0.2</string>")
	binaryPath := writeBinary(t, buildMachO(t, "__info_plist", plistData))

	version, err := MachOProber{}.ProbeVersion(context.Background(), binaryPath)
	if err != nil {
		t.Fatalf("ProbeVersion: %v", err)
	}
	if version != "9.0.0.2" {
		t.Errorf("ProbeVersion = %q, want %q", version, "9.0.0.2")
	}
}

func TestMachOProber_NoInfoPlistSection(t *testing.T) {
	binaryPath := writeBinary(t, buildMachO(t, "__text", []byte{0xc3}))

	_, err := MachOProber{}.ProbeVersion(context.Background(), binaryPath)
	if err == nil {
		t.Fatal("ProbeVersion succeeded without an __info_plist section")
	}
	if !strings.Contains(err.Error(), "__info_plist") {
		t.Errorf("error = %q, want it to name the missing section", err.Error())
	}
}

func TestMachOProber_NotMachO(t *testing.T) {
	binaryPath := writeBinary(t, []byte("#!/bin/sh\necho not a binary\n"))

	_, err := MachOProber{}.ProbeVersion(context.Background(), binaryPath)
	if err == nil {
		t.Fatal("ProbeVersion succeeded for a shell script")
	}
	if !strings.Contains(err.Error(), "not a Mach-O binary") {
		t.Errorf("error = %q, want 'not a Mach-O binary'", err.Error())
	}
}

func TestMachOProber_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (MachOProber{}).ProbeVersion(ctx, "/nonexistent"); err == nil {
		t.Fatal("ProbeVersion ignored a cancelled context")
	}
}

func TestVersionFromInfoPlist(t *testing.T) {
	tests := []struct {
		name    string
		entries string
		want    string
		wantErr bool
	}{
		{
			name:    "bundle version",
			entries: "<key>CFBundleVersion</key><string>10.0.0.1</string><key>CFBundleShortVersionString</key><string>10.0</string>",
			want:    "10.0.0.1",
		},
		{
			name:    "short version fallback",
			entries: "<key>CFBundleShortVersionString</key><string>10.0</string>",
			want:    "10.0",
		},
		{
			name:    "no version keys",
			entries: "<key>CFBundleName</key><string>adobe_prtk</string>",
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := VersionFromInfoPlist(infoPlist(test.entries))
			if test.wantErr {
				if err == nil {
					t.Fatalf("VersionFromInfoPlist = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("VersionFromInfoPlist: %v", err)
			}
			if got != test.want {
				t.Errorf("VersionFromInfoPlist = %q, want %q", got, test.want)
			}
		})
	}
}

func TestVersionFromInfoPlist_Garbage(t *testing.T) {
	if _, err := VersionFromInfoPlist([]byte("\x00\x01 definitely not a plist")); err == nil {
		t.Fatal("VersionFromInfoPlist accepted garbage")
	}
}
