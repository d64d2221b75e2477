// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package prtk

import (
	"context"
	"debug/macho"
	"errors"
	"fmt"
	"strings"

	"howett.net/plist"
)

// Prober reads the version of a toolkit binary.
type Prober interface {
	ProbeVersion(ctx context.Context, binaryPath string) (string, error)
}

// MachOProber reads CFBundleVersion from the __TEXT,__info_plist
// section of a thin or universal Mach-O binary.
type MachOProber struct{}

// ProbeVersion returns the binary's bundle version. The result is not
// validated; callers pass it through ValidateVersion.
func (MachOProber) ProbeVersion(ctx context.Context, binaryPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := infoPlistSection(binaryPath)
	if err != nil {
		return "", fmt.Errorf("reading embedded Info.plist from %s: %w", binaryPath, err)
	}
	version, err := VersionFromInfoPlist(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", binaryPath, err)
	}
	return version, nil
}

// errNoInfoPlist is returned for Mach-O files without an embedded
// Info.plist section.
var errNoInfoPlist = errors.New("no __TEXT,__info_plist section")

func infoPlistSection(binaryPath string) ([]byte, error) {
	fat, err := macho.OpenFat(binaryPath)
	switch {
	case err == nil:
		defer fat.Close()
		// Every slice of a universal binary embeds the same plist;
		// the first one that has it is authoritative.
		for _, arch := range fat.Arches {
			if data, err := sectionData(arch.File); err == nil {
				return data, nil
			}
		}
		return nil, errNoInfoPlist
	case errors.Is(err, macho.ErrNotFat):
		file, err := macho.Open(binaryPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return sectionData(file)
	default:
		return nil, fmt.Errorf("not a Mach-O binary: %w", err)
	}
}

func sectionData(file *macho.File) ([]byte, error) {
	section := file.Section("__info_plist")
	if section == nil || section.Seg != "__TEXT" {
		return nil, errNoInfoPlist
	}
	return section.Data()
}

type bundleInfo struct {
	BundleVersion      string `plist:"CFBundleVersion"`
	ShortVersionString string `plist:"CFBundleShortVersionString"`
}

// VersionFromInfoPlist decodes an Info.plist (XML or binary) and
// returns CFBundleVersion, falling back to CFBundleShortVersionString.
func VersionFromInfoPlist(data []byte) (string, error) {
	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("decoding Info.plist: %w", err)
	}

	version := strings.TrimSpace(info.BundleVersion)
	if version == "" {
		version = strings.TrimSpace(info.ShortVersionString)
	}
	if version == "" {
		return "", errors.New("no CFBundleVersion or CFBundleShortVersionString in Info.plist")
	}
	return version, nil
}
