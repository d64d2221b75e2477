// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/zeebo/blake3"
)

// HashFile computes the SHA256 digest of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// treeDomainKey separates staging tree digests from any other BLAKE3
// use. Changing it changes every tree digest.
var treeDomainKey = [32]byte{
	'p', 'r', 't', 'k', '-', 'p', 'k', 'g', '.', 's', 't', 'a', 'g', 'i', 'n', 'g',
	'.', 't', 'r', 'e', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashTree computes a BLAKE3 keyed digest over every entry below root.
// Each entry contributes its slash-separated relative path, its
// permission bits, and for regular files its size and content. The
// root directory itself and modification times are excluded, so the
// same layout built in two different temporary directories hashes
// identically. Symlinks contribute their target.
func HashTree(root string) ([32]byte, error) {
	hasher, err := blake3.NewKeyed(treeDomainKey[:])
	if err != nil {
		return [32]byte{}, fmt.Errorf("initializing tree hasher: %w", err)
	}

	walkError := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}

		header := filepath.ToSlash(relative) + "\x00" + strconv.FormatUint(uint64(info.Mode()), 8) + "\x00"
		hasher.Write([]byte(header))

		switch {
		case info.Mode().IsRegular():
			hasher.Write([]byte(strconv.FormatInt(info.Size(), 10) + "\x00"))
			file, err := os.Open(path)
			if err != nil {
				return err
			}
			_, copyError := io.Copy(hasher, file)
			file.Close()
			if copyError != nil {
				return copyError
			}
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			hasher.Write([]byte(target + "\x00"))
		}
		return nil
	})
	if walkError != nil {
		return [32]byte{}, fmt.Errorf("hashing tree %s: %w", root, walkError)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format used in log output and results.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
