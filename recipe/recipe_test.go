// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"bytes"
	"crypto/md5" //nolint:gosec // fingerprinting, not security-sensitive
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashBuffer(t *testing.T) {
	t.Parallel()

	buf := bytes.Repeat([]byte{0x11}, 4096)
	got := HashBuffer(buf)

	sum := md5.Sum(buf) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashBuffer() = %s, want %s", got, want)
	}
}

func TestHashBufferCapsAtMaxSize(t *testing.T) {
	t.Parallel()

	buf := bytes.Repeat([]byte{0x22}, MaxBufferSize+1024)
	got := HashBuffer(buf)

	sum := md5.Sum(buf[:MaxBufferSize]) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashBuffer() did not cap at MaxBufferSize")
	}
}

func TestHashWholeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rom.bin")
	content := bytes.Repeat([]byte{0x33}, 200000) // spans several wholeFileBufferSize chunks
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := HashWholeFile(path)
	if err != nil {
		t.Fatalf("HashWholeFile() error = %v", err)
	}
	sum := md5.Sum(content) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if got != want {
		t.Errorf("HashWholeFile() = %s, want %s", got, want)
	}
}

func TestHashWholeFileMissing(t *testing.T) {
	t.Parallel()

	_, err := HashWholeFile(filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Error("HashWholeFile() should error for a nonexistent file")
	}
}

func TestReadWholeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rom.bin")
	content := []byte("a small rom")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := ReadWholeFile(path)
	if err != nil {
		t.Fatalf("ReadWholeFile() error = %v", err)
	}
	if !bytes.Equal(buf, content) {
		t.Errorf("ReadWholeFile() = %q, want %q", buf, content)
	}
}

func TestReadWholeFileCapsAtMaxSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rom.bin")
	content := bytes.Repeat([]byte{0x44}, MaxBufferSize+2048)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := ReadWholeFile(path)
	if err != nil {
		t.Fatalf("ReadWholeFile() error = %v", err)
	}
	if len(buf) != MaxBufferSize {
		t.Errorf("ReadWholeFile() len = %d, want %d", len(buf), MaxBufferSize)
	}
}
