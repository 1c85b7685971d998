// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.
//
// rhash is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// rhash is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with rhash.  If not, see <https://www.gnu.org/licenses/>.

package rhash

import (
	"bytes"
	"crypto/md5" //nolint:gosec // fingerprinting, not security-sensitive
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFromBufferPlain(t *testing.T) {
	t.Parallel()

	buf := bytes.Repeat([]byte{0xAB}, 1024)
	hash, err := HashFromBuffer(ConsoleGameBoy, buf)
	if err != nil {
		t.Fatalf("HashFromBuffer() error = %v", err)
	}

	sum := md5.Sum(buf) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if hash != want {
		t.Errorf("HashFromBuffer() = %s, want %s", hash, want)
	}
}

func TestHashFromBufferStripsHeader(t *testing.T) {
	t.Parallel()

	rom := bytes.Repeat([]byte{0x01}, 2048)
	buf := append([]byte("NES\x1A\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), rom...)

	hash, err := HashFromBuffer(ConsoleNES, buf)
	if err != nil {
		t.Fatalf("HashFromBuffer() error = %v", err)
	}

	sum := md5.Sum(rom) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if hash != want {
		t.Errorf("HashFromBuffer() = %s, want %s (header not stripped)", hash, want)
	}
}

func TestHashFromFileWholeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.gb")
	content := bytes.Repeat([]byte{0x42}, 4096)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	hash, err := HashFromFile(ConsoleGameBoy, path)
	if err != nil {
		t.Fatalf("HashFromFile() error = %v", err)
	}

	sum := md5.Sum(content) //nolint:gosec // fingerprinting, not security-sensitive
	want := hex.EncodeToString(sum[:])
	if hash != want {
		t.Errorf("HashFromFile() = %s, want %s", hash, want)
	}
}

func TestHashFromFileBufferedConsoleMatchesBuffer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.pce")
	content := bytes.Repeat([]byte{0x07}, 2048)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	fromFile, err := HashFromFile(ConsolePCEngine, path)
	if err != nil {
		t.Fatalf("HashFromFile() error = %v", err)
	}
	fromBuffer, err := HashFromBuffer(ConsolePCEngine, content)
	if err != nil {
		t.Fatalf("HashFromBuffer() error = %v", err)
	}
	if fromFile != fromBuffer {
		t.Errorf("HashFromFile() = %s, HashFromBuffer() = %s, want equal (PC Engine ROMs must go through the buffered-file path)", fromFile, fromBuffer)
	}
}

func TestHashFromFileNonexistent(t *testing.T) {
	t.Parallel()

	_, err := HashFromFile(ConsoleGameBoy, filepath.Join(t.TempDir(), "missing.gb"))
	if err == nil {
		t.Error("HashFromFile() should error for a nonexistent file")
	}
}

func TestHashFromFileArcadeIsPathOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mygame.zip")

	hash, err := HashFromFile(ConsoleArcade, path)
	if err != nil {
		t.Fatalf("HashFromFile() error = %v", err)
	}
	if hash == "" {
		t.Error("HashFromFile() for Arcade should hash the path, not fail for a nonexistent file")
	}
}
