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
	"os"
	"path/filepath"
	"testing"
)

func TestIteratorKnownExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.gba")
	content := bytes.Repeat([]byte{0x55}, 512)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	it := NewIterator(path, nil)
	defer it.Destroy()

	hash, ok := it.Iterate()
	if !ok {
		t.Fatal("Iterate() should succeed for a known extension")
	}
	want, err := HashFromFile(ConsoleGameBoyAdvance, path)
	if err != nil {
		t.Fatalf("HashFromFile() error = %v", err)
	}
	if hash != want {
		t.Errorf("Iterate() = %s, want %s", hash, want)
	}
}

func TestIteratorUnknownExtensionDefaultsToGameBoy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.xyz")
	content := bytes.Repeat([]byte{0x01}, 256)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	it := NewIterator(path, nil)
	defer it.Destroy()

	if len(it.candidates) != 1 || it.candidates[0].console != ConsoleGameBoy {
		t.Fatalf("candidates = %+v, want single ConsoleGameBoy default", it.candidates)
	}
}

func TestIteratorDskSizeDisambiguation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "disk.dsk")
	content := make([]byte, 512*9*80) // 360KB, an MSX-sized image
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	it := NewIterator(path, nil)
	defer it.Destroy()

	if len(it.candidates) == 0 || it.candidates[0].console != ConsoleMSX {
		t.Fatalf("candidates = %+v, want MSX first for a 360KB dsk", it.candidates)
	}
}

func TestIteratorLargeBinUsesDiscCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "disc.bin")
	f, err := os.Create(path) //nolint:gosec // test file path
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.Truncate(binRawModeThreshold + 1); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	it := NewIterator(path, nil)
	defer it.Destroy()

	if len(it.candidates) != len(binCandidates) {
		t.Fatalf("candidates len = %d, want %d (disc fallback order)", len(it.candidates), len(binCandidates))
	}
	if it.candidates[0].console != Console3DO {
		t.Errorf("candidates[0] = %v, want Console3DO first", it.candidates[0].console)
	}
}

func TestIteratorSmallBinIsMegaDrive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "game.bin")
	content := make([]byte, 1024)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	it := NewIterator(path, nil)
	defer it.Destroy()

	if len(it.candidates) != 1 || it.candidates[0].console != ConsoleMegaDrive {
		t.Fatalf("candidates = %+v, want single ConsoleMegaDrive", it.candidates)
	}
}

func TestIteratorExhaustionReturnsFalse(t *testing.T) {
	t.Parallel()

	it := &Iterator{candidates: nil}
	hash, ok := it.Iterate()
	if ok || hash != "" {
		t.Errorf("Iterate() = (%q, %v), want (\"\", false) on exhaustion", hash, ok)
	}
}

func TestIteratorPreloadedBuffer(t *testing.T) {
	t.Parallel()

	buf := bytes.Repeat([]byte{0x99}, 256)
	it := NewIterator("game.gb", buf)
	defer it.Destroy()

	hash, ok := it.Iterate()
	if !ok {
		t.Fatal("Iterate() should succeed with a preloaded buffer")
	}
	want, err := HashFromBuffer(ConsoleGameBoy, buf)
	if err != nil {
		t.Fatalf("HashFromBuffer() error = %v", err)
	}
	if hash != want {
		t.Errorf("Iterate() = %s, want %s", hash, want)
	}
}
