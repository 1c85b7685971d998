// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import "testing"

func TestArcadePlainFilename(t *testing.T) {
	t.Parallel()

	if got, want := Arcade("/roms/mslug.zip"), HashBuffer([]byte("mslug")); got != want {
		t.Errorf("Arcade() = %s, want %s", got, want)
	}
}

func TestArcadeIgnoresFileContents(t *testing.T) {
	t.Parallel()

	// Arcade never opens the file: a nonexistent path hashes identically
	// to any other path sharing the same name.
	if got, want := Arcade("/nonexistent/path/mslug.zip"), HashBuffer([]byte("mslug")); got != want {
		t.Errorf("Arcade() = %s, want %s", got, want)
	}
}

func TestArcadeRecognizedSubsystemFolder(t *testing.T) {
	t.Parallel()

	got := Arcade("/roms/fbneo/nes/mario.zip")
	want := HashBuffer([]byte("nes_mario"))
	if got != want {
		t.Errorf("Arcade() = %s, want %s (subsystem folder prefix)", got, want)
	}
}

func TestArcadeUnrecognizedFolderIgnored(t *testing.T) {
	t.Parallel()

	got := Arcade("/roms/other/mslug.zip")
	want := HashBuffer([]byte("mslug"))
	if got != want {
		t.Errorf("Arcade() = %s, want %s", got, want)
	}
}
