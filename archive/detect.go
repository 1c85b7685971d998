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

package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// gameExtensions lists every extension rhash's iterator hashes straight
// from a buffer rather than from a path (the root package's extCandidates
// table, duplicated here rather than imported to avoid a cycle back into
// rhash). Path-based formats (.cue/.gdi/.chd/.iso, plus .zip/.7z itself
// for Arcade) never need extracting from an archive, so they're excluded.
var gameExtensions = map[string]bool{
	".2d":  true, // Sharp X1 tape
	".a78": true, // Atari 7800
	".bs":  true, // Satellaview
	".col": true, // ColecoVision
	".cas": true, // MSX tape
	".d88": true, // PC-8800 / Sharp X1 disk
	".fig": true, // SNES (FIG header)
	".fds": true, // Famicom Disk System
	".fd":  true, // Thomson TO8
	".gba": true, // Game Boy Advance
	".gbc": true, // Game Boy Color
	".gb":  true, // Game Boy
	".gg":  true, // Game Gear
	".jag": true, // Atari Jaguar
	".k7":  true, // Thomson TO8 tape
	".lnx": true, // Atari Lynx
	".md":  true, // Genesis / Mega Drive
	".min": true, // Pokemon Mini
	".mx1": true, // MSX
	".mx2": true, // MSX
	".m5":  true, // Thomson TO8
	".m7":  true, // Thomson TO8
	".nes": true, // NES / Famicom
	".nds": true, // Nintendo DS
	".n64": true, // Nintendo 64
	".ndd": true, // Nintendo 64DD
	".ngc": true, // Neo Geo Pocket
	".pce": true, // PC Engine / TurboGrafx-16
	".ri":  true, // MSX
	".smc": true, // SNES
	".sfc": true, // SNES
	".swc": true, // SNES
	".sg":  true, // SG-1000
	".sgx": true, // PC Engine SuperGrafx
	".sv":  true, // Watara Supervision
	".sap": true, // Thomson TO8
	".tap": true, // Oric tape
	".tic": true, // TIC-80
	".vb":  true, // Virtual Boy
	".wsc": true, // WonderSwan Color
	".woz": true, // Apple II
	".rom": true, // MSX / Thomson TO8
}

// IsGameFile checks if a filename has an extension rhash knows how to hash
// directly from a buffer.
func IsGameFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return gameExtensions[ext]
}

// DetectGameFile finds the member of arc that rhash should hash, scanning
// its file list in archive order and returning the first recognized game
// extension. Matches the CLI's own archive handling: only one ROM per
// archive is ever hashed, the same restriction rc_hash imposes on zipped
// inputs.
func DetectGameFile(arc Archive) (string, error) {
	files, err := arc.List()
	if err != nil {
		return "", notify(fmt.Errorf("list archive files: %w", err))
	}

	for _, file := range files {
		if IsGameFile(file.Name) {
			verbose("Found game file %s in archive", file.Name)
			return file.Name, nil
		}
	}

	return "", notify(NoGameFilesError{Archive: "archive"})
}
