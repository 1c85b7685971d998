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
	"github.com/retrohash/rhash/internal/pathutil"
	"github.com/retrohash/rhash/recipe"
)

// bufferRecipes dispatches HashFromBuffer by console, mirroring the
// teacher's gameid.go `var identifiers = map[...]...{}` table in place of
// rc_hash_generate_from_buffer's switch. Consoles absent from this map
// hash the buffer verbatim via recipe.HashBuffer in HashFromBuffer.
var bufferRecipes = map[Console]func([]byte) string{
	ConsoleAtari7800: recipe.Atari7800,
	ConsoleAtariLynx: recipe.Lynx,
	ConsoleNES:       recipe.NES,
	ConsolePCEngine:  recipe.PCEngine,
	ConsoleSNES:      recipe.SNES,
}

// discRecipes dispatches the one-shot, path-based recipes (optical discs
// plus Nintendo DS, which is file- not buffer-based despite not touching
// a disc facade), mirroring fileRecipes in 4.K.
var discRecipes = map[Console]func(string) (string, error){
	Console3DO:          recipe.ThreeDO,
	ConsolePCFX:         recipe.PCFX,
	ConsolePlayStation:  recipe.PSX,
	ConsolePlayStation2: recipe.PS2,
	ConsoleDreamcast:    recipe.Dreamcast,
	ConsoleSegaCD:       recipe.SegaCD,
	ConsoleSaturn:       recipe.SegaCD,
	ConsoleNintendoDS:   recipe.NintendoDS,
}

// bufferedFileConsoles load the whole file (capped at recipe.MaxBufferSize)
// before dispatching through bufferRecipes, matching rc_hash_buffered_file's
// callers in rc_hash_generate_from_file.
var bufferedFileConsoles = map[Console]bool{
	ConsoleAtari7800: true,
	ConsoleAtariLynx: true,
	ConsoleNES:       true,
	ConsoleSNES:      true,
	ConsolePCEngine:  true,
}

// playlistConsoles are the platforms whose file dispatch resolves an m3u
// extension to its first entry and recurses, per 4.K.
var playlistConsoles = map[Console]bool{
	Console3DO:          true,
	ConsolePCEngine:     true,
	ConsolePCFX:         true,
	ConsolePlayStation:  true,
	ConsolePlayStation2: true,
	ConsoleDreamcast:    true,
	ConsoleSegaCD:       true,
	ConsoleSaturn:       true,
	ConsoleMSX:          true,
	ConsolePC8800:       true,
}

// HashFromBuffer computes the fingerprint of an already-loaded buffer for
// console, ported from rc_hash_generate_from_buffer. Consoles with no
// header-stripping recipe hash the buffer as-is.
func HashFromBuffer(console Console, buf []byte) (string, error) {
	if fn, ok := bufferRecipes[console]; ok {
		return fn(buf), nil
	}
	return recipe.HashBuffer(buf), nil
}

// HashFromFile computes the fingerprint of the file or disc image at path
// for console, ported from rc_hash_generate_from_file. m3u playlists are
// resolved to their first entry and the call recurses against the
// resolved path for every console that supports them.
func HashFromFile(console Console, path string) (string, error) {
	if playlistConsoles[console] && pathutil.CompareExtension(path, "m3u") {
		resolved, err := resolvePlaylist(path)
		if err != nil {
			return "", err
		}
		return HashFromFile(console, resolved)
	}

	if console == ConsolePCEngine {
		if pathutil.CompareExtension(path, "cue") || pathutil.CompareExtension(path, "chd") {
			return recipe.PCEngineCD(path)
		}
	}

	if fn, ok := discRecipes[console]; ok {
		return fn(path)
	}

	if console == ConsoleArcade {
		return recipe.Arcade(path), nil
	}

	if bufferedFileConsoles[console] {
		buf, err := recipe.ReadWholeFile(path)
		if err != nil {
			return "", err
		}
		return HashFromBuffer(console, buf)
	}

	return recipe.HashWholeFile(path)
}
