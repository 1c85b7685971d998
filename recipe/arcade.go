// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"strings"

	"github.com/retrohash/rhash/internal/pathutil"
)

// arcadeSubsystemFolders are the parent folder names FBNeo's libretro
// core recognises as loading a specific subsystem, ported from
// rc_hash_arcade's switch on parent_folder_length.
var arcadeSubsystemFolders = map[string]bool{
	"nes": true, "fds": true, "sms": true, "msx": true, "ngp": true,
	"pce": true, "sgx": true, "tg16": true, "coleco": true, "sg1000": true,
	"gamegear": true, "megadriv": true, "spectrum": true,
}

// Arcade hashes the filename (without extension) of path, ported from
// rc_hash_arcade. MAME and FBNeo cores are strict about having the exact
// right ROM data for the named set, so the hash never looks at file
// contents. If the immediate parent folder names a subsystem FBNeo
// recognises, it's folded into the hash as "<folder>_<name>".
func Arcade(path string) string {
	filename := pathutil.Filename(path)
	name := filename
	if ext := pathutil.Extension(filename); ext != "" {
		name = filename[:len(filename)-len(ext)]
	}

	trimmed := strings.TrimRight(path[:len(path)-len(filename)], `/\`)
	if trimmed != "" {
		folder := pathutil.Filename(trimmed)
		if arcadeSubsystemFolders[folder] {
			return HashBuffer([]byte(folder + "_" + name))
		}
	}

	return HashBuffer([]byte(name))
}
