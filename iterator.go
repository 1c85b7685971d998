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
	"github.com/retrohash/rhash/iohook"
)

// binRawModeThreshold is the size above which a bare .bin file is assumed
// to be a raw optical-disc dump rather than a ROM, ported from
// rc_hash_initialize_iterator's 32MB check on the ".bin" extension.
const binRawModeThreshold = 32 * 1024 * 1024

// binCandidates is the fixed candidate order tried for a large .bin file,
// ported from the source's hard-coded RC_CONSOLE_3DO / PLAYSTATION /
// PLAYSTATION_2 / SEGA_CD / MEGA_DRIVE sequence.
var binCandidates = []candidate{
	withPath(Console3DO),
	withPath(ConsolePlayStation),
	withPath(ConsolePlayStation2),
	withPath(ConsoleSegaCD),
	withPath(ConsoleMegaDrive),
}

// Iterator walks an ordered list of candidate consoles for a file,
// invoking the dispatcher for each until one succeeds, ported from
// rc_hash_iterator / rc_hash_initialize_iterator / rc_hash_iterate /
// rc_hash_destroy_iterator.
type Iterator struct {
	candidates []candidate
	index      int
	path       string
	buffer     []byte
}

// NewIterator builds the candidate list for path, optionally seeded with
// an already-loaded buffer, per 4.L. A caller that already has the file's
// bytes in memory (e.g. from an archive) should pass buffer; otherwise
// pass nil and the iterator re-opens path itself for buffer-based
// recipes.
func NewIterator(path string, buffer []byte) *Iterator {
	it := &Iterator{path: path, buffer: buffer}
	it.classify(path, buffer)
	return it
}

func (it *Iterator) classify(path string, buffer []byte) {
	ext := pathutil.Extension(path)

	if ext == ".m3u" {
		resolved, err := resolvePlaylist(path)
		if err != nil {
			// No usable entry: leave the candidate list empty so Iterate
			// fails immediately, matching rc_hash_initialize_iterator's
			// early return (it skips the GameBoy default in this case).
			it.path = path
			it.candidates = nil
			return
		}
		it.path = resolved
		it.buffer = nil
		it.classify(resolved, nil)
		return
	}

	if ext == ".dsk" {
		var list []candidate
		if console, ok := dskSizeCandidates[sizeOf(path, buffer)]; ok {
			list = append(list, withBuffer(console))
		}
		list = append(list, withBuffer(ConsoleMSX), withBuffer(ConsoleAppleII))
		it.candidates = list
		return
	}

	if ext == ".bin" {
		if buffer == nil && sizeOf(path, nil) > binRawModeThreshold {
			it.candidates = binCandidates
			return
		}
		// .bin is also used by Mega Drive, Sega 32X, Atari 2600, and Watara
		// Supervision, which all hash identically; Mega Drive stands in for
		// all four, matching rc_hash_initialize_iterator.
		it.candidates = []candidate{withBuffer(ConsoleMegaDrive)}
		return
	}

	if list, ok := extCandidates[ext]; ok {
		it.candidates = list
		return
	}

	if ext == "" && isBlockDevice(path) {
		it.candidates = blockDeviceCandidates
		return
	}

	it.candidates = []candidate{defaultCandidate}
}

// sizeOf returns len(buffer) if buffer is non-nil, otherwise stats path
// through the installed iohook.Hooks; a stat failure yields 0, which
// simply fails to match any dskSizeCandidates entry or the bin threshold.
func sizeOf(path string, buffer []byte) int64 {
	if buffer != nil {
		return int64(len(buffer))
	}
	h, err := iohook.Open(path)
	if err != nil {
		return 0
	}
	defer func() { _ = iohook.Close(h) }()
	size, err := iohook.Size(h)
	if err != nil {
		return 0
	}
	return size
}

// Iterate tries the next candidate console, returning its fingerprint on
// success. It returns ("", false) once every candidate has failed,
// matching rc_hash_iterate's exhaustion behavior of writing an empty
// string and reporting failure.
func (it *Iterator) Iterate() (string, bool) {
	for it.index < len(it.candidates) {
		c := it.candidates[it.index]
		it.index++

		var (
			hash string
			err  error
		)
		if c.needPath || it.buffer == nil {
			hash, err = HashFromFile(c.console, it.path)
		} else {
			hash, err = HashFromBuffer(c.console, it.buffer)
		}
		if err == nil {
			return hash, true
		}
	}
	return "", false
}

// Destroy releases the state owned by the iterator: it drops the
// remaining candidates and the buffer reference. The iterator holds no OS
// resources directly — every recipe scopes its own handles — so there is
// nothing else to close. It is kept as an explicit lifecycle operation
// per 3's "iterator ... destroyed" invariant.
func (it *Iterator) Destroy() {
	it.candidates = nil
	it.buffer = nil
}
