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
	"strings"

	"github.com/retrohash/rhash/internal/pathutil"
	"github.com/retrohash/rhash/iohook"
)

// playlistReadCap bounds how much of an m3u file is inspected, ported
// from rc_hash_get_first_item_from_playlist's fixed 1024-byte buffer.
const playlistReadCap = 1024

// resolvePlaylist returns the first non-blank, non-comment entry of the
// m3u-like playlist at path, resolved against the playlist's own
// directory when the entry isn't already absolute, ported from
// rc_hash_get_first_item_from_playlist.
func resolvePlaylist(path string) (string, error) {
	h, err := iohook.Open(path)
	if err != nil {
		return "", wrapError(KindIO, ConsoleUnknown, err, "Could not open playlist")
	}
	defer func() { _ = iohook.Close(h) }()

	buf := make([]byte, playlistReadCap)
	n, err := iohook.Read(h, buf)
	if err != nil {
		return "", wrapError(KindIO, ConsoleUnknown, err, "could not read playlist %s", path)
	}

	for _, line := range strings.Split(string(buf[:n]), "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry := strings.TrimRight(line, " \t\r\n")
		if entry == "" {
			continue
		}

		verbose("Extracted %s from playlist", entry)

		if pathutil.IsAbsolute(entry) {
			return entry, nil
		}
		dir := path[:len(path)-len(pathutil.Filename(path))]
		return dir + entry, nil
	}

	return "", newError(KindEmptyPlaylist, ConsoleUnknown, "Failed to get first item from playlist")
}
