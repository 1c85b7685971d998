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

// Package pathutil implements the path-string helpers the hashing recipes
// need: filename/extension extraction and absolute-path detection. Both
// slashes are treated as separators regardless of host OS, matching the
// paths recipes actually see (playlist entries, archive member paths,
// SYSTEM.CNF boot strings), so this deliberately does not delegate to
// path/filepath, whose separator handling is platform-dependent.
package pathutil

import "strings"

// Filename returns the final path component of path, after the last '/' or
// '\'. If path contains no separator, path itself is returned.
func Filename(path string) string {
	idx := strings.LastIndexAny(path, `/\`)
	if idx == -1 {
		return path
	}
	return path[idx+1:]
}

// Extension returns the filename extension of path, including the leading
// dot, lowercased. It returns "" if the filename has no extension or the
// dot is the first character of the filename (a dotfile, not an
// extension).
func Extension(path string) string {
	name := Filename(path)
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(name[idx:])
}

// CompareExtension reports whether path's extension matches ext
// case-insensitively. ext may be given with or without its leading dot.
func CompareExtension(path, ext string) bool {
	if ext == "" {
		return Extension(path) == ""
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	return Extension(path) == strings.ToLower(ext)
}

// IsAbsolute reports whether path looks like an absolute path: a leading
// '/' or '\' (Unix/UNC-relative), a drive letter followed by ':' and a
// separator (Windows, "C:\..."), or any "scheme:" prefix followed by a
// separator (e.g. an archive-relative "zip:/path" scheme used by some
// frontends). The scan mirrors rc_hash_path_is_absolute: it walks the
// string once, accepting alphanumerics before a ':' and treating the
// first non-alphanumeric character as either a separator (absolute) or a
// disqualifying character (not a scheme prefix, so relative).
func IsAbsolute(path string) bool {
	if len(path) == 0 {
		return false
	}
	if path[0] == '/' || path[0] == '\\' {
		return true
	}
	for i := 0; i < len(path); i++ {
		c := path[i]
		switch {
		case c == ':':
			if i+1 < len(path) && (path[i+1] == '/' || path[i+1] == '\\') {
				return true
			}
			return false
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			continue
		default:
			return false
		}
	}
	return false
}
