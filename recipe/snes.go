// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

// SNES hashes a Super Nintendo ROM buffer, ignoring a copier header if
// one is present, ported from rc_hash_snes. A copier header is detected
// by the file size not being an even multiple of 8KB: the leftover 512
// bytes are the header.
func SNES(buf []byte) string {
	const blockSize = 0x2000
	calcSize := (len(buf) / blockSize) * blockSize
	if len(buf)-calcSize == 512 {
		verbose("Ignoring SNES header")
		buf = buf[512:]
	}
	return HashBuffer(buf)
}
