// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"encoding/binary"

	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
	"github.com/retrohash/rhash/iohook"
)

// ndsMaxCodeSize sanity-bounds ARM9+ARM7 code size, ported from
// rc_hash_nintendo_ds: real code blocks are typically well under 1MB
// each, so a ROM claiming more than 16MB combined is assumed corrupt
// rather than a real DS ROM.
const ndsMaxCodeSize = 16 * 1024 * 1024

// NintendoDS hashes a Nintendo DS ROM, ported from rc_hash_nintendo_ds.
// It digests the 352-byte header, the ARM9 and ARM7 code blocks, and a
// fixed 2560-byte icon/label block, all located via offsets in the
// header rather than read sequentially. A SuperCard flash-cart header,
// if present, is skipped before the real header is parsed.
func NintendoDS(path string) (string, error) {
	h, err := iohook.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = iohook.Close(h) }()

	header := make([]byte, 512)
	if _, err := iohook.Read(h, header); err != nil {
		return "", errf(kinderr.IO, "Failed to read header")
	}

	var base int64
	if header[0] == 0x2E && header[1] == 0x00 && header[2] == 0x00 && header[3] == 0xEA &&
		header[0xB0] == 0x44 && header[0xB1] == 0x46 && header[0xB2] == 0x96 && header[0xB3] == 0 {
		verbose("Ignoring SuperCard header")
		base = 512
		if err := iohook.Seek(h, base, iohook.SeekStart); err != nil {
			return "", err
		}
		if _, err := iohook.Read(h, header); err != nil {
			return "", errf(kinderr.IO, "Failed to read header")
		}
	}

	arm9Addr := binary.LittleEndian.Uint32(header[0x20:])
	arm9Size := binary.LittleEndian.Uint32(header[0x2C:])
	arm7Addr := binary.LittleEndian.Uint32(header[0x30:])
	arm7Size := binary.LittleEndian.Uint32(header[0x3C:])
	iconAddr := binary.LittleEndian.Uint32(header[0x68:])

	if uint64(arm9Size)+uint64(arm7Size) > ndsMaxCodeSize {
		return "", errf(kinderr.Format,
			"arm9 code size (%d) + arm7 code size (%d) exceeds 16MB", arm9Size, arm7Size)
	}

	hashSize := uint32(0xA00)
	if arm9Size > hashSize {
		hashSize = arm9Size
	}
	if arm7Size > hashSize {
		hashSize = arm7Size
	}
	work := make([]byte, hashSize)

	d := digest.New()
	verbose("Hashing 352 byte header")
	d.Append(header[:0x160])

	verbose("Hashing %d byte arm9 code (at %08X)", arm9Size, arm9Addr)
	if err := readAt(h, base+int64(arm9Addr), work[:arm9Size]); err != nil {
		return "", err
	}
	d.Append(work[:arm9Size])

	verbose("Hashing %d byte arm7 code (at %08X)", arm7Size, arm7Addr)
	if err := readAt(h, base+int64(arm7Addr), work[:arm7Size]); err != nil {
		return "", err
	}
	d.Append(work[:arm7Size])

	verbose("Hashing 2560 byte icon and labels data (at %08X)", iconAddr)
	if err := iohook.Seek(h, base+int64(iconAddr), iohook.SeekStart); err != nil {
		return "", err
	}
	n, _ := iohook.Read(h, work[:0xA00])
	if n < 0xA00 {
		verbose("Warning: only got %d bytes for icon and labels data, 0-padding to 2560 bytes", n)
		for i := n; i < 0xA00; i++ {
			work[i] = 0
		}
	}
	d.Append(work[:0xA00])

	return d.Finalize(), nil
}

// readAt seeks h to offset and fills buf completely, failing if fewer
// bytes than requested are available.
func readAt(h iohook.Handle, offset int64, buf []byte) error {
	if err := iohook.Seek(h, offset, iohook.SeekStart); err != nil {
		return err
	}
	var read int
	for read < len(buf) {
		n, err := iohook.Read(h, buf[read:])
		if err != nil {
			return errf(kinderr.IO, "could not read at offset %d: %v", offset, err)
		}
		if n == 0 {
			break
		}
		read += n
	}
	return nil
}
