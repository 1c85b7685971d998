// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
	"github.com/retrohash/rhash/iso9660"
)

// PCEngine hashes a PC Engine (TurboGrafx-16) HuCard ROM buffer, ignoring
// a 512-byte copier header if the file size isn't a multiple of 128KB,
// ported from rc_hash_pce.
func PCEngine(buf []byte) string {
	const blockSize = 0x20000
	calcSize := (len(buf) / blockSize) * blockSize
	if len(buf)-calcSize == 512 {
		verbose("Ignoring PCE header")
		buf = buf[512:]
	}
	return HashBuffer(buf)
}

// hashPCETrack hashes an already-open PC Engine CD track, ported from
// rc_hash_pce_track. A normal PC Engine CD carries a boot header in
// sector 1; GameExpress discs use a plain ISO-9660 filesystem and boot
// BOOT.BIN instead, so both are tried before giving up. This helper is
// shared with PCFX's fallback for PC-FX discs that misidentify as PCE
// CDs, the one piece of cross-recipe reuse the source itself does.
func hashPCETrack(h dischook.Handle) (string, error) {
	buf := make([]byte, 128)
	n, err := dischook.ReadSector(h, 1, buf)
	if err != nil || n < 128 {
		return "", errf(kinderr.Format, "Not a PC Engine CD")
	}

	d := digest.New()

	if string(buf[32:55]) == "PC Engine CD-ROM SYSTEM" {
		verbose("Found PC Engine CD, title=%s", string(buf[106:128]))
		d.Append(buf[106:128])

		sector := uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2])
		numSectors := uint32(buf[3])
		verbose("Hashing %d sectors starting at sector %d", numSectors, sector)

		sectorBuf := make([]byte, sectorSize)
		for numSectors > 0 {
			if _, err := dischook.ReadSector(h, sector, sectorBuf); err != nil {
				return "", err
			}
			d.Append(sectorBuf)
			sector++
			numSectors--
		}
		return d.Finalize(), nil
	}

	sector, size, err := iso9660.FindFileSector(h, "BOOT.BIN")
	if err == nil && size < MaxBufferSize {
		if hashErr := hashCDFile(d, h, sector, size, "BOOT.BIN"); hashErr != nil {
			return "", hashErr
		}
		return d.Finalize(), nil
	}

	return "", errf(kinderr.Format, "Not a PC Engine CD")
}

// PCEngineCD hashes a PC Engine CD image, opening the first data track
// and delegating to hashPCETrack, ported from rc_hash_pce_cd.
func PCEngineCD(path string) (string, error) {
	h, err := dischook.OpenTrack(path, int32(dischook.TrackFirstData))
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}
	defer dischook.CloseTrack(h)

	return hashPCETrack(h)
}
