// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
)

// pcfxMarker is the boot identifier at the start of sector 0 on a PC-FX
// disc, ported from rc_hash_pcfx_cd.
const pcfxMarker = "PC-FX:Hu_CD-ROM"

// PCFX hashes a PC-FX CD image, ported from rc_hash_pcfx_cd. The boot
// executable can live in any track, so the largest data track is tried
// first and track 2 second; a disc that fails both but still looks like
// a PC Engine CD falls back to hashPCETrack, the PC-FX/PCE cross-recipe
// reuse the source itself performs.
func PCFX(path string) (string, error) {
	h, err := dischook.OpenTrack(path, int32(dischook.TrackLargest))
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}

	buf := make([]byte, sectorSize)
	if _, err := dischook.ReadSector(h, 0, buf[:32]); err != nil {
		return "", errf(kinderr.IO, "could not read sector 0")
	}

	if string(buf[:15]) != pcfxMarker {
		dischook.CloseTrack(h)

		h, err = dischook.OpenTrack(path, 2)
		if err != nil {
			return "", errf(kinderr.IO, "Could not open track")
		}
		if _, err := dischook.ReadSector(h, 0, buf[:32]); err != nil {
			return "", errf(kinderr.IO, "could not read sector 0")
		}
	}
	defer dischook.CloseTrack(h)

	if string(buf[:15]) == pcfxMarker {
		if _, err := dischook.ReadSector(h, 1, buf[:128]); err != nil {
			return "", errf(kinderr.IO, "could not read PC-FX boot header")
		}

		d := digest.New()
		d.Append(buf[:128])
		verbose("Found PC-FX CD, title=%.32s", cString(buf[:32]))

		// Program sector is at bytes 32..35 (byte 35 assumed zero).
		sector := uint32(buf[34])<<16 | uint32(buf[33])<<8 | uint32(buf[32])
		// Program sector count is at bytes 36..39 (byte 39 assumed zero).
		numSectors := uint32(buf[38])<<16 | uint32(buf[37])<<8 | uint32(buf[36])
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

	if _, err := dischook.ReadSector(h, 1, buf[:128]); err == nil && string(buf[32:55]) == "PC Engine CD-ROM SYSTEM" {
		return hashPCETrack(h)
	}

	return "", errf(kinderr.Format, "Not a PC-FX CD")
}
