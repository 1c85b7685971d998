// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/kinderr"
)

// SegaCD hashes a Sega CD or Saturn disc image, ported from
// rc_hash_sega_cd. The first 512 bytes of sector 0 carry a volume header
// and ROM header sufficient to identify the game; the boot code that
// follows varies enough between otherwise-identical discs that it isn't
// worth including.
func SegaCD(path string) (string, error) {
	h, err := dischook.OpenTrack(path, 1)
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}

	buf := make([]byte, 512)
	_, readErr := dischook.ReadSector(h, 0, buf)
	dischook.CloseTrack(h)
	if readErr != nil {
		return "", errf(kinderr.IO, "could not read sector 0")
	}

	if string(buf[:16]) != "SEGADISCSYSTEM  " && string(buf[:16]) != "SEGA SEGASATURN " {
		return "", errf(kinderr.Format, "Not a Sega CD")
	}

	return HashBuffer(buf), nil
}
