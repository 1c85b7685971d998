// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"bytes"
	"unicode"

	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
	"github.com/retrohash/rhash/iso9660"
)

// Dreamcast hashes a Dreamcast disc image, ported from rc_hash_dreamcast.
// Track 3 carries the IP.BIN metadata block naming the boot executable;
// the executable itself is normally on the last track, but a handful of
// discs (Q*bert among them) put it on the primary data track instead, so
// a translation failure on the last track retries against track 3.
func Dreamcast(path string) (string, error) {
	h, err := dischook.OpenTrack(path, 3)
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}

	buf := make([]byte, 256)
	if _, err := dischook.ReadSector(h, 0, buf); err != nil {
		dischook.CloseTrack(h)
		return "", errf(kinderr.Format, "Not a Dreamcast CD")
	}
	if string(buf[:16]) != "SEGA SEGAKATANA " {
		dischook.CloseTrack(h)
		return "", errf(kinderr.Format, "Not a Dreamcast CD")
	}

	d := digest.New()
	d.Append(buf)

	if verboseSink != nil {
		title := bytes.TrimRight(buf[0x80:0x100], " ")
		verbose("Found Dreamcast CD: %s (%.16s)", string(title), string(buf[0x40:0x50]))
	}

	// Boot filename is 96 bytes into the meta information, whitespace terminated.
	i := 0
	for i < 16 && !unicode.IsSpace(rune(buf[96+i])) {
		i++
	}
	if i == 0 {
		dischook.CloseTrack(h)
		return "", errf(kinderr.Format, "Boot executable not specified on IP.BIN")
	}
	exeFile := string(buf[96 : 96+i])

	sector, size, findErr := iso9660.FindFileSector(h, exeFile)
	dischook.CloseTrack(h)
	if findErr != nil || sector == 0 {
		return "", errf(kinderr.Format, "Could not locate boot executable")
	}

	lastTrack, err := dischook.OpenTrack(path, int32(dischook.TrackLast))
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}
	trackSector := dischook.AbsoluteToTrackSector(lastTrack, sector)
	if trackSector == dischook.TrackSectorInvalid {
		dischook.CloseTrack(lastTrack)

		verbose("Boot executable not found in last track, trying primary track")
		lastTrack, err = dischook.OpenTrack(path, 3)
		if err != nil {
			return "", errf(kinderr.IO, "Could not open track")
		}
		trackSector = dischook.AbsoluteToTrackSector(lastTrack, sector)
	}
	defer dischook.CloseTrack(lastTrack)

	if hashErr := hashCDFile(d, lastTrack, trackSector, size, "boot executable"); hashErr != nil {
		return "", hashErr
	}
	return d.Finalize(), nil
}
