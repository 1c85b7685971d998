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

// PS2 hashes a PlayStation 2 disc image, ported from rc_hash_ps2. It
// shares findPlayStationExecutable with PSX, keyed off the BOOT2 line in
// SYSTEM.CNF instead of BOOT. Per Design Notes (b), the size used is
// always the ISO-reported extent size: unlike PSX, the ELF header is not
// consulted to adjust it.
func PS2(path string) (string, error) {
	h, err := dischook.OpenTrack(path, 1)
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}
	defer dischook.CloseTrack(h)

	exeName, sector, size, findErr := findPlayStationExecutable(h, "BOOT2", "cdrom0:")
	if findErr != nil || sector == 0 {
		return "", errf(kinderr.Format, "Could not locate primary executable")
	}

	marker := make([]byte, 4)
	if n, err := dischook.ReadSector(h, sector, marker); err != nil || n < 4 {
		return "", errf(kinderr.IO, "Could not read primary executable")
	}
	if string(marker) != "\x7f\x45\x4c\x46" {
		verbose("%s did not contain ELF marker", exeName)
	}

	d := digest.New()
	d.Append([]byte(exeName))

	if hashErr := hashCDFile(d, h, sector, size, "primary executable"); hashErr != nil {
		return "", hashErr
	}
	return d.Finalize(), nil
}
