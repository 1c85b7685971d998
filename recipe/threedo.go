// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package recipe

import (
	"bytes"
	"strings"

	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
)

// operaFSIdentifier marks the start of an Opera filesystem volume header,
// ported from rc_hash_3do's operafs_identifier.
var operaFSIdentifier = [7]byte{0x01, 0x5A, 0x5A, 0x5A, 0x5A, 0x5A, 0x01}

// ThreeDO hashes a 3DO CD image, ported from rc_hash_3do. It walks the
// Opera filesystem's root directory looking for the LaunchMe executable
// and hashes the volume header plus that file's contents.
func ThreeDO(path string) (string, error) {
	h, err := dischook.OpenTrack(path, 1)
	if err != nil {
		return "", errf(kinderr.IO, "Could not open track")
	}
	defer dischook.CloseTrack(h)

	buf := make([]byte, sectorSize)
	if _, err := dischook.ReadSector(h, 0, buf[:132]); err != nil {
		return "", errf(kinderr.Format, "Not a 3DO CD")
	}
	if !bytes.Equal(buf[:7], operaFSIdentifier[:]) {
		return "", errf(kinderr.Format, "Not a 3DO CD")
	}

	verbose("Found 3DO CD, title=%.32s", string(buf[0x28:0x48]))

	d := digest.New()
	d.Append(buf[:132])

	// Block size is at 0x4C (0x4C itself assumed zero).
	blockSize := int(buf[0x4D])<<16 | int(buf[0x4E])<<8 | int(buf[0x4F])
	// Root directory block location is at 0x64 (0x64 itself assumed zero).
	blockLocation := int(buf[0x65])<<16 | int(buf[0x66])<<8 | int(buf[0x67])
	blockLocation *= blockSize
	sector := blockLocation / sectorSize

	var (
		fileBlockSize     int
		fileBlockLocation int
		fileSize          int
	)

	for {
		if _, err := dischook.ReadSector(h, uint32(sector), buf); err != nil {
			return "", errf(kinderr.IO, "could not read 3DO directory")
		}

		// Offset to start of entries is at 0x10 (0x10, 0x11 assumed zero).
		offset := int(buf[0x12])<<8 | int(buf[0x13])
		// Offset to end of entries is at 0x0C (0x0C assumed zero).
		stop := int(buf[0x0D])<<16 | int(buf[0x0E])<<8 | int(buf[0x0F])

		for offset < stop {
			if buf[offset+0x03] == 2 { // file entry
				name := cString(buf[offset+0x20:])
				if strings.EqualFold(name, "LaunchMe") {
					fileBlockSize = int(buf[offset+0x0D])<<16 | int(buf[offset+0x0E])<<8 | int(buf[offset+0x0F])
					fileBlockLocation = int(buf[offset+0x45])<<16 | int(buf[offset+0x46])<<8 | int(buf[offset+0x47])
					fileBlockLocation *= fileBlockSize
					fileSize = int(buf[offset+0x11])<<16 | int(buf[offset+0x12])<<8 | int(buf[offset+0x13])
					verbose("Hashing header (132 bytes) and %s (%d bytes)", name, fileSize)
					break
				}
			}
			// Number of extra copies of the file is at 0x40 (0x40-0x42 assumed zero).
			offset += 0x48 + int(buf[offset+0x43])*4
		}

		if fileSize != 0 {
			break
		}

		// Did not find the file; see if the directory listing continues
		// in another sector (Design Notes: open question (a) preserved
		// literally - next offset is relative to the root's block size).
		next := int(buf[0x02])<<8 | int(buf[0x03])
		if next == 0xFFFF {
			break
		}
		next *= blockSize
		sector = (blockLocation + next) / sectorSize
	}

	if fileSize == 0 {
		return "", errf(kinderr.Format, "Could not find LaunchMe")
	}

	sector = fileBlockLocation / sectorSize
	remaining := fileSize
	for remaining > sectorSize {
		if _, err := dischook.ReadSector(h, uint32(sector), buf); err != nil {
			return "", errf(kinderr.IO, "could not read LaunchMe")
		}
		d.Append(buf)
		sector++
		remaining -= sectorSize
	}
	if _, err := dischook.ReadSector(h, uint32(sector), buf[:remaining]); err != nil {
		return "", errf(kinderr.IO, "could not read LaunchMe")
	}
	d.Append(buf[:remaining])

	return d.Finalize(), nil
}

// cString returns b up to (but not including) its first NUL byte, or all
// of b if there is none.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
