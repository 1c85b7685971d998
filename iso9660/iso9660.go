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

// Package iso9660 locates a file's data extent on an ISO-9660 track
// (component D), ported from rc_hash_iterate_directory and
// rc_hash_find_file in the source. It does not mount a filesystem: it
// walks the primary volume descriptor's root directory record, and at
// most one subdirectory level below it, looking for one filename.
package iso9660

import (
	"strings"

	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/kinderr"
)

const (
	sectorSize = 2048
	// pvdSector is the fixed logical sector of the primary volume
	// descriptor on every ISO-9660 disc.
	pvdSector = 16
	// maxDepth bounds FindFileSector to "root, or one directory below
	// root", matching the source's two-pass (root then subdirectory)
	// design rather than a general recursive directory walk.
	maxDepth = 2
)

var (
	errorSink   func(string)
	verboseSink func(string)
)

// SetErrorSink installs the process-wide error callback for this package.
func SetErrorSink(f func(string)) { errorSink = f }

// SetVerboseSink installs the process-wide verbose callback for this
// package.
func SetVerboseSink(f func(string)) { verboseSink = f }

func verbose(msg string) {
	if verboseSink != nil {
		verboseSink(msg)
	}
}

// FindFileSector resolves path (e.g. "SYSTEM.CNF" or "DATA\FILE.BIN") to
// the logical sector and byte size of its data extent on h, starting
// from the root directory recorded in the primary volume descriptor.
// path may name a file directly in the root, or a file inside one
// subdirectory of the root (a single backslash separator); anything
// deeper is rejected, matching the source's belief that disc layouts
// relevant to achievement hashing never nest further than that.
func FindFileSector(h dischook.Handle, path string) (sector uint32, size uint32, err error) {
	root, err := readRootDirectory(h)
	if err != nil {
		return 0, 0, err
	}

	dir := path
	name := path
	if idx := strings.LastIndexByte(path, '\\'); idx >= 0 {
		dir = path[:idx]
		name = path[idx+1:]
	} else {
		dir = ""
	}

	entry := root
	if dir != "" {
		subSector, subSize, err := findEntry(entry, dir, true)
		if err != nil {
			return 0, 0, err
		}
		entry, err = readDirectory(h, subSector, subSize)
		if err != nil {
			return 0, 0, err
		}
	}

	return findEntry(entry, name, false)
}

// directory is a decoded ISO-9660 directory extent: its raw sector
// bytes, kept around so findEntry can scan its records without a second
// read.
type directory struct {
	data []byte
}

func readRootDirectory(h dischook.Handle) (directory, error) {
	var pvd [sectorSize]byte
	n, err := dischook.ReadSector(h, pvdSector, pvd[:])
	if err != nil {
		return directory{}, kinderr.New(kinderr.IO, errorSink, "could not read primary volume descriptor: %v", err)
	}
	if n < sectorSize || pvd[0] != 1 || string(pvd[1:6]) != "CD001" {
		return directory{}, kinderr.New(kinderr.Format, errorSink, "not an ISO-9660 volume (missing CD001 signature at sector %d)", pvdSector)
	}

	// Root directory record is embedded at offset 156 in the PVD, 34
	// bytes long, in the same layout as any other directory record.
	rootRecord := pvd[156:190]
	extentLBA := le32(rootRecord[2:6])
	extentSize := le32(rootRecord[10:14])

	return readDirectory(h, extentLBA, extentSize)
}

func readDirectory(h dischook.Handle, startSector, size uint32) (directory, error) {
	sectors := (size + sectorSize - 1) / sectorSize
	if sectors == 0 {
		sectors = 1
	}
	buf := make([]byte, sectors*sectorSize)
	for i := uint32(0); i < sectors; i++ {
		n, err := dischook.ReadSector(h, startSector+i, buf[i*sectorSize:(i+1)*sectorSize])
		if err != nil {
			return directory{}, kinderr.New(kinderr.IO, errorSink, "could not read directory sector %d: %v", startSector+i, err)
		}
		if uint32(n) < sectorSize {
			buf = buf[:i*sectorSize+uint32(n)]
			break
		}
	}
	return directory{data: buf}, nil
}

// findEntry scans dir's directory records for name, case-insensitively
// and ignoring any trailing ";1" ISO-9660 version suffix, matching
// rc_hash_find_file's comparison. wantDir restricts the search to
// subdirectory entries (the directory flag bit set in byte 25).
func findEntry(dir directory, name string, wantDir bool) (uint32, uint32, error) {
	want := strings.ToUpper(name)
	data := dir.data
	for off := 0; off+34 <= len(data); {
		recLen := int(data[off])
		if recLen == 0 {
			// Records never span a sector boundary; a zero length
			// byte means "skip to the next sector", mirroring the
			// source's handling of directory record padding.
			off += sectorSize - (off % sectorSize)
			continue
		}
		nameLen := int(data[off+32])
		if off+33+nameLen > len(data) {
			break
		}
		rawName := string(data[off+33 : off+33+nameLen])
		isDir := data[off+25]&0x02 != 0

		candidate := strings.ToUpper(rawName)
		if idx := strings.IndexByte(candidate, ';'); idx >= 0 {
			candidate = candidate[:idx]
		}

		if candidate == want && isDir == wantDir {
			extentLBA := le32(data[off+2 : off+6])
			extentSize := le32(data[off+10 : off+14])
			verbose("Found " + name)
			return extentLBA, extentSize, nil
		}

		off += recLen
	}

	return 0, 0, kinderr.New(kinderr.Format, errorSink, "could not find %s", name)
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
