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

// Package gdi adapts a Dreamcast GD-ROM track list (.gdi) into a
// dischook.Hooks implementation. There's no teacher equivalent for this
// format; it's built in the same shape as discimage/cue: a plain
// line-oriented text format, one backing file per track, absolute
// sector math against the track's own LBA.
package gdi

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/binary"
	"github.com/retrohash/rhash/internal/pathutil"
)

// Track is one line of a .gdi track list: track number, starting LBA,
// track type (4 = data, 0 = audio), raw sector size, and the backing
// file.
type Track struct {
	Number     int
	LBA        int64
	Type       int
	SectorSize int64
	File       string
}

// IsData reports whether t is a data (as opposed to audio) track.
func (t Track) IsData() bool { return t.Type == 4 }

// Sheet is a parsed .gdi track list.
type Sheet struct {
	Tracks []Track
}

// Parse reads the .gdi file at path, resolving track filenames relative
// to the sheet's own directory. The first non-blank line is the track
// count and is otherwise unused here; each remaining line is
// "<number> <lba> <type> <sectorSize> <file> [offset]".
func Parse(path string) (*Sheet, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return nil, fmt.Errorf("open gdi: %w", err)
	}
	defer func() { _ = f.Close() }()

	dir := path[:len(path)-len(pathutil.Filename(path))]

	var sheet Sheet
	scanner := bufio.NewScanner(f)
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if first {
			first = false
			continue // track count line
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		number, _ := strconv.Atoi(fields[0])
		lba, _ := strconv.ParseInt(fields[1], 10, 64)
		trackType, _ := strconv.Atoi(fields[2])
		sectorSize, _ := strconv.ParseInt(fields[3], 10, 64)
		name := strings.Trim(fields[4], `"`)
		if !pathutil.IsAbsolute(name) {
			name = dir + name
		}

		sheet.Tracks = append(sheet.Tracks, Track{
			Number:     number,
			LBA:        lba,
			Type:       trackType,
			SectorSize: sectorSize,
			File:       name,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(sheet.Tracks) == 0 {
		return nil, fmt.Errorf("gdi track list has no tracks: %s", path)
	}
	return &sheet, nil
}

func (sheet *Sheet) selectTrack(selector int32) (Track, bool) {
	switch dischook.TrackSelector(selector) {
	case dischook.TrackFirstData:
		for _, t := range sheet.Tracks {
			if t.IsData() {
				return t, true
			}
		}
	case dischook.TrackLargest, dischook.TrackLast:
		for i := len(sheet.Tracks) - 1; i >= 0; i-- {
			if sheet.Tracks[i].IsData() {
				return sheet.Tracks[i], true
			}
		}
	case dischook.TrackPrimary:
		if len(sheet.Tracks) > 0 {
			return sheet.Tracks[0], true
		}
	default:
		for _, t := range sheet.Tracks {
			if int32(t.Number) == selector {
				return t, true
			}
		}
	}
	return Track{}, false
}

type handle struct {
	file  *os.File
	track Track
}

// Open parses the .gdi at path and opens the backing file for the
// requested track.
func Open(path string, track int32) (dischook.Handle, error) {
	sheet, err := Parse(path)
	if err != nil {
		return nil, err
	}
	t, ok := sheet.selectTrack(track)
	if !ok {
		return nil, fmt.Errorf("gdi: track %d not found in %s", track, path)
	}
	f, err := os.Open(t.File) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return nil, fmt.Errorf("open gdi track file: %w", err)
	}
	return &handle{file: f, track: t}, nil
}

// ReadSector reads one 2048-byte logical sector from h, track-relative
// (sector 0 is the track's own LBA).
func ReadSector(h dischook.Handle, sector uint32, buf []byte) (int, error) {
	dh, ok := h.(*handle)
	if !ok {
		return 0, fmt.Errorf("gdi: invalid handle")
	}

	rawSize := dh.track.SectorSize
	userOffset := int64(0)
	if rawSize > 2048 {
		userOffset = 16
	}

	rawOffset := int64(sector) * rawSize
	raw, err := binary.ReadBytesAt(dh.file, rawOffset, int(rawSize))
	if err != nil {
		return 0, fmt.Errorf("gdi: short sector read: %w", err)
	}
	copied := copy(buf, raw[userOffset:userOffset+2048])
	return copied, nil
}

// AbsoluteToTrackSector translates an absolute GD-ROM sector (as
// embedded in the IP.BIN boot header) into one relative to h's track by
// subtracting the track's LBA; it returns dischook.TrackSectorInvalid
// if absolute falls before the track's own start.
func AbsoluteToTrackSector(h dischook.Handle, absolute uint32) uint32 {
	dh, ok := h.(*handle)
	if !ok {
		return dischook.TrackSectorInvalid
	}
	if int64(absolute) < dh.track.LBA {
		return dischook.TrackSectorInvalid
	}
	return uint32(int64(absolute) - dh.track.LBA)
}

// CloseTrack closes the underlying track file.
func CloseTrack(h dischook.Handle) {
	if dh, ok := h.(*handle); ok {
		_ = dh.file.Close()
	}
}

// Hooks returns a dischook.Hooks backed by this package, ready to pass to
// dischook.Install.
func Hooks() *dischook.Hooks {
	return &dischook.Hooks{
		OpenTrack:             Open,
		ReadSector:            ReadSector,
		AbsoluteToTrackSector: AbsoluteToTrackSector,
		CloseTrack:            CloseTrack,
	}
}
