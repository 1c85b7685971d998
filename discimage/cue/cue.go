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

// Package cue adapts a CUE sheet (one or more raw BIN tracks) into a
// dischook.Hooks implementation, extending the teacher's
// iso9660.ParseCue (which only resolved the first BIN file for a
// single-track ISO9660 open) to parse TRACK/INDEX lines and let disc
// recipes address any track by number or selector.
package cue

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

// Track describes one TRACK entry of a CUE sheet: the BIN file it lives
// in, its declared mode, and the byte offset of INDEX 01 within that
// file (where the track's addressable sectors begin, skipping any
// pregap declared by INDEX 00).
type Track struct {
	Number     int
	Mode       string
	File       string
	StartBytes int64
	StartFrame int64
}

// userDataOffset returns where the 2048-byte payload begins within one
// raw sector of the track, and the raw sector size itself.
func (t Track) userDataOffset() (offset, sectorSize int64) {
	switch {
	case strings.HasPrefix(t.Mode, "MODE2"):
		return 24, 2352
	case strings.HasPrefix(t.Mode, "MODE1"):
		return 16, 2352
	case t.Mode == "BINARY" || t.Mode == "":
		return 0, 2048
	default:
		return 16, 2352
	}
}

// Sheet is a parsed CUE sheet: every TRACK across every referenced FILE,
// in file order then track-number order.
type Sheet struct {
	Tracks []Track
}

// Parse reads the CUE sheet at path, resolving FILE paths relative to
// the sheet's own directory.
func Parse(path string) (*Sheet, error) {
	f, err := os.Open(path) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return nil, fmt.Errorf("open cue sheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	dir := path[:len(path)-len(pathutil.Filename(path))]

	var (
		sheet       Sheet
		currentFile string
		pendingMode string
		pendingNum  int
		haveTrack   bool
		indexFrames int
	)

	flush := func() {
		if !haveTrack {
			return
		}
		sheet.Tracks = append(sheet.Tracks, Track{
			Number:     pendingNum,
			Mode:       pendingMode,
			File:       currentFile,
			StartBytes: framesToBytes(indexFrames, pendingMode),
			StartFrame: int64(indexFrames),
		})
		haveTrack = false
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "FILE"):
			flush()
			name := fieldInQuotes(line)
			if name == "" {
				fields := strings.Fields(line)
				if len(fields) >= 2 {
					name = fields[1]
				}
			}
			if pathutil.IsAbsolute(name) {
				currentFile = name
			} else {
				currentFile = dir + name
			}

		case strings.HasPrefix(upper, "TRACK"):
			flush()
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				pendingNum, _ = strconv.Atoi(fields[1])
				pendingMode = strings.ToUpper(fields[2])
				haveTrack = true
				indexFrames = 0
			}

		case strings.HasPrefix(upper, "INDEX"):
			fields := strings.Fields(line)
			if len(fields) >= 3 && fields[1] == "01" {
				indexFrames = parseMSF(fields[2])
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(sheet.Tracks) == 0 {
		return nil, fmt.Errorf("cue sheet has no tracks: %s", path)
	}
	return &sheet, nil
}

func fieldInQuotes(line string) string {
	parts := strings.Split(line, "\"")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// parseMSF parses an "MM:SS:FF" CUE timestamp into total frames (75 per
// second), returning 0 on malformed input.
func parseMSF(s string) int {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0
	}
	m, _ := strconv.Atoi(parts[0])
	sec, _ := strconv.Atoi(parts[1])
	fr, _ := strconv.Atoi(parts[2])
	return (m*60+sec)*75 + fr
}

func framesToBytes(frames int, mode string) int64 {
	sectorSize := int64(2352)
	if mode == "BINARY" || mode == "" {
		sectorSize = 2048
	}
	return int64(frames) * sectorSize
}

type handle struct {
	file  *os.File
	track Track
}

func (sheet *Sheet) selectTrack(selector int32) (Track, bool) {
	switch dischook.TrackSelector(selector) {
	case dischook.TrackFirstData:
		for _, t := range sheet.Tracks {
			if t.Mode != "AUDIO" {
				return t, true
			}
		}
	case dischook.TrackLargest, dischook.TrackLast:
		if len(sheet.Tracks) > 0 {
			return sheet.Tracks[len(sheet.Tracks)-1], true
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

// Open parses the CUE sheet at path and opens the BIN file backing the
// requested track, ready for ReadSector.
func Open(path string, track int32) (dischook.Handle, error) {
	sheet, err := Parse(path)
	if err != nil {
		return nil, err
	}
	t, ok := sheet.selectTrack(track)
	if !ok {
		return nil, fmt.Errorf("cue: track %d not found in %s", track, path)
	}
	f, err := os.Open(t.File) //nolint:gosec // path is caller-supplied by design
	if err != nil {
		return nil, fmt.Errorf("open cue track file: %w", err)
	}
	return &handle{file: f, track: t}, nil
}

// ReadSector reads one 2048-byte logical sector, relative to the track's
// INDEX 01.
func ReadSector(h dischook.Handle, sector uint32, buf []byte) (int, error) {
	dh, ok := h.(*handle)
	if !ok {
		return 0, fmt.Errorf("cue: invalid handle")
	}
	userOffset, sectorSize := dh.track.userDataOffset()
	rawOffset := dh.track.StartBytes + int64(sector)*sectorSize
	raw, err := binary.ReadBytesAt(dh.file, rawOffset, int(sectorSize))
	if err != nil {
		return 0, fmt.Errorf("cue: short sector read: %w", err)
	}
	copied := copy(buf, raw[userOffset:userOffset+2048])
	return copied, nil
}

// AbsoluteToTrackSector is the identity translation: ReadSector already
// addresses sectors relative to the track's own INDEX 01.
func AbsoluteToTrackSector(_ dischook.Handle, absolute uint32) uint32 {
	return absolute
}

// CloseTrack closes the underlying BIN file.
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
