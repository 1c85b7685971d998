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

// Package chd adapts the rhash/chd CHD image reader into a
// dischook.Hooks implementation, so recipes in the recipe package can
// hash tracks out of a compressed MAME-format disc image the same way
// they hash tracks out of a raw .cue/.bin pair. It is reference
// infrastructure, not part of the core hashing contract: any
// dischook.Hooks implementation satisfies a disc recipe equally well.
package chd

import (
	"fmt"
	"io"

	rawchd "github.com/retrohash/rhash/chd"
	"github.com/retrohash/rhash/dischook"
)

const logicalSectorSize = 2048

// mode1UserDataOffset is the offset of the 2048-byte user data payload
// within a raw 2352-byte Mode 1 (or Mode 2 Form 1) CD-ROM sector: a
// 12-byte sync pattern, a 4-byte header, then the payload. Mode 2 Form 2
// sectors (2336 bytes, no ECC) are not handled by this offset: a track
// opened by number is always read at this offset. The first-data-track
// and primary selectors use DataTrackSectorReader instead, which
// rhash/chd computes from CHD metadata.
const mode1UserDataOffset = 16

// handle is the dischook.Handle concrete type this package hands back
// from Open: an open CHD image, the io.ReaderAt selected for the
// requested track, and that track's starting frame (0 for the
// whole-image/first-data-track readers, which already address sector 0
// as the track start).
type handle struct {
	image      *rawchd.CHD
	reader     io.ReaderAt
	startFrame int64
}

// Open opens the CHD image at path and selects the track dischook's
// selector (or literal 1-based track number) asks for.
func Open(path string, track int32) (dischook.Handle, error) {
	image, err := rawchd.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chd image: %w", err)
	}

	h := &handle{image: image}
	h.reader, h.startFrame = selectReader(image, track)
	return h, nil
}

// selectReader picks the io.ReaderAt backing track and its starting
// frame. rhash/chd exposes a robust "first data track" reader (it falls
// back to scanning for the ISO9660 PVD when track metadata is
// unreliable) and a whole-image reader; literal track numbers and the
// LARGEST/LAST selectors beyond the first data track are served by a
// manual reader built from track metadata, since rhash/chd doesn't
// expose per-track readers directly.
func selectReader(image *rawchd.CHD, track int32) (io.ReaderAt, int64) {
	switch dischook.TrackSelector(track) {
	case dischook.TrackFirstData, dischook.TrackPrimary:
		return image.DataTrackSectorReader(), 0
	case dischook.TrackLargest:
		if t, ok := largestDataTrack(image); ok {
			return trackReader(image, t), int64(t.StartFrame)
		}
	case dischook.TrackLast:
		if t, ok := lastDataTrack(image); ok {
			return trackReader(image, t), int64(t.StartFrame)
		}
	default:
		for _, t := range image.Tracks() {
			if int32(t.Number) == track {
				return trackReader(image, t), int64(t.StartFrame)
			}
		}
	}
	return image.DataTrackSectorReader(), 0
}

func largestDataTrack(image *rawchd.CHD) (rawchd.Track, bool) {
	var best rawchd.Track
	found := false
	for _, t := range image.Tracks() {
		if !t.IsDataTrack() {
			continue
		}
		if !found || t.Frames > best.Frames {
			best, found = t, true
		}
	}
	return best, found
}

func lastDataTrack(image *rawchd.CHD) (rawchd.Track, bool) {
	tracks := image.Tracks()
	for i := len(tracks) - 1; i >= 0; i-- {
		if tracks[i].IsDataTrack() {
			return tracks[i], true
		}
	}
	return rawchd.Track{}, false
}

// trackReader builds a logical-sector reader over one track, translating
// a track-relative 2048-byte sector index into a raw-sector read through
// image.RawSectorReader and slicing out the user-data payload.
func trackReader(image *rawchd.CHD, t rawchd.Track) io.ReaderAt {
	return &manualTrackReader{
		raw:        image.RawSectorReader(),
		startFrame: int64(t.StartFrame),
		frames:     int64(t.Frames),
		sectorSize: int64(t.SectorSize()),
	}
}

type manualTrackReader struct {
	raw        io.ReaderAt
	startFrame int64
	frames     int64
	sectorSize int64
}

func (r *manualTrackReader) ReadAt(dest []byte, off int64) (int, error) {
	sector := off / logicalSectorSize
	inSector := off % logicalSectorSize
	total := 0

	for total < len(dest) {
		if r.frames > 0 && sector >= r.frames {
			return total, io.EOF
		}

		rawOffset := (r.startFrame + sector) * r.sectorSize
		raw := make([]byte, r.sectorSize)
		n, err := r.raw.ReadAt(raw, rawOffset)
		if n < mode1UserDataOffset+logicalSectorSize {
			if err == nil {
				err = io.ErrUnexpectedEOF
			}
			return total, err
		}

		avail := raw[mode1UserDataOffset+inSector : mode1UserDataOffset+logicalSectorSize]
		copied := copy(dest[total:], avail)
		total += copied
		inSector = 0
		sector++

		if err != nil && err != io.EOF {
			return total, err
		}
	}
	return total, nil
}

// ReadSector reads one logical sector from h, ported from the shape of
// rc_cd_read_sector: a single bounded read at sector*2048.
func ReadSector(h dischook.Handle, sector uint32, buf []byte) (int, error) {
	dh, ok := h.(*handle)
	if !ok {
		return 0, fmt.Errorf("chd: invalid handle")
	}
	n, err := dh.reader.ReadAt(buf, int64(sector)*logicalSectorSize)
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// AbsoluteToTrackSector translates an absolute disc sector into one
// relative to h's track by subtracting the track's starting frame,
// returning dischook.TrackSectorInvalid if absolute falls before it.
func AbsoluteToTrackSector(h dischook.Handle, absolute uint32) uint32 {
	dh, ok := h.(*handle)
	if !ok {
		return dischook.TrackSectorInvalid
	}
	if int64(absolute) < dh.startFrame {
		return dischook.TrackSectorInvalid
	}
	return uint32(int64(absolute) - dh.startFrame)
}

// CloseTrack closes the underlying CHD file.
func CloseTrack(h dischook.Handle) {
	if dh, ok := h.(*handle); ok {
		_ = dh.image.Close()
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
