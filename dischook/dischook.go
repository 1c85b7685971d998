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

// Package dischook is the disc facade (component C): a uniform
// open-track/read-sector/close surface over whatever disc-image backend
// (cue, gdi, chd, ...) the caller has wired in, ported from
// rc_hash_cdreader and the rc_cd_* wrappers around it. Unlike iohook,
// there is no usable default: a disc recipe with no installed Hooks
// fails with a Configuration error, matching rc_hash_get_default_cdreader
// only existing on platforms (Windows raw device access) this module
// does not target.
package dischook

import (
	"fmt"
	"sync"

	"github.com/retrohash/rhash/internal/kinderr"
)

// Handle is an opaque open-track handle returned by OpenTrack. Its
// concrete type is whatever the installed Hooks.OpenTrack returns.
type Handle any

// TrackSelector picks which track OpenTrack should open, mirroring the
// RC_HASH_CDTRACK_* sentinels rc_cd_open accepts alongside literal track
// numbers.
type TrackSelector int32

// TrackSectorInvalid is the sentinel AbsoluteToTrackSector implementations
// return when an absolute sector does not fall within the opened track,
// per Design Notes (c): the source signals this with a negative int32
// (the translated sector cast to int32 going negative); since this port's
// sector type is unsigned throughout, an explicit sentinel value takes its
// place instead of relying on a sign bit.
const TrackSectorInvalid = ^uint32(0)

const (
	// TrackFirstData opens the first data track on the disc.
	TrackFirstData TrackSelector = -1
	// TrackLargest opens the largest track on the disc, used for hunting
	// the payload track on hybrid audio/data discs.
	TrackLargest TrackSelector = -2
	// TrackLast opens the last track on the disc.
	TrackLast TrackSelector = -3
	// TrackPrimary opens whichever track is considered ROM in the
	// absence of a specific primary-volume-descriptor game track, used
	// when a disc recipe doesn't care which track it lands in.
	TrackPrimary TrackSelector = -4
)

// Hooks is the capability set a caller installs to let disc recipes read
// sectors from a disc image. Every field is required: there is no
// platform-generic default the way iohook has os.File.
type Hooks struct {
	// OpenTrack opens the track selected by track (either a TrackSelector
	// sentinel or a literal 1-based track number) and returns a handle
	// good for subsequent ReadSector/AbsoluteToTrackSector/CloseTrack
	// calls.
	OpenTrack func(path string, track int32) (Handle, error)
	// ReadSector reads one 2048-byte logical sector at sector (0-based,
	// relative to the opened track) into buf, returning the number of
	// bytes copied.
	ReadSector func(h Handle, sector uint32, buf []byte) (int, error)
	// AbsoluteToTrackSector translates an absolute disc sector (as found
	// embedded in a playlist or parent volume descriptor) into a sector
	// relative to the currently open track. Backends without a concept
	// of absolute addressing may return the input unchanged.
	AbsoluteToTrackSector func(h Handle, absolute uint32) uint32
	// CloseTrack releases h.
	CloseTrack func(h Handle)
}

var (
	mu          sync.Mutex
	active      *Hooks
	errorSink   func(string)
	verboseSink func(string)
)

// SetErrorSink installs the process-wide error callback for this package.
func SetErrorSink(f func(string)) {
	mu.Lock()
	defer mu.Unlock()
	errorSink = f
}

// SetVerboseSink installs the process-wide verbose callback for this
// package.
func SetVerboseSink(f func(string)) {
	mu.Lock()
	defer mu.Unlock()
	verboseSink = f
}

// Install registers the disc-image backend's hook table. Per §5, once
// installed the table is fixed for the life of the process; a second
// call is a no-op rather than a panic.
func Install(h *Hooks) {
	mu.Lock()
	defer mu.Unlock()
	if active != nil {
		return
	}
	active = h
}

func snapshot() (*Hooks, func(string), func(string)) {
	mu.Lock()
	defer mu.Unlock()
	return active, errorSink, verboseSink
}

// OpenTrack opens track on the disc image at path. It fails with a
// Configuration error if no backend has been installed, matching
// rc_hash_error("no disc hooks installed") in spirit.
func OpenTrack(path string, track int32) (Handle, error) {
	hooks, sink, _ := snapshot()
	if hooks == nil || hooks.OpenTrack == nil {
		return nil, kinderr.New(kinderr.Configuration, sink,
			"no disc image hooks installed; call dischook.Install before hashing a disc-based console")
	}
	h, err := hooks.OpenTrack(path, track)
	if err != nil {
		return nil, kinderr.New(kinderr.IO, sink, "could not open track %d of %s: %v", track, path, err)
	}
	return h, nil
}

// ReadSector reads sector from h into buf.
func ReadSector(h Handle, sector uint32, buf []byte) (int, error) {
	hooks, sink, _ := snapshot()
	if hooks == nil || hooks.ReadSector == nil {
		return 0, kinderr.New(kinderr.Configuration, sink, "no disc image hooks installed")
	}
	return hooks.ReadSector(h, sector, buf)
}

// AbsoluteToTrackSector converts an absolute sector to one relative to h's
// track.
func AbsoluteToTrackSector(h Handle, absolute uint32) uint32 {
	hooks, _, _ := snapshot()
	if hooks == nil || hooks.AbsoluteToTrackSector == nil {
		return absolute
	}
	return hooks.AbsoluteToTrackSector(h, absolute)
}

// CloseTrack releases h. It is a no-op if no backend is installed, so
// recipes can defer CloseTrack unconditionally after a successful
// OpenTrack.
func CloseTrack(h Handle) {
	hooks, _, _ := snapshot()
	if hooks == nil || hooks.CloseTrack == nil {
		return
	}
	hooks.CloseTrack(h)
}

func verbose(format string, args ...any) {
	_, _, sink := snapshot()
	if sink != nil {
		sink(fmt.Sprintf(format, args...))
	}
}

// Installed reports whether a disc backend has been wired in, so
// dispatch can short-circuit straight to a Configuration error without
// needing to attempt OpenTrack first.
func Installed() bool {
	hooks, _, _ := snapshot()
	return hooks != nil
}
