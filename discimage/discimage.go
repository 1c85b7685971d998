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

// Package discimage wires the concrete disc-image backends (cue, gdi, chd)
// behind a single dischook.Hooks table, dispatching on the opened path's
// extension. This is the reference disc-hook implementation the CLI
// installs; any caller could install the individual backends directly, or
// supply its own dischook.Hooks for a format this package doesn't cover
// (a block device, a network-mounted image, ...).
package discimage

import (
	"fmt"

	"github.com/retrohash/rhash/discimage/chd"
	"github.com/retrohash/rhash/discimage/cue"
	"github.com/retrohash/rhash/discimage/gdi"
	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/pathutil"
)

// multiHandle remembers which backend served OpenTrack so ReadSector,
// AbsoluteToTrackSector, and CloseTrack can be routed back to it.
type multiHandle struct {
	backend *dischook.Hooks
	inner   dischook.Handle
}

func backendFor(path string) (*dischook.Hooks, error) {
	switch pathutil.Extension(path) {
	case ".cue":
		return cue.Hooks(), nil
	case ".gdi":
		return gdi.Hooks(), nil
	case ".chd":
		return chd.Hooks(), nil
	default:
		return nil, fmt.Errorf("discimage: no backend for %s", path)
	}
}

// Hooks returns a dischook.Hooks table that dispatches open_track to the
// cue/gdi/chd backend matching path's extension, passing every other
// operation through to whichever backend served the original open_track
// call.
func Hooks() *dischook.Hooks {
	return &dischook.Hooks{
		OpenTrack: func(path string, track int32) (dischook.Handle, error) {
			backend, err := backendFor(path)
			if err != nil {
				return nil, err
			}
			inner, err := backend.OpenTrack(path, track)
			if err != nil {
				return nil, err
			}
			return &multiHandle{backend: backend, inner: inner}, nil
		},
		ReadSector: func(h dischook.Handle, sector uint32, buf []byte) (int, error) {
			mh := h.(*multiHandle)
			return mh.backend.ReadSector(mh.inner, sector, buf)
		},
		AbsoluteToTrackSector: func(h dischook.Handle, absolute uint32) uint32 {
			mh := h.(*multiHandle)
			return mh.backend.AbsoluteToTrackSector(mh.inner, absolute)
		},
		CloseTrack: func(h dischook.Handle) {
			mh, ok := h.(*multiHandle)
			if !ok {
				return
			}
			mh.backend.CloseTrack(mh.inner)
		},
	}
}
