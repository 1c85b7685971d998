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

// Package iohook is the I/O facade (component B): a uniform
// open/seek/tell/read/close surface over either the default 64-bit-safe
// file I/O or a caller-supplied hook table, ported from rc_hash_filereader
// and the rc_file_* wrappers around it.
package iohook

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/retrohash/rhash/internal/kinderr"
	"github.com/retrohash/rhash/internal/pathutil"
)

// Handle is an opaque file handle returned by Open. Its concrete type is
// whatever the installed Hooks.Open returns.
type Handle any

// Hooks is the capability set a caller may install to override any subset
// of the default file operations. A nil field falls back to the default
// implementation at install time, matching rc_hash_init_custom_filereader
// seeding filereader_funcs with defaults first and then overlaying any
// non-nil caller fields.
type Hooks struct {
	Open  func(path string) (Handle, error)
	Seek  func(h Handle, offset int64, whence int) error
	Tell  func(h Handle) (int64, error)
	Read  func(h Handle, buf []byte) (int, error)
	Close func(h Handle) error
}

var (
	mu          sync.Mutex
	installed   bool
	active      Hooks
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

func verbose(format string, args ...any) {
	mu.Lock()
	sink := verboseSink
	mu.Unlock()
	if sink != nil {
		sink(fmt.Sprintf(format, args...))
	}
}

// Install registers a custom hook table, merging any unset field with the
// default os.File-backed implementation. Per §5, hook tables are
// installed once and live for the process: a second call is a
// documented no-op rather than a panic, matching "mutation during
// hashing is unsupported" being undefined-but-harmless here.
func Install(h *Hooks) {
	mu.Lock()
	defer mu.Unlock()
	if installed {
		return
	}
	active = mergeDefaults(h)
	installed = true
}

// ensureInstalled lazily installs the default table the first time any
// operation is used without an explicit Install call.
func ensureInstalled() Hooks {
	mu.Lock()
	defer mu.Unlock()
	if !installed {
		active = mergeDefaults(nil)
		installed = true
	}
	return active
}

func mergeDefaults(h *Hooks) Hooks {
	merged := defaultHooks
	if h != nil {
		if h.Open != nil {
			merged.Open = h.Open
		}
		if h.Seek != nil {
			merged.Seek = h.Seek
		}
		if h.Tell != nil {
			merged.Tell = h.Tell
		}
		if h.Read != nil {
			merged.Read = h.Read
		}
		if h.Close != nil {
			merged.Close = h.Close
		}
	}
	return merged
}

var defaultHooks = Hooks{
	Open: func(path string) (Handle, error) {
		f, err := os.Open(path) //nolint:gosec // path comes from the caller by design
		if err != nil {
			return nil, err
		}
		return f, nil
	},
	Seek: func(h Handle, offset int64, whence int) error {
		_, err := h.(*os.File).Seek(offset, whence)
		return err
	},
	Tell: func(h Handle) (int64, error) {
		return h.(*os.File).Seek(0, io.SeekCurrent)
	},
	Read: func(h Handle, buf []byte) (int, error) {
		n, err := h.(*os.File).Read(buf)
		if err == io.EOF {
			err = nil
		}
		return n, err
	},
	Close: func(h Handle) error {
		return h.(*os.File).Close()
	},
}

// Seek/whence constants, re-exported so callers never need "io" just to
// drive this package.
const (
	SeekStart   = io.SeekStart
	SeekCurrent = io.SeekCurrent
	SeekEnd     = io.SeekEnd
)

// Open opens path through the installed hooks, emitting a verbose
// "Opened <filename>" event on success, matching rc_file_open.
func Open(path string) (Handle, error) {
	hooks := ensureInstalled()
	h, err := hooks.Open(path)
	if err != nil {
		return nil, kinderr.New(kinderr.IO, errorSinkFunc(), "could not open %s: %v", path, err)
	}
	verbose("Opened %s", pathutil.Filename(path))
	return h, nil
}

// Seek repositions h.
func Seek(h Handle, offset int64, whence int) error {
	return ensureInstalled().Seek(h, offset, whence)
}

// Tell reports h's current position.
func Tell(h Handle) (int64, error) {
	return ensureInstalled().Tell(h)
}

// Read fills buf from h, returning the number of bytes actually read.
func Read(h Handle, buf []byte) (int, error) {
	return ensureInstalled().Read(h, buf)
}

// Close releases h.
func Close(h Handle) error {
	return ensureInstalled().Close(h)
}

// Size seeks to the end of h to determine its length, then seeks back to
// offset 0 (not to the position h had before the call), matching the size probe every whole-file
// recipe performs before allocating its working buffer.
func Size(h Handle) (int64, error) {
	if err := Seek(h, 0, SeekEnd); err != nil {
		return 0, err
	}
	size, err := Tell(h)
	if err != nil {
		return 0, err
	}
	if err := Seek(h, 0, SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

func errorSinkFunc() func(string) {
	mu.Lock()
	defer mu.Unlock()
	return errorSink
}
