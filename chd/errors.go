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

package chd

import (
	"errors"
	"fmt"
)

// Allocation limits bound how much a single malformed CHD image can make
// this package allocate while fingerprinting it.
const (
	// MaxCompMapLen is the maximum compressed map size (100MB).
	MaxCompMapLen = 100 * 1024 * 1024

	// MaxNumHunks is the maximum number of hunks (10M = ~200GB uncompressed).
	MaxNumHunks = 10_000_000

	// MaxMetadataLen is the maximum metadata entry size (16MB, matches 24-bit limit).
	MaxMetadataLen = 16 * 1024 * 1024

	// MaxNumTracks is the maximum number of tracks (200, generous for any disc).
	MaxNumTracks = 200

	// MaxMetadataEntries is the maximum metadata chain entries (prevents loops).
	MaxMetadataEntries = 1000
)

// Sentinel errors describing why a CHD image could not be opened or read.
// These stay plain sentinels, rather than a kinderr.Error, so callers can
// keep testing specific failure modes with errors.Is; notify is what feeds
// the resulting message into rhash's process-wide error sink.
var (
	// ErrInvalidMagic indicates the file does not have a valid CHD magic word.
	ErrInvalidMagic = errors.New("invalid CHD magic: expected MComprHD")

	// ErrInvalidHeader indicates the header structure is invalid.
	ErrInvalidHeader = errors.New("invalid CHD header")

	// ErrUnsupportedVersion indicates an unsupported CHD version.
	ErrUnsupportedVersion = errors.New("unsupported CHD version")

	// ErrUnsupportedCodec indicates an unsupported compression codec.
	ErrUnsupportedCodec = errors.New("unsupported compression codec")

	// ErrInvalidHunk indicates an invalid hunk index.
	ErrInvalidHunk = errors.New("invalid hunk index")

	// ErrDecompressFailed indicates decompression failed.
	ErrDecompressFailed = errors.New("decompression failed")

	// ErrCorruptData indicates data corruption was detected.
	ErrCorruptData = errors.New("data corruption detected")

	// ErrNoTracks indicates no track metadata was found.
	ErrNoTracks = errors.New("no track metadata found")

	// ErrInvalidMetadata indicates invalid metadata format.
	ErrInvalidMetadata = errors.New("invalid metadata format")
)

var (
	errorSink   func(string)
	verboseSink func(string)
)

// SetErrorSink installs the process-wide error callback for this package,
// wired in by the root package's SetErrorSink the same way it reaches
// iohook, dischook, iso9660 and recipe.
func SetErrorSink(f func(string)) { errorSink = f }

// SetVerboseSink installs the process-wide verbose callback for this
// package.
func SetVerboseSink(f func(string)) { verboseSink = f }

func verbose(format string, args ...any) {
	if verboseSink != nil {
		verboseSink(fmt.Sprintf(format, args...))
	}
}

// notify reports err to the installed error sink, if any, and returns it
// unchanged so a caller can still wrap one of the sentinels above with %w
// and leave errors.Is working for its own tests.
func notify(err error) error {
	if err != nil && errorSink != nil {
		errorSink(err.Error())
	}
	return err
}
