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

// Package recipe holds one file per console family, each implementing
// the byte-selection rules that turn a ROM, a disc image, or a raw
// buffer into the bytes that get fed to the digest: header stripping,
// disc-sector extraction, and whole-file hashing. Every exported
// function here is a leaf: callers (the root package's dispatch
// tables) supply a file path or a buffer and get back a
// fingerprint or a classified error.
package recipe

import (
	"fmt"

	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/internal/digest"
	"github.com/retrohash/rhash/internal/kinderr"
	"github.com/retrohash/rhash/iohook"
)

// MaxBufferSize bounds how much of a file or buffer is ever hashed, an
// arbitrary limit ported verbatim from the source's MAX_BUFFER_SIZE to
// prevent a pathological file from exhausting memory or CPU.
const MaxBufferSize = 64 * 1024 * 1024

// wholeFileBufferSize is the streaming chunk size rc_hash_whole_file
// reads through; unrelated to MaxBufferSize, which bounds the total.
const wholeFileBufferSize = 65536

// sectorSize is the logical sector size every disc recipe in this package
// reads through dischook, ported from the source's fixed 2048-byte
// rc_cd_read_sector buffers.
const sectorSize = 2048

// hashCDFile appends size bytes of h starting at sector to d, reading one
// sector at a time, ported from rc_hash_cd_file. description names the
// region being hashed for the error message on a short read.
func hashCDFile(d *digest.Digest, h dischook.Handle, sector uint32, size uint32, description string) error {
	buf := make([]byte, sectorSize)
	if size > MaxBufferSize {
		size = MaxBufferSize
	}
	verbose("Hashing %s contents (%d bytes)", description, size)

	for size > 0 {
		want := uint32(sectorSize)
		if size < want {
			want = size
		}
		n, err := dischook.ReadSector(h, sector, buf[:want])
		if err != nil {
			return err
		}
		if uint32(n) < want {
			return errf(kinderr.IO, "could not read %s", description)
		}
		d.Append(buf[:n])
		size -= uint32(n)
		sector++
	}
	return nil
}

var (
	errorSink   func(string)
	verboseSink func(string)
)

// SetErrorSink installs the process-wide error callback for this package.
func SetErrorSink(f func(string)) { errorSink = f }

// SetVerboseSink installs the process-wide verbose callback for this
// package.
func SetVerboseSink(f func(string)) { verboseSink = f }

func verbose(format string, args ...any) {
	if verboseSink != nil {
		verboseSink(fmt.Sprintf(format, args...))
	}
}

func errf(kind kinderr.Kind, format string, args ...any) error {
	return kinderr.New(kind, errorSink, format, args...)
}

// HashBuffer hashes up to MaxBufferSize bytes of buf directly, with no
// header stripping or interpretation. It backs every console whose
// recipe is "just hash the bytes" (Game Boy, Genesis/Mega Drive, Atari
// 2600, and the rest of rc_hash_generate_from_buffer's default case).
func HashBuffer(buf []byte) string {
	if len(buf) > MaxBufferSize {
		buf = buf[:MaxBufferSize]
	}
	verbose("Hashing %d byte buffer", len(buf))
	return digest.Sum(buf)
}

// HashWholeFile streams path through the installed iohook.Hooks in
// wholeFileBufferSize chunks, capping the total at MaxBufferSize,
// ported from rc_hash_whole_file. It never loads more than one chunk
// into memory regardless of file size.
func HashWholeFile(path string) (string, error) {
	h, err := iohook.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = iohook.Close(h) }()

	size, err := iohook.Size(h)
	if err != nil {
		return "", errf(kinderr.IO, "could not determine size of %s: %v", path, err)
	}

	remaining := size
	if remaining > MaxBufferSize {
		verbose("Hashing first %d bytes (of %d bytes) of %s", MaxBufferSize, size, path)
		remaining = MaxBufferSize
	} else {
		verbose("Hashing %s (%d bytes)", path, size)
	}

	d := digest.New()
	buf := make([]byte, wholeFileBufferSize)
	for remaining > 0 {
		chunk := int64(wholeFileBufferSize)
		if remaining < chunk {
			chunk = remaining
		}
		n, err := iohook.Read(h, buf[:chunk])
		if err != nil {
			return "", errf(kinderr.IO, "could not read %s: %v", path, err)
		}
		d.Append(buf[:n])
		remaining -= int64(n)
		if int64(n) < chunk {
			break
		}
	}

	return d.Finalize(), nil
}

// ReadWholeFile loads up to MaxBufferSize bytes of path into memory,
// ported from rc_hash_buffered_file's read half; callers (the header
// stripping recipes) inspect the buffer before deciding what to hash.
func ReadWholeFile(path string) ([]byte, error) {
	h, err := iohook.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = iohook.Close(h) }()

	size, err := iohook.Size(h)
	if err != nil {
		return nil, errf(kinderr.IO, "could not determine size of %s: %v", path, err)
	}
	if size > MaxBufferSize {
		verbose("Buffering first %d bytes (of %d bytes) of %s", MaxBufferSize, size, path)
		size = MaxBufferSize
	} else {
		verbose("Buffering %s (%d bytes)", path, size)
	}

	buf := make([]byte, size)
	var read int64
	for read < size {
		n, err := iohook.Read(h, buf[read:])
		if err != nil {
			return nil, errf(kinderr.IO, "could not read %s: %v", path, err)
		}
		if n == 0 {
			break
		}
		read += int64(n)
	}
	return buf[:read], nil
}
