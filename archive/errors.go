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

package archive

import "fmt"

// FormatError indicates an unsupported or invalid archive format.
type FormatError struct {
	Format string
	Reason string
}

func (e FormatError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported archive format %s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("unsupported archive format: %s", e.Format)
}

// FileNotFoundError indicates a file was not found in the archive.
type FileNotFoundError struct {
	Archive      string
	InternalPath string
}

func (e FileNotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in archive %q", e.InternalPath, e.Archive)
}

// NoGameFilesError indicates no game files were found in the archive.
type NoGameFilesError struct {
	Archive string
}

func (e NoGameFilesError) Error() string {
	return fmt.Sprintf("no game files found in archive %q", e.Archive)
}

// DiscNotSupportedError indicates disc-based games in archives are not supported.
type DiscNotSupportedError struct {
	Console string
}

func (e DiscNotSupportedError) Error() string {
	return fmt.Sprintf("disc-based games (%s) in archives are not supported", e.Console)
}

var (
	errorSink   func(string)
	verboseSink func(string)
)

// SetErrorSink installs the process-wide error callback for this package,
// wired in by the root package's SetErrorSink the same way it reaches
// iohook, dischook, iso9660, recipe and chd.
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
// unchanged.
func notify(err error) error {
	if err != nil && errorSink != nil {
		errorSink(err.Error())
	}
	return err
}
