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

package rhash

import (
	"fmt"
	"sync"

	"github.com/retrohash/rhash/archive"
	"github.com/retrohash/rhash/chd"
	"github.com/retrohash/rhash/dischook"
	"github.com/retrohash/rhash/iohook"
	"github.com/retrohash/rhash/iso9660"
	"github.com/retrohash/rhash/recipe"
)

var (
	errorSink       func(string)
	verboseSink     func(string)
	errorSinkOnce   sync.Once
	verboseSinkOnce sync.Once
)

// SetErrorSink registers the callback invoked with the short message of
// every error this package and its sub-packages raise, matching
// rc_hash_init_error_message_callback. Only the first call takes effect,
// per §5: reinstalling mid-process is a documented no-op, not a panic.
func SetErrorSink(f func(string)) {
	errorSinkOnce.Do(func() {
		errorSink = f
		iohook.SetErrorSink(f)
		dischook.SetErrorSink(f)
		iso9660.SetErrorSink(f)
		recipe.SetErrorSink(f)
		chd.SetErrorSink(f)
		archive.SetErrorSink(f)
	})
}

// SetVerboseSink registers the callback invoked with informational text
// describing what a recipe is doing, matching
// rc_hash_init_verbose_message_callback.
func SetVerboseSink(f func(string)) {
	verboseSinkOnce.Do(func() {
		verboseSink = f
		iohook.SetVerboseSink(f)
		dischook.SetVerboseSink(f)
		iso9660.SetVerboseSink(f)
		recipe.SetVerboseSink(f)
		chd.SetVerboseSink(f)
		archive.SetVerboseSink(f)
	})
}

func verbose(format string, args ...any) {
	if verboseSink != nil {
		verboseSink(fmt.Sprintf(format, args...))
	}
}
