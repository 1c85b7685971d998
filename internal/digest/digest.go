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

// Package digest wraps the MD5 primitive the hashing recipes fold bytes
// into. It exists so recipes never import crypto/md5 directly: the only
// thing they need is "append these bytes" and "render the final
// fingerprint", and keeping that behind one small type makes it trivial to
// confirm every recipe finalizes exactly once.
package digest

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"hash"
)

// Size is the number of hex characters in a rendered fingerprint.
const Size = 32

// Digest accumulates bytes and renders a 32-character lowercase hex
// fingerprint, matching the shape of the source's rolling md5_state_t.
type Digest struct {
	h hash.Hash
}

// New returns a Digest ready to accept bytes.
func New() *Digest {
	return &Digest{h: md5.New()} //nolint:gosec
}

// Append folds b into the running digest. It never fails: hash.Hash.Write
// is documented never to return an error.
func (d *Digest) Append(b []byte) {
	_, _ = d.h.Write(b)
}

// Finalize renders the accumulated bytes as a 32-character lowercase hex
// string. Finalize may be called only once per Digest; the underlying
// hash.Hash is not reset.
func (d *Digest) Finalize() string {
	sum := d.h.Sum(nil)
	return hex.EncodeToString(sum)
}

// Sum is a convenience helper that hashes b in one call.
func Sum(b []byte) string {
	d := New()
	d.Append(b)
	return d.Finalize()
}
