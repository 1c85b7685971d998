// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package dischook

import (
	"errors"
	"testing"

	"github.com/retrohash/rhash/internal/kinderr"
)

// TestNotInstalledFailsWithConfiguration must run before any test installs
// a backend, since Install is a process-wide singleton with no reset: a
// second call is a documented no-op. It is declared before
// TestInstallOnce in this file, but another test in the package could
// still install a backend first, so the check below tolerates running
// after installation too by skipping in that case.
func TestNotInstalledFailsWithConfiguration(t *testing.T) {
	if Installed() {
		t.Skip("a backend was already installed by another test in this binary")
	}

	if _, err := OpenTrack("disc.bin", int32(TrackFirstData)); err == nil {
		t.Fatal("OpenTrack() should fail when no backend is installed")
	} else {
		var kerr *kinderr.Error
		if !errors.As(err, &kerr) || kerr.Kind != kinderr.Configuration {
			t.Errorf("OpenTrack() error = %v, want a Configuration kinderr.Error", err)
		}
	}

	if _, err := ReadSector(nil, 0, make([]byte, 2048)); err == nil {
		t.Error("ReadSector() should fail when no backend is installed")
	}

	// AbsoluteToTrackSector and CloseTrack degrade gracefully rather than
	// erroring, so recipes can call CloseTrack unconditionally.
	if got := AbsoluteToTrackSector(nil, 42); got != 42 {
		t.Errorf("AbsoluteToTrackSector() = %d, want 42 (passthrough) when no backend installed", got)
	}
	CloseTrack(nil) // must not panic
}

func TestInstallOnceThenServesRequests(t *testing.T) {
	type handle struct{ data []byte }

	Install(&Hooks{
		OpenTrack: func(_ string, _ int32) (Handle, error) {
			return &handle{data: []byte("sector data")}, nil
		},
		ReadSector: func(h Handle, _ uint32, buf []byte) (int, error) {
			return copy(buf, h.(*handle).data), nil
		},
		AbsoluteToTrackSector: func(_ Handle, absolute uint32) uint32 {
			return absolute + 1
		},
		CloseTrack: func(_ Handle) {},
	})

	if !Installed() {
		t.Fatal("Installed() should report true after Install")
	}

	h, err := OpenTrack("disc.bin", int32(TrackLargest))
	if err != nil {
		t.Fatalf("OpenTrack() error = %v", err)
	}
	defer CloseTrack(h)

	buf := make([]byte, 32)
	n, err := ReadSector(h, 0, buf)
	if err != nil {
		t.Fatalf("ReadSector() error = %v", err)
	}
	if string(buf[:n]) != "sector data" {
		t.Errorf("ReadSector() = %q, want %q", buf[:n], "sector data")
	}

	if got := AbsoluteToTrackSector(h, 9); got != 10 {
		t.Errorf("AbsoluteToTrackSector() = %d, want 10", got)
	}

	// A second Install call is a documented no-op: the original handlers
	// must still be the ones serving requests.
	Install(&Hooks{
		OpenTrack: func(_ string, _ int32) (Handle, error) {
			t.Fatal("second Install's OpenTrack should never run")
			return nil, nil
		},
	})
	if _, err := OpenTrack("disc.bin", int32(TrackLast)); err != nil {
		t.Fatalf("OpenTrack() after second Install() error = %v", err)
	}
}
