// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of rhash.

package discimage

import "testing"

func TestBackendForKnownExtensions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
	}{
		{"cue", "game.cue"},
		{"gdi", "game.gdi"},
		{"chd", "game.chd"},
		{"case insensitive", "GAME.CUE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			backend, err := backendFor(tc.path)
			if err != nil {
				t.Fatalf("backendFor(%q) error = %v", tc.path, err)
			}
			if backend == nil || backend.OpenTrack == nil {
				t.Errorf("backendFor(%q) returned an incomplete hook table", tc.path)
			}
		})
	}
}

func TestBackendForUnknownExtension(t *testing.T) {
	t.Parallel()

	if _, err := backendFor("game.iso"); err == nil {
		t.Error("backendFor() should fail for an extension none of cue/gdi/chd claim")
	}
}

func TestHooksOpenTrackRejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	hooks := Hooks()
	if _, err := hooks.OpenTrack("game.iso", -1); err == nil {
		t.Error("OpenTrack() should fail for an extension none of cue/gdi/chd claim")
	}
}

func TestHooksCloseTrackIgnoresForeignHandle(t *testing.T) {
	t.Parallel()

	hooks := Hooks()
	// CloseTrack must tolerate a handle it didn't produce (e.g. nil from
	// a failed OpenTrack) without panicking.
	hooks.CloseTrack(nil)
}
