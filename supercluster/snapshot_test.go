// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package supercluster

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maphost/clusterview/spatial"
)

func TestSnapshotRoundTrip(t *testing.T) {
	points := []spatial.Point{
		{Lat: -34.9011, Lng: -56.1645},
		{Lat: -34.9608, Lng: -54.9433},
		{Lat: 0.0001, Lng: 0.0001},
	}

	idx := New(Options{MaxZoom: 14, Radius: 60})
	idx.Load(points)

	var buf bytes.Buffer
	if err := idx.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	restored, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if diff := cmp.Diff(idx.Points(), restored.Points()); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(idx.Options(), restored.Options()); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}

	// The restored index must answer queries identically.
	want := idx.Search(world, 3)

	got := restored.Search(world, 3)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("search results mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotEmptyIndex(t *testing.T) {
	idx := New(Options{})
	idx.Load(nil)

	var buf bytes.Buffer
	if err := idx.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	restored, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if restored.Len() != 0 {
		t.Errorf("Len() = %d, want 0", restored.Len())
	}
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	if _, err := ReadSnapshot(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Error("ReadSnapshot() should fail on arbitrary bytes")
	}
}
