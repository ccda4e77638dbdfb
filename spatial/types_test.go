// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"
)

func TestPointScanBytes(t *testing.T) {
	var p Point
	if err := p.Scan([]byte("POINT (-56.152960 -34.882237)")); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if math.Abs(p.Lng - -56.152960) > 1e-6 {
		t.Errorf("Lng = %f, want -56.152960", p.Lng)
	}

	if math.Abs(p.Lat - -34.882237) > 1e-6 {
		t.Errorf("Lat = %f, want -34.882237", p.Lat)
	}
}

func TestPointScanMap(t *testing.T) {
	var p Point
	if err := p.Scan(map[string]interface{}{"x": -56.1, "y": -34.8}); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if p.Lng != -56.1 || p.Lat != -34.8 {
		t.Errorf("Point = %+v, want lng=-56.1 lat=-34.8", p)
	}
}

func TestPointScanNil(t *testing.T) {
	p := Point{Lat: 1, Lng: 2}
	if err := p.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}

	if p.Lat != 0 || p.Lng != 0 {
		t.Errorf("Scan(nil) should zero the point, got %+v", p)
	}
}

func TestPointScanUnsupported(t *testing.T) {
	var p Point
	if err := p.Scan(42); err == nil {
		t.Error("Scan(int) should return an error")
	}
}

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64 // meters
		tol  float64
	}{
		{
			name: "Same point",
			a:    Point{Lat: -34.9, Lng: -56.1},
			b:    Point{Lat: -34.9, Lng: -56.1},
			want: 0,
			tol:  0.001,
		},
		{
			name: "Montevideo to Punta del Este",
			a:    Point{Lat: -34.9011, Lng: -56.1645},
			b:    Point{Lat: -34.9608, Lng: -54.9433},
			want: 111500,
			tol:  2000,
		},
		{
			name: "One degree of latitude at the equator",
			a:    Point{Lat: 0, Lng: 0},
			b:    Point{Lat: 1, Lng: 0},
			want: 111195,
			tol:  200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.HaversineDistance(&tt.b)
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("HaversineDistance() = %f, want %f ± %f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestBBoxContains(t *testing.T) {
	box := BBox{West: -57, South: -35, East: -55, North: -33}

	tests := []struct {
		name  string
		point Point
		want  bool
	}{
		{"Inside", Point{Lat: -34, Lng: -56}, true},
		{"On west edge", Point{Lat: -34, Lng: -57}, true},
		{"On north edge", Point{Lat: -33, Lng: -56}, true},
		{"West of box", Point{Lat: -34, Lng: -58}, false},
		{"North of box", Point{Lat: -32, Lng: -56}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

func TestProjectRoundTrip(t *testing.T) {
	points := []Point{
		{Lat: 0, Lng: 0},
		{Lat: -34.9011, Lng: -56.1645},
		{Lat: 60.1699, Lng: 24.9384},
		{Lat: -85, Lng: 179},
	}

	for _, p := range points {
		x, y := Project(p)

		if x < 0 || x > 1 || y < 0 || y > 1 {
			t.Errorf("Project(%v) = (%f, %f), outside unit square", p, x, y)
		}

		back := Unproject(x, y)
		if math.Abs(back.Lat-p.Lat) > 1e-9 || math.Abs(back.Lng-p.Lng) > 1e-9 {
			t.Errorf("Unproject(Project(%v)) = %v", p, back)
		}
	}
}

func TestProjectNorthIsSmallerY(t *testing.T) {
	_, yNorth := Project(Point{Lat: 10})

	_, ySouth := Project(Point{Lat: -10})
	if yNorth >= ySouth {
		t.Errorf("projected y should grow southward: north=%f south=%f", yNorth, ySouth)
	}
}
