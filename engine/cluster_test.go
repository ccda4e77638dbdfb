// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maphost/clusterview/spatial"
)

func TestClusterSummary(t *testing.T) {
	c := Cluster{
		Pos:     spatial.Point{Lat: -34.9011, Lng: -56.1645},
		Markers: []Marker{markerAt(1, 0, 0), markerAt(2, 0, 0)},
	}

	assert.Equal(t, "-34.9011,-56.1645,2", c.Summary())
}

func TestClusterSummaryDistinguishesCount(t *testing.T) {
	pos := spatial.Point{Lat: 1, Lng: 2}
	a := Cluster{Pos: pos, Markers: []Marker{markerAt(1, 0, 0)}}
	b := Cluster{Pos: pos, Markers: []Marker{markerAt(1, 0, 0), markerAt(2, 0, 0)}}

	assert.NotEqual(t, a.Summary(), b.Summary())
}

func TestLeafExpansionZoom(t *testing.T) {
	c := Cluster{Markers: []Marker{markerAt(1, 0, 0)}}

	assert.Equal(t, ExpansionZoomNone, c.ExpansionZoom())
}

func TestAggregateExpansionZoomCapped(t *testing.T) {
	fake := &fakeIndex{expZoom: 25, known: true}
	c := Cluster{id: 100, idx: fake, Markers: []Marker{markerAt(1, 0, 0), markerAt(2, 0, 0)}}

	assert.Equal(t, MaxExpansionZoom, c.ExpansionZoom())
}

func TestAggregateExpansionZoomPassthrough(t *testing.T) {
	fake := &fakeIndex{expZoom: 7, known: true}
	c := Cluster{id: 100, idx: fake}

	assert.Equal(t, 7, c.ExpansionZoom())
}

func TestStaleAggregateExpansionZoom(t *testing.T) {
	// The id belongs to a previous index generation: the lookup fails
	// silently instead of zooming the map somewhere wrong.
	fake := &fakeIndex{known: false}
	c := Cluster{id: 100, idx: fake}

	assert.Equal(t, ExpansionZoomNone, c.ExpansionZoom())
}

func TestExpansionZoomAgainstRealIndex(t *testing.T) {
	e := New(Config{MaxZoom: 16, Radius: 40})
	markers := []Marker{
		markerAt(1, 0, 0),
		markerAt(2, 0.0001, 0.0001),
	}

	clusters, _ := e.Calculate(markers, worldView)
	require.Len(t, clusters, 1)
	require.True(t, clusters[0].IsAggregate())

	zoom := clusters[0].ExpansionZoom()
	assert.Greater(t, zoom, 0)
	assert.LessOrEqual(t, zoom, MaxExpansionZoom)
}
