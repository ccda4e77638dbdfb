// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package layer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maphost/clusterview/spatial"
)

const sampleLayer = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-56.1645, -34.9011]},
			"properties": {"id": 10, "label": "Plaza Independencia"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [-54.9433, -34.9608]},
			"properties": {"label": "Punta del Este"}
		}
	]
}`

func TestReadGeoJSON(t *testing.T) {
	markers, err := ReadGeoJSON(strings.NewReader(sampleLayer))
	require.NoError(t, err)
	require.Len(t, markers, 2)

	assert.Equal(t, int64(10), markers[0].ID)
	assert.Equal(t, "Plaza Independencia", markers[0].Label)
	assert.Equal(t, spatial.Point{Lat: -34.9011, Lng: -56.1645}, markers[0].Point)

	// Features without an id get a sequential one.
	assert.Equal(t, int64(2), markers[1].ID)
}

func TestReadGeoJSONRejectsNonPoint(t *testing.T) {
	input := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
				"properties": {}
			}
		]
	}`

	_, err := ReadGeoJSON(strings.NewReader(input))
	assert.Error(t, err)
}

func TestReadGeoJSONRejectsGarbage(t *testing.T) {
	_, err := ReadGeoJSON(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestGeoJSONRoundTrip(t *testing.T) {
	markers := []Marker{
		{ID: 1, Label: "a", Point: spatial.Point{Lat: -34.9, Lng: -56.2}},
		{ID: 2, Label: "b", Point: spatial.Point{Lat: 60.2, Lng: 24.9}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, markers))

	restored, err := ReadGeoJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, markers, restored)
}

func TestMarkerIsComparable(t *testing.T) {
	a := Marker{ID: 1, Label: "a", Point: spatial.Point{Lat: 1, Lng: 2}}
	b := Marker{ID: 1, Label: "a", Point: spatial.Point{Lat: 1, Lng: 2}}

	assert.True(t, a == b)
	assert.Equal(t, a.Point, a.Position())
}
