// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

// Package layer holds the marker layer fed to the clustering engine and its
// GeoJSON exchange format.
package layer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/maphost/clusterview/spatial"
)

// Marker is one point of a map layer. It is a comparable value type so the
// engine can detect marker-set changes by plain equality.
type Marker struct {
	ID    int64         `json:"id"`
	Label string        `json:"label"`
	Point spatial.Point `json:"point"`
}

// Position implements the engine's marker contract.
func (m Marker) Position() spatial.Point {
	return m.Point
}

// LoadGeoJSON loads a marker layer from a GeoJSON file of Point features.
func LoadGeoJSON(filepath string) ([]Marker, error) {
	f, err := os.Open(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("opening layer file: %w", err)
	}
	defer f.Close()

	return ReadGeoJSON(f)
}

// ReadGeoJSON parses a marker layer from GeoJSON. Features without Point
// geometry are rejected.
func ReadGeoJSON(r io.Reader) ([]Marker, error) {
	var geoJSON struct {
		Features []struct {
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				ID    int64  `json:"id"`
				Label string `json:"label"`
			} `json:"properties"`
		} `json:"features"`
	}

	if err := json.NewDecoder(r).Decode(&geoJSON); err != nil {
		return nil, fmt.Errorf("parsing layer JSON: %w", err)
	}

	markers := make([]Marker, 0, len(geoJSON.Features))

	for i, feature := range geoJSON.Features {
		if feature.Geometry.Type != "Point" || len(feature.Geometry.Coordinates) < 2 {
			return nil, fmt.Errorf("feature %d: expected a Point geometry", i)
		}

		id := feature.Properties.ID
		if id == 0 {
			id = int64(i + 1)
		}

		markers = append(markers, Marker{
			ID:    id,
			Label: feature.Properties.Label,
			Point: spatial.Point{
				Lng: feature.Geometry.Coordinates[0],
				Lat: feature.Geometry.Coordinates[1],
			},
		})
	}

	return markers, nil
}

type geoJSONFeature struct {
	Type       string         `json:"type"`
	Geometry   geoJSONPoint   `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// WriteGeoJSON writes a marker layer as a GeoJSON FeatureCollection.
func WriteGeoJSON(w io.Writer, markers []Marker) error {
	features := make([]geoJSONFeature, len(markers))
	for i, m := range markers {
		features[i] = geoJSONFeature{
			Type: "Feature",
			Geometry: geoJSONPoint{
				Type:        "Point",
				Coordinates: []float64{m.Point.Lng, m.Point.Lat},
			},
			Properties: map[string]any{
				"id":    m.ID,
				"label": m.Label,
			},
		}
	}

	enc := json.NewEncoder(w)

	return enc.Encode(map[string]any{
		"type":     "FeatureCollection",
		"features": features,
	})
}
