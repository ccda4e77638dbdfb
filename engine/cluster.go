// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"strconv"

	"github.com/maphost/clusterview/spatial"
)

const (
	// MaxExpansionZoom caps expansion lookups so that very tight aggregates
	// never zoom the map past a useful level.
	MaxExpansionZoom = 20

	// ExpansionZoomNone is returned when the aggregate id is no longer known
	// to the index, which happens when the marker set was reloaded after the
	// cluster was produced.
	ExpansionZoomNone = -1
)

// Cluster is one display unit of a calculation: either a single marker (leaf)
// or an aggregate of two or more markers grouped by proximity. Clusters are
// valid only for the index generation that produced them; callers must discard
// them whenever the marker set changes.
type Cluster struct {
	// Pos is the representative position: the marker's own position for a
	// leaf, the weighted centroid for an aggregate.
	Pos spatial.Point

	// Markers holds the member markers in index order.
	Markers []Marker

	id  int64
	idx Index
}

// Count returns the number of member markers.
func (c Cluster) Count() int {
	return len(c.Markers)
}

// IsAggregate reports whether the cluster groups two or more markers.
func (c Cluster) IsAggregate() bool {
	return c.id != 0
}

// ID returns the aggregate id issued by the index, or zero for a leaf. Ids are
// only stable within one index generation.
func (c Cluster) ID() int64 {
	return c.id
}

// Summary is a cheap, order-sensitive fingerprint of position and count. It
// only gates re-render decisions, so collisions are acceptable.
func (c Cluster) Summary() string {
	return strconv.FormatFloat(c.Pos.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Pos.Lng, 'f', -1, 64) + "," +
		strconv.Itoa(len(c.Markers))
}

// ExpansionZoom returns the lowest zoom level at which the aggregate splits
// into its children, capped at MaxExpansionZoom. For leaf clusters, or when
// the owning index no longer recognizes the aggregate id, it returns
// ExpansionZoomNone.
func (c Cluster) ExpansionZoom() int {
	if c.id == 0 || c.idx == nil {
		return ExpansionZoomNone
	}

	zoom, ok := c.idx.ExpansionZoom(c.id)
	if !ok {
		return ExpansionZoomNone
	}

	if zoom > MaxExpansionZoom {
		zoom = MaxExpansionZoom
	}

	return zoom
}
