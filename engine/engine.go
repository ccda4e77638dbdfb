// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine groups map markers into display clusters and tells the host
// widget whether the displayed set actually changed. It is a caching layer: a
// calculation reloads the clustering index only when the marker set changed,
// re-queries it only when the viewport changed, and downgrades the change flag
// when the recomputed clusters are indistinguishable from the previous ones.
package engine

import (
	"math"

	"github.com/maphost/clusterview/spatial"
	"github.com/maphost/clusterview/supercluster"
)

// Marker is a host-owned map marker. The engine only reads positions and
// never mutates markers. Marker values must be comparable: the engine detects
// marker-set changes by order-sensitive element-wise comparison.
type Marker interface {
	Position() spatial.Point
}

// MapView is the capability surface of the host map widget. Both values are
// read fresh on every calculation.
type MapView interface {
	Zoom() float64
	Bounds() spatial.BBox
}

// Index is the point-clustering backend. The engine owns its index
// exclusively: the loaded point set always mirrors the most recently observed
// marker list, in the same order.
type Index interface {
	Load(points []spatial.Point)
	Search(bounds spatial.BBox, zoom int) []supercluster.Hit
	Leaves(id int64, limit int) []int
	ExpansionZoom(id int64) (int, bool)
}

var _ Index = (*supercluster.Index)(nil)

// Config holds the clustering parameters. Zero values take the supercluster
// defaults; MaxZoom additionally bounds the viewport short-circuit.
type Config struct {
	MinZoom  int
	MaxZoom  int
	Radius   int
	Extent   int
	NodeSize int
}

func (c Config) withDefaults() Config {
	if c.MaxZoom <= 0 {
		c.MaxZoom = 16
	}

	if c.MaxZoom > 21 {
		c.MaxZoom = 21
	}

	return c
}

type viewport struct {
	zoom   int
	bounds spatial.BBox
}

// Engine computes the cluster set for the current markers and viewport,
// caching inputs and outputs between calls. A single Engine instance serves a
// single map widget; it is not safe for concurrent use, and the host must not
// call back into the engine before Calculate returns.
type Engine struct {
	cfg      Config
	idx      Index
	markers  []Marker
	view     viewport
	hasView  bool
	clusters []Cluster
}

// New creates an engine backed by its own supercluster index.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()

	return &Engine{
		cfg: cfg,
		idx: supercluster.New(supercluster.Options{
			MinZoom:  cfg.MinZoom,
			MaxZoom:  cfg.MaxZoom,
			Radius:   cfg.Radius,
			Extent:   cfg.Extent,
			NodeSize: cfg.NodeSize,
		}),
	}
}

// NewWithIndex creates an engine over a caller-supplied index. The index must
// be configured consistently with cfg.MaxZoom.
func NewWithIndex(idx Index, cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults(), idx: idx}
}

// Calculate returns the clusters for the given markers and the current state
// of the map view, plus a flag telling the caller whether the returned set
// differs from the previous calculation and therefore needs a re-render.
//
// The index is reloaded only when the marker list changed, and re-queried only
// when the marker list or the viewport changed. When both the previous and the
// current zoom exceed MaxZoom, viewport drift is ignored entirely: clustering
// is a no-op past max zoom, so panning cannot change the result.
func (e *Engine) Calculate(markers []Marker, view MapView) ([]Cluster, bool) {
	changed := false

	if !markersEqual(e.markers, markers) {
		changed = true
		e.markers = append([]Marker(nil), markers...)

		points := make([]spatial.Point, len(markers))
		for i, m := range markers {
			points[i] = m.Position()
		}

		e.idx.Load(points)
	}

	zoom := int(math.Round(view.Zoom()))
	bounds := view.Bounds()

	if !changed {
		if e.hasView && e.view.zoom > e.cfg.MaxZoom && zoom > e.cfg.MaxZoom {
			// Every marker already renders individually; nothing to do.
		} else if !e.hasView || e.view.zoom != zoom || e.view.bounds != bounds {
			changed = true
		}
	}

	// Always store the latest snapshot so the next call compares against it.
	e.view = viewport{zoom: zoom, bounds: bounds}
	e.hasView = true

	if changed {
		hits := e.idx.Search(bounds, zoom)

		next := make([]Cluster, len(hits))
		for i, h := range hits {
			next[i] = e.toCluster(h)
		}

		// The recomputed set can come out observably identical even though
		// some input shifted; report no change then so the host skips the
		// re-render.
		if summariesEqual(next, e.clusters) {
			changed = false
		}

		e.clusters = next
	}

	return e.clusters, changed
}

// toCluster maps one index hit to a display cluster. Aggregates recover all of
// their member markers through a leaf lookup; single points reuse the original
// marker at the marker's own position rather than the index's projected one.
func (e *Engine) toCluster(h supercluster.Hit) Cluster {
	if h.IsCluster() {
		offsets := e.idx.Leaves(h.ClusterID, 0)

		members := make([]Marker, 0, len(offsets))

		for _, o := range offsets {
			if o >= 0 && o < len(e.markers) {
				members = append(members, e.markers[o])
			}
		}

		return Cluster{Pos: h.Pos, Markers: members, id: h.ClusterID, idx: e.idx}
	}

	m := e.markers[h.Origin]

	return Cluster{Pos: m.Position(), Markers: []Marker{m}, idx: e.idx}
}

func markersEqual(a, b []Marker) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func summariesEqual(a, b []Cluster) bool {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].Summary() != b[i].Summary() {
			return false
		}
	}

	return true
}
