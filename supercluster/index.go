// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

// Package supercluster implements hierarchical greedy point clustering over a
// set of KD-tree indexes, one per zoom level. The approach follows MapBox's
// supercluster: points are projected into web-mercator space once, then merged
// bottom-up from the maximum zoom level to the minimum, so that querying any
// zoom is a single range search.
package supercluster

import (
	"github.com/MadAppGang/kdbush"
	"github.com/maphost/clusterview/spatial"
)

// Zoom value that no real zoom level ever reaches; marks entries that have not
// been merged at any level yet.
const infinityZoom = 100

// Options configure an Index. Zero values are replaced with defaults by New.
type Options struct {
	MinZoom  int // lowest zoom level to build clusters for (default 0)
	MaxZoom  int // highest zoom level to build clusters for (default 16, max 21)
	Radius   int // cluster radius in pixels (default 40)
	Extent   int // tile extent in pixels (default 512)
	NodeSize int // KD-tree node size; larger is faster to build, slower to query (default 64)
}

func (o Options) withDefaults() Options {
	if o.MaxZoom <= 0 {
		o.MaxZoom = 16
	}

	if o.MaxZoom > 21 {
		o.MaxZoom = 21
	}

	if o.MinZoom < 0 {
		o.MinZoom = 0
	}

	if o.MinZoom > o.MaxZoom {
		o.MinZoom = o.MaxZoom
	}

	if o.Radius <= 0 {
		o.Radius = 40
	}

	if o.Extent <= 0 {
		o.Extent = 512
	}

	if o.NodeSize <= 0 {
		o.NodeSize = 64
	}

	return o
}

// Hit is a single row of a Search result: either an aggregated cluster or one
// of the original points.
type Hit struct {
	Pos       spatial.Point
	Count     int
	ClusterID int64 // 0 when the hit is a single original point
	Origin    int   // offset of the original point in the loaded set; -1 for clusters
}

// IsCluster reports whether the hit aggregates two or more points.
func (h Hit) IsCluster() bool {
	return h.ClusterID != 0
}

// entry is a node of the cluster hierarchy in projected coordinates.
type entry struct {
	x, y     float64
	zoom     int // zoom level at which this entry was last visited during merging
	id       int64
	count    int
	origin   int      // original point offset, -1 for clusters
	children []*entry // nil for original points
	created  int      // zoom level at which the cluster was formed
}

// Coordinates implements kdbush.Point.
func (e *entry) Coordinates() (float64, float64) {
	return e.x, e.y
}

// Index clusters a loaded point set at every zoom level between MinZoom and
// MaxZoom. It is not safe for concurrent use.
type Index struct {
	opts   Options
	points []spatial.Point
	trees  []*kdbush.KDBush // indexed by zoom level, MinZoom..MaxZoom+1
	byID   map[int64]*entry
	nextID int64
}

// New creates an empty index. Call Load before querying.
func New(opts Options) *Index {
	return &Index{
		opts: opts.withDefaults(),
		byID: make(map[int64]*entry),
	}
}

// Options returns the effective configuration, defaults applied.
func (x *Index) Options() Options {
	return x.opts
}

// Len returns the number of loaded points.
func (x *Index) Len() int {
	return len(x.points)
}

// Points returns the loaded point set in load order.
func (x *Index) Points() []spatial.Point {
	return x.points
}

// Load replaces the entire point set and rebuilds every zoom level. Cluster
// ids handed out by previous Search calls are invalidated.
func (x *Index) Load(points []spatial.Point) {
	x.points = append([]spatial.Point(nil), points...)
	x.byID = make(map[int64]*entry)
	x.trees = make([]*kdbush.KDBush, x.opts.MaxZoom+2)

	// Cluster ids start at the next power of ten above the point count, so a
	// hit id is unambiguous: below the seed it is a point offset, at or above
	// it is a cluster.
	x.nextID = 10
	for x.nextID <= int64(len(points)) {
		x.nextID *= 10
	}

	entries := make([]*entry, len(points))
	for i, p := range points {
		px, py := spatial.Project(p)
		entries[i] = &entry{
			x:      px,
			y:      py,
			zoom:   infinityZoom,
			id:     int64(i),
			count:  1,
			origin: i,
		}
	}

	for z := x.opts.MaxZoom; z >= x.opts.MinZoom; z-- {
		x.trees[z+1] = kdbush.NewBush(toKDPoints(entries), x.opts.NodeSize)
		entries = x.merge(entries, z)
	}

	x.trees[x.opts.MinZoom] = kdbush.NewBush(toKDPoints(entries), x.opts.NodeSize)
}

// merge produces the entry set for the given zoom level by grouping entries of
// the level above that fall within the clustering radius of each other.
func (x *Index) merge(entries []*entry, zoom int) []*entry {
	var result []*entry

	r := float64(x.opts.Radius) / float64(x.opts.Extent*(1<<uint(zoom)))
	tree := x.trees[zoom+1]

	for _, p := range entries {
		// Skip entries already swallowed by a neighbour at this level.
		if p.zoom <= zoom {
			continue
		}

		p.zoom = zoom

		neighbours := tree.Within(&kdbush.SimplePoint{X: p.x, Y: p.y}, r)

		count := p.count
		wx := p.x * float64(p.count)
		wy := p.y * float64(p.count)

		var merged []*entry

		for _, j := range neighbours {
			b := entries[j]
			if zoom < b.zoom {
				wx += b.x * float64(b.count)
				wy += b.y * float64(b.count)
				count += b.count
				b.zoom = zoom

				merged = append(merged, b)
			}
		}

		if len(merged) == 0 {
			result = append(result, p)

			continue
		}

		merged = append(merged, p)

		c := &entry{
			x:        wx / float64(count),
			y:        wy / float64(count),
			zoom:     infinityZoom,
			id:       x.nextID,
			count:    count,
			origin:   -1,
			children: merged,
			created:  zoom,
		}
		x.nextID++
		x.byID[c.id] = c

		result = append(result, c)
	}

	return result
}

// Search returns the clusters and single points inside the bounding box at the
// given zoom level. Zoom is clamped to [MinZoom, MaxZoom+1]; above MaxZoom
// every original point is returned individually. Returns nil before Load.
func (x *Index) Search(bounds spatial.BBox, zoom int) []Hit {
	if len(x.trees) == 0 {
		return nil
	}

	tree := x.trees[x.clampZoom(zoom)]

	minX, minY := spatial.Project(spatial.Point{Lat: bounds.North, Lng: bounds.West})
	maxX, maxY := spatial.Project(spatial.Point{Lat: bounds.South, Lng: bounds.East})

	ids := tree.Range(minX, minY, maxX, maxY)

	hits := make([]Hit, 0, len(ids))

	for _, i := range ids {
		e, ok := tree.Points[i].(*entry)
		if !ok {
			continue
		}

		h := Hit{
			Pos:    spatial.Unproject(e.x, e.y),
			Count:  e.count,
			Origin: e.origin,
		}
		if e.origin < 0 {
			h.ClusterID = e.id
		}

		hits = append(hits, h)
	}

	return hits
}

func (x *Index) clampZoom(zoom int) int {
	if zoom > x.opts.MaxZoom+1 {
		zoom = x.opts.MaxZoom + 1
	}

	if zoom < x.opts.MinZoom {
		zoom = x.opts.MinZoom
	}

	return zoom
}

func toKDPoints(entries []*entry) []kdbush.Point {
	result := make([]kdbush.Point, len(entries))
	for i, e := range entries {
		result[i] = e
	}

	return result
}
