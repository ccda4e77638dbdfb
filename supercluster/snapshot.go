// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package supercluster

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/maphost/clusterview/spatial"
)

// Snapshot layout: magic, format version, options, point count, then lat/lng
// pairs. The trees are cheap to rebuild relative to shipping them around, so
// only the inputs are persisted.
const (
	snapshotMagic   uint32 = 0x43564958 // "CVIX"
	snapshotVersion uint32 = 1
)

// WriteSnapshot persists the index configuration and point set as a
// zstd-compressed stream.
func (x *Index) WriteSnapshot(w io.Writer) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}

	header := []uint32{snapshotMagic, snapshotVersion}
	for _, v := range header {
		if err := binary.Write(enc, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing snapshot header: %w", err)
		}
	}

	opts := []int32{
		int32(x.opts.MinZoom),
		int32(x.opts.MaxZoom),
		int32(x.opts.Radius),
		int32(x.opts.Extent),
		int32(x.opts.NodeSize),
	}
	for _, v := range opts {
		if err := binary.Write(enc, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing snapshot options: %w", err)
		}
	}

	if err := binary.Write(enc, binary.LittleEndian, uint32(len(x.points))); err != nil {
		return fmt.Errorf("writing snapshot point count: %w", err)
	}

	for _, p := range x.points {
		if err := binary.Write(enc, binary.LittleEndian, p.Lat); err != nil {
			return fmt.Errorf("writing snapshot point: %w", err)
		}

		if err := binary.Write(enc, binary.LittleEndian, p.Lng); err != nil {
			return fmt.Errorf("writing snapshot point: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}

	return nil
}

// ReadSnapshot restores an index written by WriteSnapshot, rebuilding the
// cluster hierarchy from the persisted point set.
func ReadSnapshot(r io.Reader) (*Index, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer dec.Close()

	var magic, version uint32
	if err := binary.Read(dec, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	if magic != snapshotMagic {
		return nil, fmt.Errorf("not an index snapshot (magic %#x)", magic)
	}

	if err := binary.Read(dec, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading snapshot version: %w", err)
	}

	if version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", version)
	}

	var minZoom, maxZoom, radius, extent, nodeSize int32

	for _, dst := range []*int32{&minZoom, &maxZoom, &radius, &extent, &nodeSize} {
		if err := binary.Read(dec, binary.LittleEndian, dst); err != nil {
			return nil, fmt.Errorf("reading snapshot options: %w", err)
		}
	}

	var count uint32
	if err := binary.Read(dec, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading snapshot point count: %w", err)
	}

	points := make([]spatial.Point, count)
	for i := range points {
		if err := binary.Read(dec, binary.LittleEndian, &points[i].Lat); err != nil {
			return nil, fmt.Errorf("reading snapshot point %d: %w", i, err)
		}

		if err := binary.Read(dec, binary.LittleEndian, &points[i].Lng); err != nil {
			return nil, fmt.Errorf("reading snapshot point %d: %w", i, err)
		}
	}

	idx := New(Options{
		MinZoom:  int(minZoom),
		MaxZoom:  int(maxZoom),
		Radius:   int(radius),
		Extent:   int(extent),
		NodeSize: int(nodeSize),
	})
	idx.Load(points)

	return idx, nil
}
