// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists marker layers in DuckDB so they can be imported once
// and served to many map sessions.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/uber/h3-go/v4"

	"github.com/maphost/clusterview/layer"
	"github.com/maphost/clusterview/spatial"
	"github.com/maphost/clusterview/utils"
)

// MarkerRepository handles persistence of marker layers.
type MarkerRepository interface {
	// CreateSchema creates the markers table
	CreateSchema() error

	// BulkInsertMarkers replaces the stored layer with the given markers
	BulkInsertMarkers(markers []layer.Marker) error

	// AppendMarkers adds markers to the stored layer without clearing it
	AppendMarkers(markers []layer.Marker) error

	// ListMarkers returns the full stored layer ordered by id
	ListMarkers() ([]layer.Marker, error)

	// CountMarkers returns the total number of stored markers
	CountMarkers() (int, error)

	// SearchMarkers returns markers whose label matches q, accent and case insensitive
	SearchMarkers(q string, limit int) ([]layer.Marker, error)

	// ListMarkersInCell returns the markers inside an H3 cell of resolution 1..8
	ListMarkersInCell(cell h3.Cell) ([]layer.Marker, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlMarkerRepository struct {
	db *sql.DB
}

// NewMarkerRepository creates a new marker repository.
func NewMarkerRepository(db *sql.DB) (MarkerRepository, error) {
	// DuckDB needs to load the spatial extension
	_, err := db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return nil, err
	}

	return &sqlMarkerRepository{db: db}, nil
}

// DB returns the underlying database connection for advanced queries.
func (r *sqlMarkerRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlMarkerRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS markers (
			id BIGINT PRIMARY KEY,
			label VARCHAR NOT NULL,
			label_folded VARCHAR NOT NULL,
			point POINT_2D NOT NULL,
			h3_res1 UBIGINT,
			h3_res2 UBIGINT,
			h3_res3 UBIGINT,
			h3_res4 UBIGINT,
			h3_res5 UBIGINT,
			h3_res6 UBIGINT,
			h3_res7 UBIGINT,
			h3_res8 UBIGINT
		);
	`)

	return err
}

// computeH3 returns the marker's H3 cells for resolutions 1 through 8.
func computeH3(p spatial.Point) ([8]uint64, error) {
	var cells [8]uint64

	latLng := h3.NewLatLng(p.Lat, p.Lng)
	for res := 1; res <= 8; res++ {
		cell, err := h3.LatLngToCell(latLng, res)
		if err != nil {
			return cells, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
		}

		cells[res-1] = uint64(cell)
	}

	return cells, nil
}

func (r *sqlMarkerRepository) BulkInsertMarkers(markers []layer.Marker) error {
	return r.insertMarkers(markers, true)
}

func (r *sqlMarkerRepository) AppendMarkers(markers []layer.Marker) error {
	return r.insertMarkers(markers, false)
}

func (r *sqlMarkerRepository) insertMarkers(markers []layer.Marker, clear bool) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("failed to rollback marker insert: %v", err)
		}
	}()

	if clear {
		if _, err := tx.Exec("DELETE FROM markers"); err != nil {
			return fmt.Errorf("clearing markers: %w", err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO markers (
			id, label, label_folded,
			point,
			h3_res1, h3_res2, h3_res3, h3_res4, h3_res5, h3_res6, h3_res7, h3_res8
		) VALUES (?, ?, ?, ST_Point(?, ?), ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range markers {
		cells, err := computeH3(m.Point)
		if err != nil {
			return fmt.Errorf("marker %d: %w", m.ID, err)
		}

		_, err = stmt.Exec(
			m.ID,
			m.Label,
			utils.LowerASCIIFolding(m.Label),
			m.Point.Lng,
			m.Point.Lat,
			cells[0], cells[1], cells[2], cells[3],
			cells[4], cells[5], cells[6], cells[7],
		)
		if err != nil {
			return fmt.Errorf("inserting marker %d: %w", m.ID, err)
		}
	}

	return tx.Commit()
}

func (r *sqlMarkerRepository) scanMarkers(rows *sql.Rows) ([]layer.Marker, error) {
	defer rows.Close()

	var markers []layer.Marker

	for rows.Next() {
		var m layer.Marker
		if err := rows.Scan(&m.ID, &m.Label, &m.Point); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}

		markers = append(markers, m)
	}

	return markers, rows.Err()
}

func (r *sqlMarkerRepository) ListMarkers() ([]layer.Marker, error) {
	rows, err := r.db.Query("SELECT id, label, point FROM markers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}

	return r.scanMarkers(rows)
}

func (r *sqlMarkerRepository) CountMarkers() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM markers").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting markers: %w", err)
	}

	return n, nil
}

func (r *sqlMarkerRepository) SearchMarkers(q string, limit int) ([]layer.Marker, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, label, point
		FROM markers
		WHERE label_folded LIKE '%' || ? || '%'
		ORDER BY id
		LIMIT ?
	`, utils.LowerASCIIFolding(q), limit)
	if err != nil {
		return nil, fmt.Errorf("searching markers: %w", err)
	}

	return r.scanMarkers(rows)
}

func (r *sqlMarkerRepository) ListMarkersInCell(cell h3.Cell) ([]layer.Marker, error) {
	res := cell.Resolution()
	if res < 1 || res > 8 {
		return nil, fmt.Errorf("unsupported h3 resolution %d", res)
	}

	query := fmt.Sprintf("SELECT id, label, point FROM markers WHERE h3_res%d = ? ORDER BY id", res)

	rows, err := r.db.Query(query, uint64(cell))
	if err != nil {
		return nil, fmt.Errorf("querying markers by cell: %w", err)
	}

	return r.scanMarkers(rows)
}
