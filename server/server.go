// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the stored marker layer and its clustered view over
// HTTP.
package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maphost/clusterview/engine"
	"github.com/maphost/clusterview/layer"
	"github.com/maphost/clusterview/spatial"
	"github.com/maphost/clusterview/store"
)

type Server struct {
	repo   store.MarkerRepository
	engine *engine.Engine

	// markers caches the stored layer as engine markers; the layer only
	// changes through an import, which restarts the server.
	markers []engine.Marker
}

func NewServer(repo store.MarkerRepository, cfg engine.Config) *Server {
	return &Server{
		repo:   repo,
		engine: engine.New(cfg),
	}
}

func (s *Server) Run(addr string) error {
	r := gin.Default()

	s.RegisterRoutes(r)

	return r.Run(addr)
}

// RegisterRoutes attaches the API handlers to the given router.
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/clusters", s.getClusters)
	r.GET("/api/markers/count", s.getMarkerCount)
	r.GET("/api/markers/search", s.searchMarkers)
}

// requestView adapts one query-string viewport to the engine's map contract.
type requestView struct {
	zoom   float64
	bounds spatial.BBox
}

func (v requestView) Zoom() float64 {
	return v.zoom
}

func (v requestView) Bounds() spatial.BBox {
	return v.bounds
}

func parseView(ctx *gin.Context) (requestView, error) {
	var view requestView

	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"west", &view.bounds.West},
		{"south", &view.bounds.South},
		{"east", &view.bounds.East},
		{"north", &view.bounds.North},
		{"zoom", &view.zoom},
	} {
		raw := ctx.Query(f.name)
		if raw == "" {
			return view, fmt.Errorf("%s query parameter is required", f.name)
		}

		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return view, fmt.Errorf("%s must be a number", f.name)
		}

		*f.dst = v
	}

	return view, nil
}

func (s *Server) loadMarkers() error {
	if s.markers != nil {
		return nil
	}

	stored, err := s.repo.ListMarkers()
	if err != nil {
		return err
	}

	markers := make([]engine.Marker, len(stored))
	for i, m := range stored {
		markers[i] = m
	}

	s.markers = markers

	return nil
}

func (s *Server) getClusters(ctx *gin.Context) {
	view, err := parseView(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err := s.loadMarkers(); err != nil {
		log.Printf("loading marker layer: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load marker layer"})

		return
	}

	clusters, changed := s.engine.Calculate(s.markers, view)

	features := make([]gin.H, len(clusters))
	for i, c := range clusters {
		features[i] = clusterFeature(c)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"type":     "FeatureCollection",
		"features": features,
		"changed":  changed,
	})
}

func clusterFeature(c engine.Cluster) gin.H {
	properties := gin.H{
		"cluster":     c.IsAggregate(),
		"point_count": c.Count(),
	}

	if c.IsAggregate() {
		properties["cluster_id"] = c.ID()
		properties["expansion_zoom"] = c.ExpansionZoom()
	} else if m, ok := c.Markers[0].(layer.Marker); ok {
		properties["id"] = m.ID
		properties["label"] = m.Label
	}

	return gin.H{
		"type": "Feature",
		"geometry": gin.H{
			"type":        "Point",
			"coordinates": []float64{c.Pos.Lng, c.Pos.Lat},
		},
		"properties": properties,
	}
}

func (s *Server) getMarkerCount(ctx *gin.Context) {
	n, err := s.repo.CountMarkers()
	if err != nil {
		log.Printf("counting markers: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count markers"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"count": n})
}

func (s *Server) searchMarkers(ctx *gin.Context) {
	q := ctx.Query("q")
	if q == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	markers, err := s.repo.SearchMarkers(q, limit)
	if err != nil {
		log.Printf("searching markers: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search markers"})

		return
	}

	if markers == nil {
		markers = []layer.Marker{}
	}

	ctx.JSON(http.StatusOK, markers)
}
