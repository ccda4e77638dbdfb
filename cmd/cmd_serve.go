// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/maphost/clusterview/engine"
	"github.com/maphost/clusterview/server"
	"github.com/maphost/clusterview/store"
	"github.com/maphost/clusterview/utils"
)

var (
	serveAddr    string
	serveMaxZoom int
	serveRadius  int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clustered marker layer over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, err := sql.Open("duckdb", filepath.Join(dbPath, "clusterview.duckdb"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo, err := store.NewMarkerRepository(db)
		if err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		n, err := repo.CountMarkers()
		if err != nil {
			return fmt.Errorf("counting markers: %w", err)
		}

		log.Printf("Serving %s markers on %s", utils.FormatInt(int64(n)), serveAddr)

		s := server.NewServer(repo, engine.Config{
			MaxZoom: serveMaxZoom,
			Radius:  serveRadius,
		})

		return s.Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.PersistentFlags().StringVar(
		&serveAddr,
		"addr",
		"localhost:8080",
		"Address to listen on",
	)
	serveCmd.PersistentFlags().IntVar(
		&serveMaxZoom,
		"max-zoom",
		16,
		"Zoom level past which markers are never clustered",
	)
	serveCmd.PersistentFlags().IntVar(
		&serveRadius,
		"radius",
		40,
		"Cluster radius in pixels",
	)
}
