// Copyright 2026 The Clusterview Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/maphost/clusterview/spatial"
	"github.com/maphost/clusterview/store"
	"github.com/maphost/clusterview/supercluster"
	"github.com/maphost/clusterview/utils"
)

var (
	snapshotMaxZoom int
	snapshotRadius  int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage prebuilt cluster index snapshots",
}

var snapshotBuildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Build a cluster index from the stored layer and write it to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, err := sql.Open("duckdb", filepath.Join(dbPath, "clusterview.duckdb"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo, err := store.NewMarkerRepository(db)
		if err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		markers, err := repo.ListMarkers()
		if err != nil {
			return fmt.Errorf("listing markers: %w", err)
		}

		points := make([]spatial.Point, len(markers))
		for i, m := range markers {
			points[i] = m.Point
		}

		idx := supercluster.New(supercluster.Options{
			MaxZoom: snapshotMaxZoom,
			Radius:  snapshotRadius,
		})
		idx.Load(points)

		f, err := os.Create(args[0]) // #nosec G304 - filepath is provided by admin
		if err != nil {
			return fmt.Errorf("creating snapshot file: %w", err)
		}
		defer f.Close()

		if err := idx.WriteSnapshot(f); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}

		log.Printf("Snapshot of %s markers written to %s", utils.FormatInt(int64(len(markers))), args[0])

		return nil
	},
}

var snapshotInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the contents of a cluster index snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		f, err := os.Open(args[0]) // #nosec G304 - filepath is provided by admin
		if err != nil {
			return fmt.Errorf("opening snapshot file: %w", err)
		}
		defer f.Close()

		idx, err := supercluster.ReadSnapshot(f)
		if err != nil {
			return fmt.Errorf("reading snapshot: %w", err)
		}

		opts := idx.Options()
		fmt.Printf("points:    %s\n", utils.FormatInt(int64(idx.Len())))
		fmt.Printf("min zoom:  %d\n", opts.MinZoom)
		fmt.Printf("max zoom:  %d\n", opts.MaxZoom)
		fmt.Printf("radius:    %d\n", opts.Radius)
		fmt.Printf("extent:    %d\n", opts.Extent)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotBuildCmd)
	snapshotCmd.AddCommand(snapshotInfoCmd)
	snapshotBuildCmd.PersistentFlags().IntVar(
		&snapshotMaxZoom,
		"max-zoom",
		16,
		"Zoom level past which markers are never clustered",
	)
	snapshotBuildCmd.PersistentFlags().IntVar(
		&snapshotRadius,
		"radius",
		40,
		"Cluster radius in pixels",
	)
}
