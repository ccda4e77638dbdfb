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

	"github.com/maphost/clusterview/layer"
	"github.com/maphost/clusterview/store"
	"github.com/maphost/clusterview/utils"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored marker layer as GeoJSON",
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

		markers, err := repo.ListMarkers()
		if err != nil {
			return fmt.Errorf("listing markers: %w", err)
		}

		out := os.Stdout

		if exportOutput != "-" {
			out, err = os.Create(exportOutput) // #nosec G304 - filepath is provided by admin
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer out.Close()
		}

		if err := layer.WriteGeoJSON(out, markers); err != nil {
			return fmt.Errorf("writing layer: %w", err)
		}

		log.Printf("Exported %s markers", utils.FormatInt(int64(len(markers))))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.PersistentFlags().StringVar(
		&exportOutput,
		"output",
		"-",
		"Output file, or - for standard output",
	)
}
