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
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/maphost/clusterview/layer"
	"github.com/maphost/clusterview/store"
	"github.com/maphost/clusterview/utils"
)

var importBatchSize int

var importCmd = &cobra.Command{
	Use:   "import <layer.geojson>",
	Short: "Import a GeoJSON marker layer into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		markers, err := layer.LoadGeoJSON(args[0])
		if err != nil {
			return err
		}

		db, err := sql.Open("duckdb", filepath.Join(dbPath, "clusterview.duckdb"))
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repo, err := store.NewMarkerRepository(db)
		if err != nil {
			return fmt.Errorf("initializing repository: %w", err)
		}

		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(markers),
				progressbar.OptionSetDescription("Importing "+filepath.Base(args[0])),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		if len(markers) == 0 {
			return repo.BulkInsertMarkers(nil)
		}

		for start := 0; start < len(markers); start += importBatchSize {
			end := start + importBatchSize
			if end > len(markers) {
				end = len(markers)
			}

			// The first batch clears the previous layer; the rest append.
			if start == 0 {
				err = repo.BulkInsertMarkers(markers[:end])
			} else {
				err = repo.AppendMarkers(markers[start:end])
			}

			if err != nil {
				return err
			}

			if bar != nil {
				_ = bar.Add(end - start)
			}
		}

		log.Printf("Imported %s markers from %s", utils.FormatInt(int64(len(markers))), args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.PersistentFlags().IntVar(
		&importBatchSize,
		"batch-size",
		10000,
		"Number of markers to insert per transaction",
	)
}
