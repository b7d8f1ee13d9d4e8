package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundatron/MobileGeodatabaseLib/geodatabase"
	"github.com/foundatron/MobileGeodatabaseLib/geometry"
	"github.com/foundatron/MobileGeodatabaseLib/reproject"
)

func newDumpCmd() *cobra.Command {
	var format string
	var outPath string
	var doReproject bool
	var limit int64

	cmd := &cobra.Command{
		Use:   "dump <geodatabase> <table>",
		Short: "Dump a table's features as WKT, GeoJSON, ndjson, or GeoPackage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, table := args[0], args[1]

			db, err := geodatabase.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := geodatabase.RowOptions{Limit: limit}

			var reprojector geodatabase.Reprojector
			if doReproject {
				reprojector = reproject.ToWGS84
			}

			switch format {
			case "wkt":
				return dumpWKT(cmd, db, table, opts)
			case "geojson":
				return db.WriteGeoJSON(cmd.OutOrStdout(), table, opts, reprojector)
			case "ndjson":
				return db.WriteNDJSON(cmd.OutOrStdout(), table, opts, reprojector)
			case "gpkg":
				if outPath == "" {
					return fmt.Errorf("dump --format gpkg requires --out")
				}
				return db.WriteGeoPackage(outPath, table, opts, reprojector)
			default:
				return fmt.Errorf("unknown format %q: want wkt, geojson, ndjson, or gpkg", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "wkt", "output format: wkt, geojson, ndjson, gpkg")
	cmd.Flags().StringVar(&outPath, "out", "", "output file path (required for gpkg)")
	cmd.Flags().BoolVar(&doReproject, "reproject", false, "reproject geometries to WGS84 longitude/latitude")
	cmd.Flags().Int64Var(&limit, "limit", 0, "maximum number of features to dump (0 = unbounded)")
	return cmd
}

func dumpWKT(cmd *cobra.Command, db *geodatabase.DB, table string, opts geodatabase.RowOptions) error {
	for feature, err := range db.Rows(table, opts) {
		if err != nil {
			return err
		}
		if feature.Geometry == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t<no geometry>\n", feature.FID)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", feature.FID, geometry.WKT(*feature.Geometry))
	}
	return nil
}
