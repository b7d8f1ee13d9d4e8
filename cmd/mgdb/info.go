package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundatron/MobileGeodatabaseLib/geodatabase"
)

func newInfoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info <geodatabase>",
		Short: "Display tables, geometry types, and row counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := geodatabase.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			tables := db.Tables()
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(tables)
			}
			for _, t := range tables {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", t.Name, t.RowCount)
				if t.HasGeometry() {
					fmt.Fprintf(cmd.OutOrStdout(), "  geometry: %s.%s", t.GeometryType, t.GeometryColumn)
					if t.HasSRID {
						fmt.Fprintf(cmd.OutOrStdout(), " (SRID %d)", t.SRID)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
