package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foundatron/MobileGeodatabaseLib/geodatabase"
)

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <geodatabase>",
		Short: "List table names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := geodatabase.Open(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			for _, t := range db.Tables() {
				fmt.Fprintln(cmd.OutOrStdout(), t.Name)
			}
			return nil
		},
	}
}
