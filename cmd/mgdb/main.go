// Command mgdb reads Esri mobile geodatabase (.geodatabase) files without
// requiring Esri's proprietary libraries.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mgdb",
		Short: "Read Esri mobile geodatabase (.geodatabase) files",
	}
	root.AddCommand(newInfoCmd(), newTablesCmd(), newDumpCmd())
	return root
}
