package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/archive"
)

func newImportCmd() *cobra.Command {
	var samples bool

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the catalog from a JSON or Parquet file",
		Long: `Replaces the entire local catalog with the records from the given
file (.json or .parquet). With --samples the starter data set is loaded
instead. The previous catalog is discarded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !samples && len(args) == 0 {
				return fmt.Errorf("either a file argument or --samples is required")
			}

			mgr, kv, err := openLocalManager(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			if samples {
				mgr.LoadSamples()
				fmt.Printf("Loaded %d sample record(s)\n", len(mgr.Records()))
				return nil
			}

			cat, err := archive.Read(args[0])
			if err != nil {
				return err
			}
			mgr.BulkImport(cat.Items)
			fmt.Printf("Imported %d record(s) from %s\n", len(cat.Items), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&samples, "samples", false, "Load the starter data set instead of a file")

	return cmd
}
