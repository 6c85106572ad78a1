package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/archive"
)

func newExportCmd() *cobra.Command {
	var includeImages bool

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the catalog to a JSON or Parquet file",
		Long: `Writes the catalog to the given file. The format follows the
extension: .json or .parquet. Embedded image payloads are dropped unless
--images is passed, keeping exports small.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, kv, err := openLocalManager(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			cat := mgr.ExportSnapshot(includeImages)
			if err := archive.Write(args[0], cat); err != nil {
				return err
			}
			fmt.Printf("Exported %d record(s) to %s\n", len(cat.Items), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeImages, "images", false, "Keep embedded image payloads in the export")

	return cmd
}
