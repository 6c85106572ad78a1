package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/imagesync"
)

func newSyncImagesCmd() *cobra.Command {
	var (
		fromDir string
		date    string
		event   string
		vendor  string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "sync-images",
		Short: "Copy images into the public directory and merge catalog entries",
		Long: `Copies jpg, jpeg, png and webp files from a folder into
public/images and adds a catalog entry for every image that does not have
one yet, keyed by the image URL. Existing entries are left untouched, so
re-running after hand edits is safe.`,
		Example: `  # One-off sync with defaults for the new entries
  cardfolio sync-images --from ~/Pictures/cards --date 2025-10-07

  # Keep syncing as files land in the folder
  cardfolio sync-images --from ~/Pictures/cards --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := imagesync.New(cfg.PublicDir)
			defaults := imagesync.Defaults{PurchaseDate: date, Event: event, Vendor: vendor}

			if watch {
				err := s.Watch(cmd.Context(), fromDir, defaults)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}

			sum, err := s.Sync(fromDir, defaults)
			if err != nil {
				return err
			}
			fmt.Printf("Done: copied %d, added %d, existing %d\n", sum.Copied, sum.Added, sum.Updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDir, "from", "", "Folder to copy images from (required)")
	cmd.Flags().StringVar(&date, "date", "", "Default purchase date for new entries (YYYY-MM-DD)")
	cmd.Flags().StringVar(&event, "event", "", "Default event for new entries")
	cmd.Flags().StringVar(&vendor, "vendor", "", "Default vendor for new entries")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep watching the folder and re-sync on changes")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
