package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/share"
)

func newShareCmd() *cobra.Command {
	var (
		base  string
		title string
		note  string
	)

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Build a self-contained read-only share link",
		Long: `Encodes the whole catalog into a link. Whoever opens it sees the
catalog without any server involved and can tick off which cards they own;
their checkmarks stay on their device. Images are not included.`,
		Example: `  cardfolio share --base https://someone.github.io/cards/ --title "My Cards"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, kv, err := openLocalManager(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			link, err := share.Link(base, share.NewSnapshot(title, note, mgr.Records()))
			if err != nil {
				return err
			}
			fmt.Println(link)
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "Page URL the link points at (required)")
	cmd.Flags().StringVar(&title, "title", "", "Title shown to viewers")
	cmd.Flags().StringVar(&note, "note", "", "Note shown to viewers")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}
