package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/ghstore"
)

func newPushCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish the catalog to the configured GitHub repository",
		Long: `Commits the catalog to the configured GitHub Pages repository via
the contents API. Records with embedded images get those images committed
first and rewritten to repository URLs, so the published catalog.json never
carries image payloads.

Requires GITHUB_TOKEN in the environment and github.owner/github.repo in
the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.GitHub.Owner == "" || cfg.GitHub.Repo == "" {
				return fmt.Errorf("github.owner and github.repo must be configured")
			}

			mgr, kv, err := openLocalManager(cmd.Context())
			if err != nil {
				return err
			}
			defer kv.Close()

			client := ghstore.NewClient(cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.Branch, cfg.Token)
			cat := mgr.ExportSnapshot(true)
			if err := client.CommitCatalog(cmd.Context(), cat); err != nil {
				return err
			}

			published := fmt.Sprintf("https://%s.github.io/%s/catalog.json", cfg.GitHub.Owner, cfg.GitHub.Repo)
			fmt.Printf("Pushed %d record(s) to %s/%s\n", len(cat.Items), cfg.GitHub.Owner, cfg.GitHub.Repo)
			fmt.Printf("View it at: ?src=%s\n", published)
			return nil
		},
	}

	return cmd
}
