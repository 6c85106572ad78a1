package cmd

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/catalog"
	"github.com/photocard-tools/cardfolio/internal/config"
	"github.com/photocard-tools/cardfolio/internal/mode"
	"github.com/photocard-tools/cardfolio/internal/store"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardfolio",
		Short: "Collectible photocard catalog with shareable read-only views",
		Long: `Cardfolio keeps a catalog of collectible photocards: what you bought,
where and when, with images.

The catalog lives in a local store and can be published to a GitHub Pages
repository or handed out as a self-contained share link.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}

			var err error
			cfg, err = config.Load(cfgFile)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/cardfolio/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(),
		newListCmd(),
		newExportCmd(),
		newImportCmd(),
		newShareCmd(),
		newPushCmd(),
		newSyncImagesCmd(),
	)

	return cmd
}

// openLocalManager loads the local catalog the way a plain editable session
// would. The caller must Close the returned store.
func openLocalManager(ctx context.Context) (*catalog.Manager, store.KV, error) {
	kv, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	mgr := catalog.NewManager(kv, mode.Mode{Editable: true, Source: mode.SourceLocalStore}, nil)
	if err := mgr.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, err
	}
	return mgr, kv, nil
}
