package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/photocard-tools/cardfolio/internal/handlers"
	"github.com/photocard-tools/cardfolio/internal/store"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web interface",
		Long: `Serves the catalog page and its JSON API.

The page understands the same invocation parameters as a published copy:
?edit=1 for an editable session, ?admin=1 to also show the admin panel,
?src=<url> to view a published catalog read-only, and ?catalog=<payload>
for a self-contained share link.`,
		Example: `  # Start server on the configured address
  cardfolio serve

  # Start server on a custom address
  cardfolio serve --listen :3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = cfg.Listen
			}

			kv, err := store.OpenSQLite(cfg.DBPath)
			if err != nil {
				return err
			}
			defer kv.Close()

			mux := http.NewServeMux()
			handlers.New(kv, cfg.PublicDir).Register(mux)

			server := &http.Server{
				Addr:    listen,
				Handler: mux,
			}

			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Cardfolio interface available", "addr", listen, "url", "http://localhost"+listen)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on (default from config)")

	return cmd
}
