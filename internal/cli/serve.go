package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/internal/server"
)

// newServeCmd creates the serve command for the local HTTP API.
func newServeCmd() *cobra.Command {
	var (
		dbPath     string
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout JSON and SVG over local HTTP",
		Long: `Serve a read-only HTTP API for embedding kintree in other tools:

  GET /api/persons      all persons as JSON
  GET /api/layout       layout graph (query: root, orientation, density, couples, auto)
  GET /api/layout.svg   the same layout rendered as SVG

The server has no authentication and should stay on localhost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			st, err := openStore(dbPath, settings)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(st, logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			// shut down when the command context is cancelled (Ctrl-C)
			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			printInfo("Serving on http://%s", addr)
			logger.Info("server started", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "database file (default: configured path)")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: platform config dir)")
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:7333", "listen address")
	return cmd
}
