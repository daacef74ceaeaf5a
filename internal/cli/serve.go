package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quilldb/quill/internal/config"
	"github.com/quilldb/quill/internal/db"
	"github.com/quilldb/quill/internal/httpapi"
)

// NewServeCommand creates the serve command: open the database named by
// the config file and expose it over HTTP until interrupted.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))

			database, err := db.Open(cfg.Database, db.WithLogger(log))
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer database.Close()

			server := &http.Server{
				Addr:    cfg.Listen,
				Handler: httpapi.New(database, log).Router(),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("serving", "addr", cfg.Listen, "database", cfg.Database)
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return WrapExitError(ExitCommandError, "serve", err)
				}
			case <-ctx.Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return WrapExitError(ExitCommandError, "shutdown", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to quill.yaml (defaults apply when omitted)")
	return cmd
}
