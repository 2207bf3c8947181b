package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpgo/bizplan/internal/api"
	"github.com/rpgo/bizplan/internal/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		noArchive bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the projection engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.settings.Addr
			}

			var runs *store.Store
			if !noArchive {
				s, err := a.openStore()
				if err != nil {
					return err
				}
				defer s.Close()
				runs = s
			}
			srv := api.NewServer(a.engine(), a.settings, runs, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				a.logger.Infof("listening on %s", addr)
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.logger.Infof("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $BIZPLAN_ADDR or :8080)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not store runs")
	return cmd
}
