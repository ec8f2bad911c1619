package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/fincalc/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculators over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if address == "" {
				address = a.conf.Server.Address
			}
			maxBodySize, err := a.conf.Server.MaxBodySizeBytes()
			if err != nil {
				return fmt.Errorf("invalid server maxBodySize: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			recorder, closeHistory, err := a.openHistory(ctx)
			if err != nil {
				return err
			}
			defer closeHistory()

			client := a.assistantClient()
			handler := server.NewHandler(a.logger, server.Options{
				Registry:    a.registry,
				Recorder:    recorder,
				Assistant:   client,
				Loans:       a.loanClient(),
				Property:    a.propertyPredictor(client),
				MaxBodySize: maxBodySize,
				RecentLimit: a.conf.History.RecentLimit,
				Version:     version,
			})

			srv := &http.Server{
				Addr:              address,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting HTTP server",
					zap.String("op", "main.serve"),
					zap.String("address", address),
					zap.Int64("maxBodySize", maxBodySize),
					zap.String("historyBackend", a.conf.History.Backend),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server stopped: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down HTTP server",
				zap.String("op", "main.serve"),
			)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("failed to shut down cleanly: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address (default from configuration)")
	return cmd
}
