package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	httpAdapter "github.com/cwygoda/shopsearch/internal/adapter/http"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	addr := app.cfg.Listen
	if v := cmd.String("listen"); v != "" {
		addr = v
	}
	srv := httpAdapter.NewServer(app.searcher, app.history, addr, app.log)

	errCh := make(chan error, 1)
	go func() {
		app.log.Info().Str("addr", srv.Addr()).Int("port", srv.Port()).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		app.log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	// Cancel the live session before draining requests
	app.searcher.Cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	app.log.Info().Msg("shutdown complete")
	return nil
}
