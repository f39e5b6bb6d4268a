package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jamesprial/mcp-youtube-transcript/internal/transport"
)

type namedServer struct {
	name   string
	server transport.Server
}

// serve runs every server until ctx is cancelled or one of them fails, then
// shuts all of them down within timeout.
func serve(ctx context.Context, logger *slog.Logger, timeout time.Duration, servers ...namedServer) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		g.Go(func() error {
			logger.Info("starting server", "surface", s.name, "addr", s.server.Addr())
			if err := s.server.Start(); err != nil {
				return fmt.Errorf("%s server: %w", s.name, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("shutdown signal received, stopping servers")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("%s shutdown: %w", s.name, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return err
	}
	logger.Info("servers stopped")
	return nil
}
