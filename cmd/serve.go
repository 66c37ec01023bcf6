package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/scoutgrade/internal/adapters/http/api"
	"github.com/okian/scoutgrade/internal/adapters/repository"
	service "github.com/okian/scoutgrade/internal/app"
	"github.com/okian/scoutgrade/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var addr, schedule string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Score, publish and serve leaderboards over HTTP",
		Long: `serve scores the configured records, publishes the run and exposes
/healthz, /stats, /profiles, /leaderboard, /players/{id} and /runs/{id|latest}.
With a rescore schedule the records are re-read and re-scored periodically;
readers always see a complete run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Addr = addr
			}
			if cmd.Flags().Changed("schedule") {
				c.cfg.RescoreSchedule = schedule
			}
			svc, err := newService(cmd.Context(), c)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), c, svc)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&schedule, "schedule", "", `cron spec for rescoring, e.g. "@every 6h"`)
	return cmd
}

func newService(ctx context.Context, c *cli) (*service.Service, error) {
	engine, err := c.engine(ctx)
	if err != nil {
		return nil, err
	}
	return service.New(engine, c.source(),
		service.WithLogger(c.log),
		service.WithSchedule(c.cfg.RescoreSchedule),
		service.WithStore(repository.NewRunStore(repository.WithRetention(c.cfg.RunRetention))),
	)
}

func newHandler(ctx context.Context, svc *service.Service, maxLimit int) http.Handler {
	mux := http.NewServeMux()
	api.NewServer(svc, maxLimit).Register(ctx, mux)
	return mux
}

// serve blocks until ctx is cancelled, then shuts the server down gracefully.
func serve(ctx context.Context, c *cli, svc *service.Service) error {
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              c.cfg.Addr,
		Handler:           newHandler(ctx, svc, c.cfg.MaxLeaderboardLimit),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		c.log.Info(ctx, "starting HTTP server", logger.String("addr", c.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	c.log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}

	c.log.Info(ctx, "server stopped")
	return nil
}
