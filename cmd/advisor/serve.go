package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/rate-advisor/internal/server"
)

// #region serve

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(flags.configPath, flags.logLevel, os.Stderr)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := []server.Option{server.WithLogger(logger), server.WithMetrics(a.metrics, a.registry)}
			if a.turnLog != nil {
				opts = append(opts, server.WithHistory(a.turnLog))
			}
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(a.orch, opts...).Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				sessions := a.orch.Sessions()
				sessions.RunJanitor(gctx, cfg.Session.JanitorInterval, func(removed int) {
					a.metrics.ActiveSessions.Set(float64(sessions.Stats().Sessions))
					if removed > 0 {
						logger.Debug().Int("removed", removed).Msg("expired sessions")
					}
				})
				return nil
			})
			g.Go(func() error {
				logger.Info().Str("addr", srv.Addr).Str("mode", cfg.Orchestrator.Mode).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				logger.Info().Msg("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// #endregion serve
