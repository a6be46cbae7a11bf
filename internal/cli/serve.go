package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "monthcal/internal/log"
	"monthcal/internal/snapshot"
	"monthcal/internal/web"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API and refresh events on a schedule",
		Long: `Start the HTTP API.

Events are loaded once at startup and then reloaded on the configured cron
schedule (config "refresh", e.g. "*/15 * * * *"). POST /api/refresh reloads
immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					appLog.Info("signal received, shutting down", "signal", sig.String())
					cancel()
				case <-ctx.Done():
				}
			}()

			src, err := buildSource(ctx, cfg)
			if err != nil {
				return err
			}

			store := snapshot.NewStore()
			refresher := snapshot.NewRefresher(store, src, 0)
			if _, err := refresher.RefreshNow(ctx); err != nil {
				appLog.Warn("initial load incomplete", "err", err)
			}
			if err := refresher.Start(cfg.RefreshCron); err != nil {
				return err
			}
			defer refresher.Stop()

			srv := web.NewServer(cfg, store, refresher)
			err = srv.ListenAndServe(ctx)
			appLog.Info("monthcal exiting")
			return err
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
