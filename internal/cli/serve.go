package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"trade-journal/internal/api"
	"trade-journal/internal/resilience"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal over HTTP",
		Long: `Start the JSON API. Trades, achievements, profile, streaks,
challenges, playbooks and stats are exposed under /api/v1.
Stop with Ctrl+C; in-flight requests are drained before exit.`,
		Example: `  journal serve
  journal serve --addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = app.Config.Server.Addr
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(app.Journal, app.Feed, app.Logger, app.Config.Server.Mode)
			if app.Notifier != nil {
				if webhook, ok := app.Notifier.Webhook(); ok {
					srv.RegisterCheck("webhook", resilience.BreakerCheck(webhook.Breaker()))
				}
			}
			output.Info("Serving the journal API on %s", addr)
			if err := srv.Run(ctx, addr); err != nil {
				output.Error("API server failed: %v", err)
				return err
			}
			output.Dim("API stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
