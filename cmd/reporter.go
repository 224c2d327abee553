package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"launchpad/internal/catalog"
	"launchpad/internal/client"
	"launchpad/internal/config"
	"launchpad/internal/heartbeat"
	"launchpad/internal/subscription"
	"launchpad/internal/worker"
)

// ReporterCmd creates the command that applies the realtime metrics feed
func ReporterCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "reporter",
		Short:   "Start the metrics reporter",
		Long:    `Listens to the realtime metrics feed and records every broadcast as a metrics report`,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			if config.MetricsFeedURL() == "" {
				return fmt.Errorf("metricsFeedUrl not configured")
			}
			if config.Storage() == config.StorageMemory {
				return fmt.Errorf("the reporter needs shared storage, set storage to %q", config.StoragePostgres)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			rt, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer rt.Close()

			// Initialize WebSocket client
			feed := client.New(config.MetricsFeedURL(), config.MetricsFeedAPIKey(), logger.WithField("component", "client"))
			if err := feed.Connect(ctx); err != nil {
				return err
			}
			defer feed.Close()

			w := worker.New(rt.svc, catalog.ReporterIdentity("realtime-feed"), logger.WithField("component", "worker"))
			w.Start(ctx)

			hb := heartbeat.New(feed, config.HeartbeatInterval(), logger.WithField("component", "heartbeat"))
			hb.Start()
			defer hb.Stop()

			sub := subscription.New(feed, config.MetricsFeedTopic(), w, logger.WithField("component", "subscription"))
			if err := sub.Subscribe(); err != nil {
				return err
			}

			listenErr := make(chan error, 1)
			go func() { listenErr <- sub.Listen(ctx) }()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupt)

			select {
			case err := <-listenErr:
				return fmt.Errorf("metrics feed closed: %w", err)
			case <-interrupt:
				logger.Info("Received interrupt signal, shutting down")
				return nil
			}
		},
	}
}
