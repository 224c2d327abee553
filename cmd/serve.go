package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"launchpad/internal/auth"
	"launchpad/internal/config"
	"launchpad/internal/server"
)

// ServeCmd creates the command running the HTTP API
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the API server",
		Long:    `Starts the HTTP API serving the project directory, moderation and metrics endpoints`,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}

			rt, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer rt.Close()

			if err := seedAdmin(cmd.Context(), rt.svc, config.AdminWallet(), logger); err != nil {
				return err
			}

			issuer, err := auth.NewIssuer(config.JWTSecret(), config.JWTExpiresIn())
			if err != nil {
				return err
			}

			var nonces auth.NonceStore = auth.NewMemoryNonceStore()
			if url := config.RedisURL(); url != "" {
				redisNonces, err := auth.NewRedisNonceStore(url)
				if err != nil {
					return fmt.Errorf("failed to connect to redis: %w", err)
				}
				defer redisNonces.Close()
				if err := redisNonces.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("failed to reach redis: %w", err)
				}
				nonces = redisNonces
			}

			authenticator := auth.NewAuthenticator(issuer, nonces, rt.svc, logger.WithField("component", "auth"))
			srv := server.NewServer(server.Options{
				Service:       rt.svc,
				Authenticator: authenticator,
				Logger:        logger,
				CORSOrigins:   config.CORSOrigins(),
				RateLimit:     server.RateLimit{Max: config.RateLimitMax(), Window: config.RateLimitWindow()},
				StrictLimit:   server.RateLimit{Max: config.StrictRateLimitMax(), Window: config.StrictRateLimitWindow()},
				Ping:          rt.ping,
			})

			serverErr := make(chan error, 1)
			go func() {
				logger.WithField("port", config.Port()).Info("Starting API server")
				serverErr <- srv.Start(strconv.Itoa(config.Port()))
			}()

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interrupt)

			select {
			case err := <-serverErr:
				if err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("server stopped: %w", err)
				}
				return nil
			case <-interrupt:
				logger.Info("Received interrupt signal, shutting down")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
}
