package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"launchpad/internal/catalog"
	"launchpad/internal/config"
	"launchpad/internal/database"
	"launchpad/internal/logging"
	"launchpad/internal/memstore"
	"launchpad/internal/models"
	"launchpad/internal/oracle"
)

// loadConfig reads the file given with --config before a command runs
func loadConfig(cmd *cobra.Command, _ []string) error {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	config.InitConfig(configPath)
	return nil
}

func newLogger() (*logrus.Logger, error) {
	return logging.New(logging.Options{
		Level: config.LogLevel(),
		File:  config.LogFile(),
	})
}

// backend is the catalog service together with the resources it holds
type backend struct {
	svc    *catalog.Service
	ping   func(ctx context.Context) error
	closer func() error
}

func (r *backend) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// seedAdmin grants wallet SUPER_ADMIN so a fresh deployment has a moderator
func seedAdmin(ctx context.Context, svc *catalog.Service, wallet string, logger logrus.FieldLogger) error {
	if wallet == "" {
		return nil
	}
	if _, err := svc.GrantAdmin(ctx, wallet, models.RoleSuperAdmin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	logger.WithField("wallet", wallet).Info("Seeded super admin")
	return nil
}

// openCatalog builds the service over the configured storage backend
func openCatalog(logger *logrus.Logger) (*backend, error) {
	rpc := oracle.NewClient(config.SolanaRPCURL(), config.OracleTimeout(), logger.WithField("component", "oracle"))
	serviceLogger := logger.WithField("component", "catalog")

	switch config.Storage() {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage; data is lost on exit")
		store := memstore.New()
		return &backend{svc: catalog.NewService(store, rpc, catalog.WithLogger(serviceLogger))}, nil
	case config.StoragePostgres:
		db, err := database.NewDatabase(database.Config{
			URL:          config.DatabaseURL(),
			QueryTimeout: config.QueryTimeout(),
		}, logger.WithField("component", "database"))
		if err != nil {
			return nil, err
		}
		return &backend{
			svc:    catalog.NewService(db, rpc, catalog.WithLogger(serviceLogger)),
			ping:   db.Ping,
			closer: db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", config.Storage())
	}
}
