package database

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

var databaseNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// isValidDatabaseName validates database names before they are interpolated into DDL
func isValidDatabaseName(name string) error {
	if len(name) < 1 || len(name) > 63 {
		return fmt.Errorf("database name length must be between 1 and 63 characters")
	}
	if !databaseNamePattern.MatchString(name) {
		return fmt.Errorf("database name must start with a letter or underscore and contain only letters, digits, underscores, and hyphens")
	}
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// splitDatabaseURL returns the database name of a postgres URL and the URL of
// the maintenance database on the same server.
func splitDatabaseURL(dbURL string) (name, maintenanceURL string, err error) {
	u, err := url.Parse(dbURL)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("invalid database URL format")
	}
	name = strings.TrimPrefix(u.Path, "/")
	if err := isValidDatabaseName(name); err != nil {
		return "", "", fmt.Errorf("invalid database name '%s': %w", name, err)
	}
	u.Path = "/postgres"
	return name, u.String(), nil
}

// createDatabaseIfNotExists creates the target database through the maintenance database
func createDatabaseIfNotExists(dbURL string, logger logrus.FieldLogger) error {
	dbName, maintenanceURL, err := splitDatabaseURL(dbURL)
	if err != nil {
		return err
	}

	defaultDB, err := sql.Open("postgres", maintenanceURL)
	if err != nil {
		return fmt.Errorf("failed to connect to default database: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	err = defaultDB.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, dbName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		logger.WithField("database", dbName).Debug("Database already exists")
		return nil
	}

	if _, err := defaultDB.Exec(`CREATE DATABASE "` + dbName + `"`); err != nil {
		return fmt.Errorf("failed to create database %s: %w", dbName, err)
	}
	logger.WithField("database", dbName).Info("Created database")
	return nil
}
