package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

// DefaultQueryTimeout bounds every statement that runs outside a transaction
const DefaultQueryTimeout = 15 * time.Second

const uniqueViolation = "23505"

// Database is the Postgres catalog.Store
type Database struct {
	*queries
	db     *sqlx.DB
	logger logrus.FieldLogger
}

var _ catalog.Store = (*Database)(nil)

// Config holds the connection settings of the store
type Config struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
}

// NewDatabase creates the database when missing, connects and applies the embedded migrations
func NewDatabase(cfg Config, logger logrus.FieldLogger) (*Database, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("databaseUrl not configured")
	}

	if err := createDatabaseIfNotExists(cfg.URL, logger); err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	db, err := sqlx.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w, and failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db.DB); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w, and failed to close connection: %w", err, closeErr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return New(db, cfg.QueryTimeout, logger), nil
}

// New wraps an open connection pool
func New(db *sqlx.DB, timeout time.Duration, logger logrus.FieldLogger) *Database {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Database{
		queries: &queries{ext: db, timeout: timeout},
		db:      db,
		logger:  logger,
	}
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Ping checks the connection for health probes
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := d.scoped(ctx)
	defer cancel()
	return d.db.PingContext(ctx)
}

// WithTx runs fn inside a database transaction
func (d *Database) WithTx(ctx context.Context, fn func(tx catalog.Queries) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&queries{ext: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			d.logger.WithError(rbErr).Warn("Failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate("commit transaction", err)
	}
	return nil
}

// ListProjects runs the page and count queries concurrently
func (d *Database) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int64, error) {
	where, args := projectWhere(filter)

	var (
		rows  []projectRow
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		qctx, cancel := d.scoped(gctx)
		defer cancel()
		n := len(args)
		query := selectProjects + where +
			` ORDER BY p.created_at DESC, p.id DESC LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
		pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
		if err := sqlx.SelectContext(qctx, d.ext, &rows, query, pageArgs...); err != nil {
			return translate("list projects", err)
		}
		return nil
	})
	g.Go(func() error {
		qctx, cancel := d.scoped(gctx)
		defer cancel()
		if err := sqlx.GetContext(qctx, d.ext, &total, `SELECT COUNT(*) FROM projects p`+where, args...); err != nil {
			return translate("count projects", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return toProjects(rows), total, nil
}

func projectWhere(filter models.ProjectFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "p.status = "+next(string(*filter.Status)))
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %[1]s OR p.symbol ILIKE %[1]s OR p.description ILIKE %[1]s)", p))
	}
	if filter.Tag != "" {
		conds = append(conds, next(filter.Tag)+" = ANY(p.tags)")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// TrendingCandidates returns APPROVED projects in ranking order
func (d *Database) TrendingCandidates(ctx context.Context, limit int) ([]models.Project, error) {
	ctx, cancel := d.scoped(ctx)
	defer cancel()

	var rows []projectRow
	query := selectProjects + ` WHERE p.status = $1
		ORDER BY p.swap_volume DESC, p.views DESC, p.favorites DESC, p.created_at DESC, p.id ASC
		LIMIT $2`
	if err := sqlx.SelectContext(ctx, d.ext, &rows, query, string(models.StatusApproved), limit); err != nil {
		return nil, translate("list trending projects", err)
	}
	return toProjects(rows), nil
}

// Stats aggregates the dashboard figures in one round trip
func (d *Database) Stats(ctx context.Context) (*models.Stats, error) {
	ctx, cancel := d.scoped(ctx)
	defer cancel()

	var stats models.Stats
	err := sqlx.GetContext(ctx, d.ext, &stats, `
		SELECT
			COUNT(*) AS total_projects,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_projects,
			COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved_projects,
			COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected_projects,
			COUNT(*) FILTER (WHERE status = 'FEATURED') AS featured_projects,
			COUNT(*) FILTER (WHERE status = 'ARCHIVED') AS archived_projects,
			(SELECT COUNT(*) FROM users) AS total_users,
			COALESCE(SUM(views), 0) AS total_views,
			COALESCE(SUM(favorites), 0) AS total_favorites
		FROM projects
	`)
	if err != nil {
		return nil, translate("load stats", err)
	}
	return &stats, nil
}

// translate maps driver errors onto the catalog sentinels
func translate(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.ErrNoRows
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", catalog.ErrUniqueViolation, pqErr.Constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
