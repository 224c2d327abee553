package catalog

import (
	"context"
	"time"

	"launchpad/internal/models"
)

// Queries are the single-statement operations available both on a Store
// and inside a transaction.
//
// Lookups return ErrNoRows when the record is absent. Inserts that hit a
// unique constraint return ErrUniqueViolation.
type Queries interface {
	EnsureUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByWallet(ctx context.Context, wallet string) (*models.User, error)
	GetAdminByWallet(ctx context.Context, wallet string) (*models.Admin, error)
	UpsertAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error)

	CreateProject(ctx context.Context, p *models.Project) error
	TokenInUse(ctx context.Context, mint, address string) (bool, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectByMint(ctx context.Context, mint string) (*models.Project, error)
	UpdateStatus(ctx context.Context, id string, change models.StatusChange) error
	DeleteProject(ctx context.Context, id string) (bool, error)

	// IncrementViews adds one view atomically and returns the updated record
	IncrementViews(ctx context.Context, id string, at time.Time) (*models.Project, error)
	AdjustFavorites(ctx context.Context, id string, delta int, at time.Time) error
	AddFavorite(ctx context.Context, f *models.ProjectFavorite) (bool, error)
	RemoveFavorite(ctx context.Context, userID, projectID string) (bool, error)
	HasFavorite(ctx context.Context, userID, projectID string) (bool, error)

	UpdateSnapshot(ctx context.Context, id string, snap models.Snapshot, at time.Time) error
	AppendMetric(ctx context.Context, m *models.ProjectMetric) error
	ListMetrics(ctx context.Context, projectID string, since time.Time) ([]models.ProjectMetric, error)
}

// Store is the durable backing of the catalog
type Store interface {
	Queries

	// WithTx runs fn atomically. A non-nil error from fn rolls back every write made through tx.
	WithTx(ctx context.Context, fn func(tx Queries) error) error

	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int64, error)
	// TrendingCandidates returns up to limit APPROVED projects; the ranker fixes the final order
	TrendingCandidates(ctx context.Context, limit int) ([]models.Project, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Oracle is the chain data source consulted once per submission
type Oracle interface {
	// MintInfo returns ErrUnknownMint when the account is missing or is not a token mint
	MintInfo(ctx context.Context, mint string) (*models.TokenInfo, error)
}
