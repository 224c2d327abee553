package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

const projectColumns = `p.id, p.name, p.symbol, p.description, p.website, p.twitter, p.telegram,
	p.discord, p.github, p.logo_url, p.banner_url, p.tags, p.token_address, p.token_mint,
	p.token_decimals, p.token_supply, p.status, p.rejection_reason, p.approved_at, p.approved_by,
	p.views, p.favorites, p.swap_volume, p.liquidity, p.holders, p.current_price,
	p.submitted_by, p.created_at, p.updated_at,
	u.wallet_address AS owner_wallet_address, u.username AS owner_username`

const selectProjects = `SELECT ` + projectColumns + ` FROM projects p LEFT JOIN users u ON u.id = p.submitted_by`

// projectRow is a project joined with the public fields of its owner
type projectRow struct {
	models.Project
	OwnerWalletAddress sql.NullString `db:"owner_wallet_address"`
	OwnerUsername      sql.NullString `db:"owner_username"`
}

func (r projectRow) toProject() *models.Project {
	p := r.Project
	if r.OwnerWalletAddress.Valid {
		owner := &models.Owner{WalletAddress: r.OwnerWalletAddress.String}
		if r.OwnerUsername.Valid {
			name := r.OwnerUsername.String
			owner.Username = &name
		}
		p.Owner = owner
	}
	return &p
}

func toProjects(rows []projectRow) []models.Project {
	out := make([]models.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.toProject())
	}
	return out
}

// queries implements catalog.Queries over either the pool or a transaction.
// A zero timeout leaves deadlines to the caller's context.
type queries struct {
	ext     sqlx.ExtContext
	timeout time.Duration
}

func (q *queries) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	if q.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, q.timeout)
}

func (q *queries) EnsureUser(ctx context.Context, u *models.User) (*models.User, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var user models.User
	err := sqlx.GetContext(ctx, q.ext, &user, `
		INSERT INTO users (id, wallet_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (wallet_address) DO UPDATE SET wallet_address = EXCLUDED.wallet_address
		RETURNING id, wallet_address, username, created_at, updated_at
	`, u.ID, u.WalletAddress, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return nil, translate("ensure user", err)
	}
	return &user, nil
}

func (q *queries) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var user models.User
	err := sqlx.GetContext(ctx, q.ext, &user,
		`SELECT id, wallet_address, username, created_at, updated_at FROM users WHERE wallet_address = $1`, wallet)
	if err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (q *queries) GetAdminByWallet(ctx context.Context, wallet string) (*models.Admin, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var admin models.Admin
	err := sqlx.GetContext(ctx, q.ext, &admin,
		`SELECT id, wallet_address, role, created_at, updated_at FROM admins WHERE wallet_address = $1`, wallet)
	if err != nil {
		return nil, translate("get admin", err)
	}
	return &admin, nil
}

func (q *queries) UpsertAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var admin models.Admin
	err := sqlx.GetContext(ctx, q.ext, &admin, `
		INSERT INTO admins (id, wallet_address, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (wallet_address) DO UPDATE SET role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		RETURNING id, wallet_address, role, created_at, updated_at
	`, a.ID, a.WalletAddress, string(a.Role), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return nil, translate("upsert admin", err)
	}
	return &admin, nil
}

func (q *queries) CreateProject(ctx context.Context, p *models.Project) error {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	_, err := sqlx.NamedExecContext(ctx, q.ext, `
		INSERT INTO projects (
			id, name, symbol, description, website, twitter, telegram, discord, github,
			logo_url, banner_url, tags, token_address, token_mint, token_decimals, token_supply,
			status, views, favorites, swap_volume, liquidity, holders, current_price,
			submitted_by, created_at, updated_at
		) VALUES (
			:id, :name, :symbol, :description, :website, :twitter, :telegram, :discord, :github,
			:logo_url, :banner_url, :tags, :token_address, :token_mint, :token_decimals, :token_supply,
			:status, :views, :favorites, :swap_volume, :liquidity, :holders, :current_price,
			:submitted_by, :created_at, :updated_at
		)
	`, p)
	if err != nil {
		return translate("create project", err)
	}
	return nil
}

func (q *queries) TokenInUse(ctx context.Context, mint, address string) (bool, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var exists bool
	err := sqlx.GetContext(ctx, q.ext, &exists,
		`SELECT EXISTS(SELECT 1 FROM projects WHERE token_mint = $1 OR token_address = $2)`, mint, address)
	if err != nil {
		return false, translate("check token", err)
	}
	return exists, nil
}

func (q *queries) getProject(ctx context.Context, column, value string) (*models.Project, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var row projectRow
	if err := sqlx.GetContext(ctx, q.ext, &row, selectProjects+` WHERE p.`+column+` = $1`, value); err != nil {
		return nil, translate("get project", err)
	}
	return row.toProject(), nil
}

func (q *queries) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return q.getProject(ctx, "id", id)
}

func (q *queries) GetProjectByMint(ctx context.Context, mint string) (*models.Project, error) {
	return q.getProject(ctx, "token_mint", mint)
}

func (q *queries) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	sets := []string{"status = $2", "updated_at = $3"}
	args := []any{id, string(change.Status), change.UpdatedAt}
	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if change.Approve {
		add("approved_at", change.ApprovedAt)
		add("approved_by", change.ApprovedBy)
	}
	switch {
	case change.RejectionReason != nil:
		add("rejection_reason", *change.RejectionReason)
	case change.ClearRejection:
		sets = append(sets, "rejection_reason = NULL")
	}

	res, err := q.ext.ExecContext(ctx, `UPDATE projects SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return translate("update project status", err)
	}
	return requireRow(res)
}

func (q *queries) DeleteProject(ctx context.Context, id string) (bool, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, translate("delete project", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (q *queries) IncrementViews(ctx context.Context, id string, at time.Time) (*models.Project, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var row projectRow
	err := sqlx.GetContext(ctx, q.ext, &row, `
		WITH p AS (
			UPDATE projects SET views = views + 1, updated_at = $2 WHERE id = $1 RETURNING *
		)
		SELECT `+projectColumns+` FROM p LEFT JOIN users u ON u.id = p.submitted_by
	`, id, at)
	if err != nil {
		return nil, translate("increment views", err)
	}
	return row.toProject(), nil
}

func (q *queries) AdjustFavorites(ctx context.Context, id string, delta int, at time.Time) error {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx,
		`UPDATE projects SET favorites = favorites + $2, updated_at = $3 WHERE id = $1`, id, delta, at)
	if err != nil {
		return translate("adjust favorites", err)
	}
	return requireRow(res)
}

func (q *queries) AddFavorite(ctx context.Context, f *models.ProjectFavorite) (bool, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx, `
		INSERT INTO project_favorites (user_id, project_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, f.UserID, f.ProjectID, f.CreatedAt)
	if err != nil {
		return false, translate("add favorite", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (q *queries) RemoveFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx,
		`DELETE FROM project_favorites WHERE user_id = $1 AND project_id = $2`, userID, projectID)
	if err != nil {
		return false, translate("remove favorite", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (q *queries) HasFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	var exists bool
	err := sqlx.GetContext(ctx, q.ext, &exists,
		`SELECT EXISTS(SELECT 1 FROM project_favorites WHERE user_id = $1 AND project_id = $2)`, userID, projectID)
	if err != nil {
		return false, translate("check favorite", err)
	}
	return exists, nil
}

func (q *queries) UpdateSnapshot(ctx context.Context, id string, snap models.Snapshot, at time.Time) error {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	res, err := q.ext.ExecContext(ctx, `
		UPDATE projects
		SET swap_volume = $2, liquidity = $3, holders = $4, current_price = $5, updated_at = $6
		WHERE id = $1
	`, id, snap.SwapVolume, snap.Liquidity, snap.Holders, snap.Price, at)
	if err != nil {
		return translate("update snapshot", err)
	}
	return requireRow(res)
}

func (q *queries) AppendMetric(ctx context.Context, m *models.ProjectMetric) error {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	_, err := sqlx.NamedExecContext(ctx, q.ext, `
		INSERT INTO project_metrics (id, project_id, swap_volume, liquidity, holders, price, date)
		VALUES (:id, :project_id, :swap_volume, :liquidity, :holders, :price, :date)
	`, m)
	if err != nil {
		return translate("append metric", err)
	}
	return nil
}

func (q *queries) ListMetrics(ctx context.Context, projectID string, since time.Time) ([]models.ProjectMetric, error) {
	ctx, cancel := q.scoped(ctx)
	defer cancel()

	metrics := []models.ProjectMetric{}
	err := sqlx.SelectContext(ctx, q.ext, &metrics, `
		SELECT id, project_id, swap_volume, liquidity, holders, price, date
		FROM project_metrics
		WHERE project_id = $1 AND date >= $2
		ORDER BY date ASC
	`, projectID, since)
	if err != nil {
		return nil, translate("list metrics", err)
	}
	return metrics, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return catalog.ErrNoRows
	}
	return nil
}
