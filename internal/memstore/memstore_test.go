package memstore

import (
	"context"
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

func seed(t *testing.T, s *Store) (*models.User, *models.Project) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	user, err := s.EnsureUser(ctx, &models.User{ID: "u1", WalletAddress: "wallet-1", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	p := &models.Project{
		ID:           "p1",
		Name:         "Alpha",
		Symbol:       "ALP",
		Description:  "alpha project",
		TokenMint:    "mint-1",
		TokenAddress: "addr-1",
		Status:       models.StatusApproved,
		SubmittedBy:  user.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateProject(ctx, p))
	return user, p
}

func TestEnsureUserIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.EnsureUser(ctx, &models.User{ID: "u1", WalletAddress: "w"})
	require.NoError(t, err)
	second, err := s.EnsureUser(ctx, &models.User{ID: "u2", WalletAddress: "w"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "u1", second.ID)
}

func TestCreateProjectUniqueTokens(t *testing.T) {
	s := New()
	user, _ := seed(t, s)

	err := s.CreateProject(context.Background(), &models.Project{
		ID: "p2", TokenMint: "mint-1", TokenAddress: "addr-2", SubmittedBy: user.ID,
	})
	assert.ErrorIs(t, err, catalog.ErrUniqueViolation)

	err = s.CreateProject(context.Background(), &models.Project{
		ID: "p3", TokenMint: "mint-3", TokenAddress: "addr-1", SubmittedBy: user.ID,
	})
	assert.ErrorIs(t, err, catalog.ErrUniqueViolation)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := New()
	_, p := seed(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx catalog.Queries) error {
		require.NoError(t, tx.UpdateSnapshot(ctx, p.ID, models.Snapshot{SwapVolume: decimal.NewFromInt(9)}, time.Now()))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.SwapVolume.IsZero())
}

func TestDeleteProjectCascades(t *testing.T) {
	s := New()
	user, p := seed(t, s)
	ctx := context.Background()

	added, err := s.AddFavorite(ctx, &models.ProjectFavorite{UserID: user.ID, ProjectID: p.ID})
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, s.AppendMetric(ctx, &models.ProjectMetric{ID: "m1", ProjectID: p.ID, Date: time.Now()}))

	deleted, err := s.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	has, err := s.HasFavorite(ctx, user.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, has)

	metrics, err := s.ListMetrics(ctx, p.ID, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, metrics)

	deleted, err = s.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListProjectsFilters(t *testing.T) {
	s := New()
	user, _ := seed(t, s)
	ctx := context.Background()
	base := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"Beta", "Gamma", "Delta"} {
		require.NoError(t, s.CreateProject(ctx, &models.Project{
			ID:           name,
			Name:         name,
			Symbol:       "SYM",
			Description:  "a " + name + " token",
			TokenMint:    "mint-" + name,
			TokenAddress: "addr-" + name,
			Tags:         []string{"defi"},
			Status:       models.StatusApproved,
			SubmittedBy:  user.ID,
			CreatedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}

	approved := models.StatusApproved
	page, total, err := s.ListProjects(ctx, models.ProjectFilter{Status: &approved, Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, page, 2)
	assert.Equal(t, "Delta", page[0].Name)
	assert.Equal(t, "Gamma", page[1].Name)
	require.NotNil(t, page[0].Owner)
	assert.Equal(t, "wallet-1", page[0].Owner.WalletAddress)

	page, total, err = s.ListProjects(ctx, models.ProjectFilter{Search: "GAM", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Gamma", page[0].Name)

	_, total, err = s.ListProjects(ctx, models.ProjectFilter{Tag: "defi", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	page, total, err = s.ListProjects(ctx, models.ProjectFilter{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Empty(t, page)
}

func TestUpsertAdminKeepsIdentity(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.UpsertAdmin(ctx, &models.Admin{ID: "a1", WalletAddress: "w", Role: models.RoleAdmin})
	require.NoError(t, err)
	second, err := s.UpsertAdmin(ctx, &models.Admin{ID: "a2", WalletAddress: "w", Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.RoleSuperAdmin, second.Role)
}

func TestReturnedProjectsAreDetached(t *testing.T) {
	s := New()
	ctx := context.Background()
	user, err := s.EnsureUser(ctx, &models.User{ID: "u1", WalletAddress: "wallet-1"})
	require.NoError(t, err)

	website := "https://alpha.example"
	in := &models.Project{
		ID:           "p1",
		TokenMint:    "mint-1",
		TokenAddress: "addr-1",
		Website:      &website,
		Tags:         []string{"defi", "nft"},
		SubmittedBy:  user.ID,
	}
	require.NoError(t, s.CreateProject(ctx, in))
	in.Tags[0] = "changed"
	website = "https://changed.example"

	out, err := s.GetProjectByMint(ctx, "mint-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"defi", "nft"}, []string(out.Tags))
	require.NotNil(t, out.Website)
	assert.Equal(t, "https://alpha.example", *out.Website)

	out.Tags[0] = "changed"
	*out.Website = "https://changed.example"

	again, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "defi", again.Tags[0])
	assert.Equal(t, "https://alpha.example", *again.Website)

	listed, _, err := s.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Tags[1] = "changed"
	again, err = s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "nft", again.Tags[1])
}

// aliased returns a string backed by buf, the way zero-copy request
// parameters are.
func aliased(buf []byte) string {
	return unsafe.String(&buf[0], len(buf))
}

func TestIdentifiersSurviveBufferReuse(t *testing.T) {
	s := New()
	user, _ := seed(t, s)
	ctx := context.Background()

	buf := []byte("p1")
	id := aliased(buf)

	require.NoError(t, s.UpdateStatus(ctx, id, models.StatusChange{Status: models.StatusFeatured}))
	_, err := s.IncrementViews(ctx, id, time.Now())
	require.NoError(t, err)
	added, err := s.AddFavorite(ctx, &models.ProjectFavorite{UserID: user.ID, ProjectID: id})
	require.NoError(t, err)
	require.True(t, added)
	require.NoError(t, s.AppendMetric(ctx, &models.ProjectMetric{ID: "m1", ProjectID: id, Date: time.Now()}))

	copy(buf, "zz")

	got, err := s.GetProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, models.StatusFeatured, got.Status)
	assert.EqualValues(t, 1, got.Views)
	_, err = s.GetProject(ctx, "zz")
	assert.ErrorIs(t, err, catalog.ErrNoRows)

	has, err := s.HasFavorite(ctx, user.ID, "p1")
	require.NoError(t, err)
	assert.True(t, has)
	metrics, err := s.ListMetrics(ctx, "p1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, metrics, 1)
}
