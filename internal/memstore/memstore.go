package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

type favoriteKey struct {
	userID    string
	projectID string
}

type state struct {
	users     map[string]models.User
	wallets   map[string]string
	admins    map[string]models.Admin
	projects  map[string]models.Project
	favorites map[favoriteKey]models.ProjectFavorite
	metrics   []models.ProjectMetric
}

func newState() *state {
	return &state{
		users:     map[string]models.User{},
		wallets:   map[string]string{},
		admins:    map[string]models.Admin{},
		projects:  map[string]models.Project{},
		favorites: map[favoriteKey]models.ProjectFavorite{},
	}
}

// clone copies the indexes. Stored records are replaced, never written
// through, so the copy may share their strings and pointees.
func (s *state) clone() *state {
	c := &state{
		users:     make(map[string]models.User, len(s.users)),
		wallets:   make(map[string]string, len(s.wallets)),
		admins:    make(map[string]models.Admin, len(s.admins)),
		projects:  make(map[string]models.Project, len(s.projects)),
		favorites: make(map[favoriteKey]models.ProjectFavorite, len(s.favorites)),
		metrics:   append([]models.ProjectMetric(nil), s.metrics...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.favorites {
		c.favorites[k] = v
	}
	return c
}

// Store is a process-local catalog.Store. Records are deep-copied on the
// way in and on the way out, so callers never share memory with the store.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ catalog.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{st: newState()}
}

// WithTx runs fn against a copy of the state and publishes the copy only when fn succeeds
func (s *Store) WithTx(ctx context.Context, fn func(tx catalog.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&view{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) read() *view {
	return &view{st: s.st}
}

func (s *Store) EnsureUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().EnsureUser(ctx, u)
}

func (s *Store) GetUserByWallet(ctx context.Context, wallet string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetUserByWallet(ctx, wallet)
}

func (s *Store) GetAdminByWallet(ctx context.Context, wallet string) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetAdminByWallet(ctx, wallet)
}

func (s *Store) UpsertAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpsertAdmin(ctx, a)
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().CreateProject(ctx, p)
}

func (s *Store) TokenInUse(ctx context.Context, mint, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().TokenInUse(ctx, mint, address)
}

func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetProject(ctx, id)
}

func (s *Store) GetProjectByMint(ctx context.Context, mint string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().GetProjectByMint(ctx, mint)
}

func (s *Store) UpdateStatus(ctx context.Context, id string, change models.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateStatus(ctx, id, change)
}

func (s *Store) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().DeleteProject(ctx, id)
}

func (s *Store) IncrementViews(ctx context.Context, id string, at time.Time) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().IncrementViews(ctx, id, at)
}

func (s *Store) AdjustFavorites(ctx context.Context, id string, delta int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().AdjustFavorites(ctx, id, delta, at)
}

func (s *Store) AddFavorite(ctx context.Context, f *models.ProjectFavorite) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().AddFavorite(ctx, f)
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().RemoveFavorite(ctx, userID, projectID)
}

func (s *Store) HasFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().HasFavorite(ctx, userID, projectID)
}

func (s *Store) UpdateSnapshot(ctx context.Context, id string, snap models.Snapshot, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().UpdateSnapshot(ctx, id, snap, at)
}

func (s *Store) AppendMetric(ctx context.Context, m *models.ProjectMetric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().AppendMetric(ctx, m)
}

func (s *Store) ListMetrics(ctx context.Context, projectID string, since time.Time) ([]models.ProjectMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read().ListMetrics(ctx, projectID, since)
}

// ListProjects filters, orders newest first and pages the projects
func (s *Store) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.read()
	search := strings.ToLower(filter.Search)
	matched := make([]models.Project, 0)
	for _, p := range v.st.projects {
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if filter.Tag != "" && !hasTag(p, filter.Tag) {
			continue
		}
		matched = append(matched, v.withOwner(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

// TrendingCandidates returns the best limit APPROVED projects
func (s *Store) TrendingCandidates(ctx context.Context, limit int) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.read()
	approved := make([]models.Project, 0)
	for _, p := range v.st.projects {
		if p.Status == models.StatusApproved {
			approved = append(approved, v.withOwner(p))
		}
	}
	ranked := catalog.Rank(approved)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// Stats aggregates the dashboard figures
func (s *Store) Stats(ctx context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.Stats{TotalUsers: int64(len(s.st.users))}
	for _, p := range s.st.projects {
		stats.TotalProjects++
		stats.TotalViews += p.Views
		stats.TotalFavorites += p.Favorites
		switch p.Status {
		case models.StatusPending:
			stats.PendingProjects++
		case models.StatusApproved:
			stats.ApprovedProjects++
		case models.StatusRejected:
			stats.RejectedProjects++
		case models.StatusFeatured:
			stats.FeaturedProjects++
		case models.StatusArchived:
			stats.ArchivedProjects++
		}
	}
	return stats, nil
}

func matchesSearch(p models.Project, needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Symbol), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func hasTag(p models.Project, tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
