package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

// view runs the single-statement queries over a state. The caller holds the lock.
type view struct {
	st *state
}

// withOwner returns a detached copy of p with its submitter attached
func (v *view) withOwner(p models.Project) models.Project {
	p = copyProject(p)
	if u, ok := v.st.users[p.SubmittedBy]; ok {
		p.Owner = &models.Owner{WalletAddress: u.WalletAddress, Username: copyString(u.Username)}
	}
	return p
}

func (v *view) EnsureUser(_ context.Context, u *models.User) (*models.User, error) {
	if id, ok := v.st.wallets[u.WalletAddress]; ok {
		existing := copyUser(v.st.users[id])
		return &existing, nil
	}
	stored := copyUser(*u)
	v.st.users[stored.ID] = stored
	v.st.wallets[stored.WalletAddress] = stored.ID
	created := copyUser(stored)
	return &created, nil
}

func (v *view) GetUserByWallet(_ context.Context, wallet string) (*models.User, error) {
	id, ok := v.st.wallets[wallet]
	if !ok {
		return nil, catalog.ErrNoRows
	}
	u := copyUser(v.st.users[id])
	return &u, nil
}

func (v *view) GetAdminByWallet(_ context.Context, wallet string) (*models.Admin, error) {
	a, ok := v.st.admins[wallet]
	if !ok {
		return nil, catalog.ErrNoRows
	}
	return &a, nil
}

func (v *view) UpsertAdmin(_ context.Context, a *models.Admin) (*models.Admin, error) {
	if existing, ok := v.st.admins[a.WalletAddress]; ok {
		existing.Role = a.Role
		existing.UpdatedAt = a.UpdatedAt
		v.st.admins[existing.WalletAddress] = existing
		return &existing, nil
	}
	stored := copyAdmin(*a)
	v.st.admins[stored.WalletAddress] = stored
	created := stored
	return &created, nil
}

func (v *view) CreateProject(_ context.Context, p *models.Project) error {
	for _, existing := range v.st.projects {
		if existing.TokenMint == p.TokenMint || existing.TokenAddress == p.TokenAddress {
			return catalog.ErrUniqueViolation
		}
	}
	if _, ok := v.st.users[p.SubmittedBy]; !ok {
		return fmt.Errorf("submitting user %s does not exist", p.SubmittedBy)
	}
	stored := copyProject(*p)
	stored.Owner = nil
	v.st.projects[stored.ID] = stored
	return nil
}

func (v *view) TokenInUse(_ context.Context, mint, address string) (bool, error) {
	for _, p := range v.st.projects {
		if p.TokenMint == mint || p.TokenAddress == address {
			return true, nil
		}
	}
	return false, nil
}

func (v *view) GetProject(_ context.Context, id string) (*models.Project, error) {
	p, ok := v.st.projects[id]
	if !ok {
		return nil, catalog.ErrNoRows
	}
	out := v.withOwner(p)
	return &out, nil
}

func (v *view) GetProjectByMint(_ context.Context, mint string) (*models.Project, error) {
	for _, p := range v.st.projects {
		if p.TokenMint == mint {
			out := v.withOwner(p)
			return &out, nil
		}
	}
	return nil, catalog.ErrNoRows
}

func (v *view) UpdateStatus(_ context.Context, id string, change models.StatusChange) error {
	p, ok := v.st.projects[id]
	if !ok {
		return catalog.ErrNoRows
	}
	change.Apply(&p)
	p.ApprovedBy = copyString(p.ApprovedBy)
	p.RejectionReason = copyString(p.RejectionReason)
	v.st.projects[p.ID] = p
	return nil
}

// DeleteProject removes the project and cascades to its favorites and metrics
func (v *view) DeleteProject(_ context.Context, id string) (bool, error) {
	if _, ok := v.st.projects[id]; !ok {
		return false, nil
	}
	delete(v.st.projects, id)
	for key := range v.st.favorites {
		if key.projectID == id {
			delete(v.st.favorites, key)
		}
	}
	kept := v.st.metrics[:0:0]
	for _, m := range v.st.metrics {
		if m.ProjectID != id {
			kept = append(kept, m)
		}
	}
	v.st.metrics = kept
	return true, nil
}

func (v *view) IncrementViews(_ context.Context, id string, at time.Time) (*models.Project, error) {
	p, ok := v.st.projects[id]
	if !ok {
		return nil, catalog.ErrNoRows
	}
	p.Views++
	p.UpdatedAt = at
	v.st.projects[p.ID] = p
	out := v.withOwner(p)
	return &out, nil
}

func (v *view) AdjustFavorites(_ context.Context, id string, delta int, at time.Time) error {
	p, ok := v.st.projects[id]
	if !ok {
		return catalog.ErrNoRows
	}
	p.Favorites += int64(delta)
	p.UpdatedAt = at
	v.st.projects[p.ID] = p
	return nil
}

func (v *view) AddFavorite(_ context.Context, f *models.ProjectFavorite) (bool, error) {
	if _, ok := v.st.favorites[favoriteKey{userID: f.UserID, projectID: f.ProjectID}]; ok {
		return false, nil
	}
	p, ok := v.st.projects[f.ProjectID]
	if !ok {
		return false, catalog.ErrNoRows
	}
	stored := models.ProjectFavorite{
		UserID:    strings.Clone(f.UserID),
		ProjectID: p.ID,
		CreatedAt: f.CreatedAt,
	}
	v.st.favorites[favoriteKey{userID: stored.UserID, projectID: stored.ProjectID}] = stored
	return true, nil
}

func (v *view) RemoveFavorite(_ context.Context, userID, projectID string) (bool, error) {
	key := favoriteKey{userID: userID, projectID: projectID}
	if _, ok := v.st.favorites[key]; !ok {
		return false, nil
	}
	delete(v.st.favorites, key)
	return true, nil
}

func (v *view) HasFavorite(_ context.Context, userID, projectID string) (bool, error) {
	_, ok := v.st.favorites[favoriteKey{userID: userID, projectID: projectID}]
	return ok, nil
}

func (v *view) UpdateSnapshot(_ context.Context, id string, snap models.Snapshot, at time.Time) error {
	p, ok := v.st.projects[id]
	if !ok {
		return catalog.ErrNoRows
	}
	p.SwapVolume = snap.SwapVolume
	p.Liquidity = snap.Liquidity
	p.Holders = snap.Holders
	p.CurrentPrice = snap.Price
	p.UpdatedAt = at
	v.st.projects[p.ID] = p
	return nil
}

func (v *view) AppendMetric(_ context.Context, m *models.ProjectMetric) error {
	p, ok := v.st.projects[m.ProjectID]
	if !ok {
		return catalog.ErrNoRows
	}
	stored := *m
	stored.ID = strings.Clone(m.ID)
	stored.ProjectID = p.ID
	v.st.metrics = append(v.st.metrics, stored)
	return nil
}

func (v *view) ListMetrics(_ context.Context, projectID string, since time.Time) ([]models.ProjectMetric, error) {
	out := make([]models.ProjectMetric, 0)
	for _, m := range v.st.metrics {
		if m.ProjectID == projectID && !m.Date.Before(since) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}
