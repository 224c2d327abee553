package catalog

import (
	"context"
	"errors"
	"math"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/telemetry"
)

// Page is one page of a project listing
type Page struct {
	Projects   []models.Project `json:"projects"`
	Pagination Pagination       `json:"pagination"`
}

// Pagination describes the position of a Page within the full result
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// ListQuery is a listing request as received from a transport
type ListQuery struct {
	Status *models.ProjectStatus
	Search string
	Tag    string
	Page   int
	Limit  int
}

// Submit validates a listing, confirms the mint with the oracle and stores it as PENDING
func (s *Service) Submit(ctx context.Context, id Identity, form models.SubmissionForm) (*models.Project, error) {
	if err := requireWallet(id); err != nil {
		return nil, err
	}

	form = normalizeForm(form)
	if err := validateForm(form); err != nil {
		return nil, err
	}

	inUse, err := s.store.TokenInUse(ctx, form.TokenMint, form.TokenAddress)
	if err != nil {
		return nil, internal("check token uniqueness", err)
	}
	if inUse {
		return nil, conflict("Project with this token already exists")
	}

	info, err := s.lookupMint(ctx, form.TokenMint)
	if err != nil {
		return nil, err
	}

	now := s.now()
	project := &models.Project{
		ID:            s.newID(),
		Name:          form.Name,
		Symbol:        form.Symbol,
		Description:   form.Description,
		Website:       form.Website,
		Twitter:       form.Twitter,
		Telegram:      form.Telegram,
		Discord:       form.Discord,
		Github:        form.Github,
		LogoURL:       form.LogoURL,
		BannerURL:     form.BannerURL,
		Tags:          pq.StringArray(form.Tags),
		TokenAddress:  form.TokenAddress,
		TokenMint:     form.TokenMint,
		TokenDecimals: info.Decimals,
		TokenSupply:   info.Supply,
		Status:        models.StatusPending,
		SwapVolume:    decimal.Zero,
		Liquidity:     decimal.Zero,
		CurrentPrice:  decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var owner *models.User
	err = s.store.WithTx(ctx, func(tx Queries) error {
		user, err := s.ensureUser(ctx, tx, id.WalletAddress)
		if err != nil {
			return err
		}
		owner = user
		project.SubmittedBy = user.ID
		return tx.CreateProject(ctx, project)
	})
	if err != nil {
		return nil, classify("create project", err, projectNotFound)
	}

	project.Owner = &models.Owner{WalletAddress: owner.WalletAddress, Username: owner.Username}
	telemetry.ProjectsSubmitted.Inc()
	s.logger.WithFields(logrus.Fields{
		"project": project.ID,
		"mint":    project.TokenMint,
		"wallet":  id.WalletAddress,
	}).Info("Project submitted")
	return project, nil
}

func (s *Service) lookupMint(ctx context.Context, mint string) (*models.TokenInfo, error) {
	info, err := s.oracle.MintInfo(ctx, mint)
	switch {
	case err == nil:
		return info, nil
	case errors.Is(err, ErrUnknownMint):
		return nil, validationError("Invalid token mint address", map[string]string{
			"tokenMint": "is not a token mint",
		})
	case errors.Is(err, context.Canceled):
		return nil, err
	default:
		s.logger.WithError(err).WithField("mint", mint).Warn("Mint lookup failed")
		return nil, external("Failed to fetch token information", err)
	}
}

func (s *Service) ensureUser(ctx context.Context, q Queries, wallet string) (*models.User, error) {
	now := s.now()
	user, err := q.EnsureUser(ctx, &models.User{
		ID:            s.newID(),
		WalletAddress: wallet,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, internal("resolve user", err)
	}
	return user, nil
}

// EnsureUser returns the user row of a wallet, creating it on first sight
func (s *Service) EnsureUser(ctx context.Context, wallet string) (*models.User, error) {
	if wallet == "" {
		return nil, unauthorized("Authentication required")
	}
	return s.ensureUser(ctx, s.store, wallet)
}

// TransitionStatus moves a project to status. reason is only used for REJECTED.
func (s *Service) TransitionStatus(ctx context.Context, id Identity, projectID string, status models.ProjectStatus, reason string) (*models.Project, error) {
	if err := requireAdmin(id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, validationError("Invalid status", map[string]string{"status": "is not a known status"})
	}

	now := s.now()
	change := models.StatusChange{Status: status, UpdatedAt: now}
	switch {
	case status.StampsApproval():
		change.Approve = true
		change.ApprovedAt = now
		change.ApprovedBy = id.approver()
		change.ClearRejection = true
	case status == models.StatusRejected:
		if reason == "" {
			reason = models.DefaultRejectionReason
		}
		change.RejectionReason = &reason
	}

	var project *models.Project
	err := s.store.WithTx(ctx, func(tx Queries) error {
		if _, err := tx.GetProject(ctx, projectID); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, projectID, change); err != nil {
			return err
		}
		p, err := tx.GetProject(ctx, projectID)
		project = p
		return err
	})
	if err != nil {
		return nil, classify("update project status", err, projectNotFound)
	}

	telemetry.StatusTransitions.WithLabelValues(string(status)).Inc()
	s.logger.WithFields(logrus.Fields{
		"project": projectID,
		"status":  status,
		"admin":   id.approver(),
	}).Info("Project status changed")
	return project, nil
}

// Remove deletes a project together with its metrics and favorites
func (s *Service) Remove(ctx context.Context, id Identity, projectID string) error {
	if err := requireAdmin(id); err != nil {
		return err
	}
	if !id.IsSuperAdmin() {
		return forbidden("Insufficient permissions")
	}

	deleted, err := s.store.DeleteProject(ctx, projectID)
	if err != nil {
		return internal("delete project", err)
	}
	if !deleted {
		return notFound(projectNotFound)
	}

	s.logger.WithFields(logrus.Fields{
		"project": projectID,
		"admin":   id.approver(),
	}).Warn("Project deleted")
	return nil
}

// List returns one page of projects, newest first
func (s *Service) List(ctx context.Context, query ListQuery, defaultLimit int) (*Page, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := clampLimit(query.Limit, defaultLimit)

	if query.Status != nil && !query.Status.Valid() {
		return nil, validationError("Invalid status", map[string]string{"status": "is not a known status"})
	}

	projects, total, err := s.store.ListProjects(ctx, models.ProjectFilter{
		Status: query.Status,
		Search: query.Search,
		Tag:    query.Tag,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, internal("list projects", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}

	return &Page{
		Projects: projects,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: int64(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}

// GetByID returns a project and counts the read as one view
func (s *Service) GetByID(ctx context.Context, projectID string) (*models.Project, error) {
	project, err := s.store.IncrementViews(ctx, projectID, s.now())
	if err != nil {
		return nil, classify("load project", err, projectNotFound)
	}
	telemetry.ProjectViews.Inc()
	return project, nil
}

// GetByTokenMint looks a project up by its mint without counting a view
func (s *Service) GetByTokenMint(ctx context.Context, mint string) (*models.Project, error) {
	project, err := s.store.GetProjectByMint(ctx, mint)
	if err != nil {
		return nil, classify("load project", err, projectNotFound)
	}
	return project, nil
}

// Featured returns the newest FEATURED projects
func (s *Service) Featured(ctx context.Context, limit int) ([]models.Project, error) {
	status := models.StatusFeatured
	projects, _, err := s.store.ListProjects(ctx, models.ProjectFilter{
		Status: &status,
		Limit:  clampLimit(limit, DefaultFeaturedLimit),
	})
	if err != nil {
		return nil, internal("list featured projects", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}
