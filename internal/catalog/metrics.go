package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/telemetry"
)

// MetricsReport carries new market figures. A nil field keeps the current value.
type MetricsReport struct {
	SwapVolume *decimal.Decimal `json:"swapVolume"`
	Liquidity  *decimal.Decimal `json:"liquidity"`
	Holders    *int64           `json:"holders"`
	Price      *decimal.Decimal `json:"price"`
}

// Empty reports whether the report carries no figures at all
func (r MetricsReport) Empty() bool {
	return r.SwapVolume == nil && r.Liquidity == nil && r.Holders == nil && r.Price == nil
}

func (r MetricsReport) validate() error {
	fields := map[string]string{}
	check := func(name string, v *decimal.Decimal) {
		if v != nil && v.IsNegative() {
			fields[name] = "must not be negative"
		}
	}
	check("swapVolume", r.SwapVolume)
	check("liquidity", r.Liquidity)
	check("price", r.Price)
	if r.Holders != nil && *r.Holders < 0 {
		fields["holders"] = "must not be negative"
	}
	if len(fields) > 0 {
		return validationError("Validation failed", fields)
	}
	return nil
}

// merge overlays the report on the current snapshot
func (r MetricsReport) merge(current models.Snapshot) models.Snapshot {
	next := current
	if r.SwapVolume != nil {
		next.SwapVolume = *r.SwapVolume
	}
	if r.Liquidity != nil {
		next.Liquidity = *r.Liquidity
	}
	if r.Holders != nil {
		next.Holders = *r.Holders
	}
	if r.Price != nil {
		next.Price = *r.Price
	}
	return next
}

// CurrentMetrics is the live snapshot together with the engagement counters
type CurrentMetrics struct {
	SwapVolume decimal.Decimal `json:"swapVolume"`
	Liquidity  decimal.Decimal `json:"liquidity"`
	Holders    int64           `json:"holders"`
	Price      decimal.Decimal `json:"price"`
	Views      int64           `json:"views"`
	Favorites  int64           `json:"favorites"`
}

// ProjectMetrics identifies the project of a MetricsView
type ProjectMetrics struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CurrentMetrics CurrentMetrics `json:"currentMetrics"`
}

// MetricsView is a project's snapshot and its ledger for a time window
type MetricsView struct {
	Project    ProjectMetrics         `json:"project"`
	Historical []models.ProjectMetric `json:"historical"`
}

// ReportMetrics overwrites the project's snapshot and appends the same figures to its ledger
func (s *Service) ReportMetrics(ctx context.Context, id Identity, projectID string, report MetricsReport) (*models.ProjectMetric, error) {
	if !id.Authenticated() {
		return nil, unauthorized("Authentication required")
	}
	if !id.CanReportMetrics() {
		return nil, forbidden("Admin access required")
	}
	if err := report.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var metric *models.ProjectMetric
	err := s.store.WithTx(ctx, func(tx Queries) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}

		snap := report.merge(project.Snapshot())
		if err := tx.UpdateSnapshot(ctx, projectID, snap, now); err != nil {
			return err
		}

		metric = &models.ProjectMetric{
			ID:         s.newID(),
			ProjectID:  projectID,
			SwapVolume: snap.SwapVolume,
			Liquidity:  snap.Liquidity,
			Holders:    snap.Holders,
			Price:      snap.Price,
			Date:       now,
		}
		return tx.AppendMetric(ctx, metric)
	})
	if err != nil {
		return nil, classify("report metrics", err, projectNotFound)
	}

	telemetry.MetricReports.WithLabelValues(string(id.Role)).Inc()
	s.logger.WithFields(logrus.Fields{
		"project": projectID,
		"source":  id.Role,
	}).Debug("Metrics reported")
	return metric, nil
}

// GetMetrics returns the snapshot and the ledger entries of the last days, oldest first
func (s *Service) GetMetrics(ctx context.Context, projectID string, days int) (*MetricsView, error) {
	if days <= 0 {
		days = DefaultMetricsDays
	}
	if days > MaxMetricsDays {
		days = MaxMetricsDays
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, classify("load project", err, projectNotFound)
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	history, err := s.store.ListMetrics(ctx, projectID, since)
	if err != nil {
		return nil, internal("load metrics", err)
	}
	if history == nil {
		history = []models.ProjectMetric{}
	}

	return &MetricsView{
		Project: ProjectMetrics{
			ID:   project.ID,
			Name: project.Name,
			CurrentMetrics: CurrentMetrics{
				SwapVolume: project.SwapVolume,
				Liquidity:  project.Liquidity,
				Holders:    project.Holders,
				Price:      project.CurrentPrice,
				Views:      project.Views,
				Favorites:  project.Favorites,
			},
		},
		Historical: history,
	}, nil
}
