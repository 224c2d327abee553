package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

// Reporter resolves a mint to its project and records a metrics report
type Reporter interface {
	GetByTokenMint(ctx context.Context, mint string) (*models.Project, error)
	ReportMetrics(ctx context.Context, id catalog.Identity, projectID string, report catalog.MetricsReport) (*models.ProjectMetric, error)
}

// Update is a metrics report addressed by token mint
type Update struct {
	TokenMint string
	Report    catalog.MetricsReport
}

// Worker applies feed updates one at a time. Updates for a mint that is
// already queued replace the queued report instead of adding a job.
type Worker struct {
	reporter Reporter
	identity catalog.Identity
	logger   logrus.FieldLogger

	jobs    chan string
	mu      sync.Mutex
	pending map[string]catalog.MetricsReport
	done    chan struct{}
}

// New creates a worker with a job buffer of 100 mints
func New(reporter Reporter, identity catalog.Identity, logger logrus.FieldLogger) *Worker {
	return &Worker{
		reporter: reporter,
		identity: identity,
		logger:   logger,
		jobs:     make(chan string, 100),
		pending:  make(map[string]catalog.MetricsReport),
		done:     make(chan struct{}),
	}
}

// Start processes jobs in a separate goroutine until ctx is cancelled
func (w *Worker) Start(ctx context.Context) {
	go w.process(ctx)
}

// Done is closed once the processing loop has returned
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// AddJob queues u. It returns false when u was merged into a queued job
// or carries no mint.
func (w *Worker) AddJob(u Update) bool {
	if u.TokenMint == "" {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, queued := w.pending[u.TokenMint]; queued {
		w.pending[u.TokenMint] = u.Report
		return false
	}
	select {
	case w.jobs <- u.TokenMint:
		w.pending[u.TokenMint] = u.Report
		return true
	case <-w.done:
		return false
	}
}

func (w *Worker) take(mint string) (catalog.MetricsReport, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	report, ok := w.pending[mint]
	delete(w.pending, mint)
	return report, ok
}

func (w *Worker) process(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case mint := <-w.jobs:
			report, ok := w.take(mint)
			if !ok {
				continue
			}
			if err := w.apply(ctx, mint, report); err != nil {
				w.logger.WithError(err).WithField("tokenMint", mint).Warn("Failed to apply metrics update")
			}
		}
	}
}

func (w *Worker) apply(ctx context.Context, mint string, report catalog.MetricsReport) error {
	project, err := w.reporter.GetByTokenMint(ctx, mint)
	if err != nil {
		if catalog.IsKind(err, catalog.KindNotFound) {
			w.logger.WithField("tokenMint", mint).Debug("Ignoring metrics for unlisted mint")
			return nil
		}
		return err
	}
	if _, err := w.reporter.ReportMetrics(ctx, w.identity, project.ID, report); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	w.logger.WithFields(logrus.Fields{
		"tokenMint": mint,
		"projectId": project.ID,
	}).Debug("Applied metrics update")
	return nil
}
