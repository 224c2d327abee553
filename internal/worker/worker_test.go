package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/catalog"
	"launchpad/internal/models"
)

type call struct {
	projectID string
	report    catalog.MetricsReport
	identity  catalog.Identity
}

type fakeReporter struct {
	mu      sync.Mutex
	calls   []call
	block   chan struct{}
	unknown map[string]bool
}

func (f *fakeReporter) GetByTokenMint(_ context.Context, mint string) (*models.Project, error) {
	if f.unknown[mint] {
		return nil, &catalog.Error{Kind: catalog.KindNotFound, Message: "Project not found"}
	}
	return &models.Project{ID: "project-" + mint, TokenMint: mint}, nil
}

func (f *fakeReporter) ReportMetrics(_ context.Context, id catalog.Identity, projectID string, report catalog.MetricsReport) (*models.ProjectMetric, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{projectID: projectID, report: report, identity: id})
	if projectID == "project-broken" {
		return nil, errors.New("boom")
	}
	return &models.ProjectMetric{ProjectID: projectID}, nil
}

func (f *fakeReporter) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func volume(v int64) catalog.MetricsReport {
	d := decimal.NewFromInt(v)
	return catalog.MetricsReport{SwapVolume: &d}
}

func TestWorkerAppliesUpdates(t *testing.T) {
	rep := &fakeReporter{unknown: map[string]bool{"ghost": true}}
	logger, _ := logtest.NewNullLogger()
	id := catalog.ReporterIdentity("feed")
	w := New(rep, id, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	assert.False(t, w.AddJob(Update{}))
	assert.True(t, w.AddJob(Update{TokenMint: "ghost", Report: volume(1)}))
	assert.True(t, w.AddJob(Update{TokenMint: "broken", Report: volume(2)}))
	assert.True(t, w.AddJob(Update{TokenMint: "mint-a", Report: volume(3)}))

	require.Eventually(t, func() bool { return len(rep.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	calls := rep.snapshot()
	assert.Equal(t, "project-broken", calls[0].projectID)
	assert.Equal(t, "project-mint-a", calls[1].projectID)
	assert.Equal(t, id, calls[1].identity)
}

func TestWorkerCoalescesQueuedMint(t *testing.T) {
	rep := &fakeReporter{block: make(chan struct{})}
	logger, _ := logtest.NewNullLogger()
	w := New(rep, catalog.ReporterIdentity("feed"), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// The first job is taken and blocks in ReportMetrics
	require.True(t, w.AddJob(Update{TokenMint: "busy", Report: volume(1)}))
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.pending) == 0
	}, time.Second, time.Millisecond)

	assert.True(t, w.AddJob(Update{TokenMint: "mint-a", Report: volume(10)}))
	assert.False(t, w.AddJob(Update{TokenMint: "mint-a", Report: volume(20)}))
	assert.False(t, w.AddJob(Update{TokenMint: "mint-a", Report: volume(30)}))
	close(rep.block)

	require.Eventually(t, func() bool { return len(rep.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	calls := rep.snapshot()
	assert.Equal(t, "project-mint-a", calls[1].projectID)
	assert.True(t, decimal.NewFromInt(30).Equal(*calls[1].report.SwapVolume))

	cancel()
	<-w.Done()
	assert.False(t, w.AddJob(Update{TokenMint: "late", Report: volume(1)}))
}
