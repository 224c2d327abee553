package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrUnknownMint is returned by an Oracle when the address is not a token mint
var ErrUnknownMint = errors.New("account is not a token mint")

const (
	DefaultPublicLimit   = 20
	DefaultAdminLimit    = 50
	MaxLimit             = 100
	DefaultFeaturedLimit = 10
	DefaultTrendingLimit = 10
	DefaultMetricsDays   = 30
	MaxMetricsDays       = 365
	projectNotFound      = "Project not found"
)

// Service implements the project lifecycle, engagement counters, metrics ledger,
// trending ranker and favorite ledger on top of a Store.
type Service struct {
	store  Store
	oracle Oracle
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger used for lifecycle events
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator overrides how record ids are minted
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// NewService creates a new catalog service
func NewService(store Store, oracle Oracle, opts ...Option) *Service {
	s := &Service{
		store:  store,
		oracle: oracle,
		logger: logrus.StandardLogger(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
