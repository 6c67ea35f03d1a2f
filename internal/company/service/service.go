// Package service implements company reconciliation: bulk, idempotent
// creation of company records keyed by normalized domain, with best-effort
// enrichment from an external profile API.
package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	companymetrics "orgbook/internal/company/metrics"
	"orgbook/internal/company/models"
	"orgbook/internal/enrichment"

	id "orgbook/pkg/domain"
)

// CompanyStore persists company records. Domains passed to FindByDomains are
// normalized; implementations must match against the normalized form of their
// stored values.
type CompanyStore interface {
	FindByDomains(ctx context.Context, workspaceID id.WorkspaceID, domains []string) ([]*models.Company, error)
	MaxPosition(ctx context.Context, workspaceID id.WorkspaceID) (int64, error)
	BulkCreate(ctx context.Context, companies []*models.Company) ([]*models.Company, error)
}

// BatchNotifier announces newly created companies to interested observers.
// Delivery is fire-and-forget; errors are logged and never affect the result.
type BatchNotifier interface {
	CompanyBatchCreated(ctx context.Context, event models.CompanyBatchCreated) error
}

// Service orchestrates company reconciliation for a workspace.
type Service struct {
	store       CompanyStore
	lookup      enrichment.Lookup
	notifier    BatchNotifier
	logger      *slog.Logger
	metrics     *companymetrics.Metrics
	tracer      trace.Tracer
	maxInFlight int
}

// Option configures the Service.
type Option func(*Service)

// WithLookup enables best-effort enrichment of new companies.
func WithLookup(lookup enrichment.Lookup) Option {
	return func(s *Service) {
		s.lookup = lookup
	}
}

// WithNotifier sets the batch-created event sink.
func WithNotifier(n BatchNotifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *companymetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxInFlightLookups caps concurrent enrichment calls per batch.
func WithMaxInFlightLookups(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxInFlight = n
		}
	}
}

// New constructs a reconciliation service around a company store.
func New(store CompanyStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		tracer:      otel.Tracer("orgbook/company"),
		maxInFlight: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logDebug(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.DebugContext(ctx, msg, args...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, args ...any) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, msg, args...)
	}
}
