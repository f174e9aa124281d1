// Package dashboard composes classification, aggregation and the synthetic
// fallback into one snapshot per ticker query.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/fundboard/fundboard/internal/logger"
	"github.com/fundboard/fundboard/internal/metrics"
	"go.uber.org/zap"
)

// Snapshot sources as recorded in metrics
const (
	SourceUpstream  = "upstream"
	SourceSynthetic = "synthetic"
)

// Classifier resolves a ticker to its category.
type Classifier interface {
	Classify(ctx context.Context, ticker string) core.AssetCategory
}

// Aggregator builds a snapshot from the upstream series endpoints.
type Aggregator interface {
	Aggregate(ctx context.Context, ticker string, category core.AssetCategory) (*core.FinancialSnapshot, error)
}

// Generator builds a synthetic snapshot.
type Generator interface {
	Generate(ticker string) *core.FinancialSnapshot
}

// Loader is implemented by Service; Session depends on it.
type Loader interface {
	Load(ctx context.Context, query string) (*core.FinancialSnapshot, error)
}

// Service runs the snapshot pipeline
type Service struct {
	classifier Classifier
	aggregator Aggregator
	generator  Generator
	logger     *zap.Logger
	metrics    *metrics.Registry
	timeout    time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithLoadTimeout bounds one Load from classification to fallback. When it
// expires the pending upstream calls fail and the synthetic snapshot is
// served, so the caller always gets an answer within d.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Service. log and reg may be nil.
func New(c Classifier, a Aggregator, g Generator, log *zap.Logger, reg *metrics.Registry, opts ...Option) *Service {
	s := &Service{
		classifier: c,
		aggregator: a,
		generator:  g,
		logger:     logger.OrNop(log),
		metrics:    reg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the snapshot for query. An empty query fails with
// core.ErrInvalidTicker before any request is made. When every upstream
// endpoint fails, or the load timeout expires first, the snapshot is
// synthetic and carries a notice. A canceled ctx returns its error instead.
func (s *Service) Load(ctx context.Context, query string) (*core.FinancialSnapshot, error) {
	ticker, err := core.NormalizeTicker(query)
	if err != nil {
		return nil, err
	}

	upstreamCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		upstreamCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	category := s.classifier.Classify(upstreamCtx, ticker)
	snap, err := s.aggregator.Aggregate(upstreamCtx, ticker, category)
	// only the caller's own cancellation suppresses the fallback
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	switch {
	case err == nil:
		s.metrics.RecordSnapshot(SourceUpstream)
		return snap, nil
	case errors.Is(err, core.ErrAggregationFailed):
		synth := s.generator.Generate(ticker)
		synth.Notice = Notice(err)
		s.metrics.RecordSnapshot(SourceSynthetic)
		s.logger.Warn("serving synthetic snapshot",
			zap.String("ticker", ticker),
			zap.String("category", string(category)),
			zap.Error(err),
		)
		return synth, nil
	default:
		return nil, fmt.Errorf("aggregating %s: %w", ticker, err)
	}
}

// Notice explains to the reader why a snapshot is simulated.
func Notice(cause error) string {
	reason := "the upstream source could not be reached"
	var e *core.Error
	if errors.As(cause, &e) && e.Cause != nil {
		reason = e.Cause.Error()
	}
	return fmt.Sprintf("Simulated data, not real figures: %s.", reason)
}
