// Package aggregator fetches the six per-ticker series concurrently and
// decides whether the combined result is usable.
package aggregator

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/fundboard/fundboard/internal/logger"
	"github.com/fundboard/fundboard/internal/metrics"
	"github.com/fundboard/fundboard/internal/normalize"
	"github.com/fundboard/fundboard/internal/relay"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregation results as recorded in metrics
const (
	ResultComplete = "complete"
	ResultPartial  = "partial"
	ResultFailed   = "failed"
)

// Slots holds one raw payload per series; nil marks a failed or empty slot.
type Slots map[core.SeriesName][]byte

// Aggregator fans out the per-series requests for a ticker
type Aggregator struct {
	fetcher relay.Fetcher
	baseURL string
	logger  *zap.Logger
	metrics *metrics.Registry
	now     func() time.Time
}

// New creates an aggregator that requests endpoints under baseURL.
func New(fetcher relay.Fetcher, baseURL string, log *zap.Logger, reg *metrics.Registry) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.OrNop(log),
		metrics: reg,
		now:     time.Now,
	}
}

// EndpointURL builds the request for one series of ticker in category.
func (a *Aggregator) EndpointURL(category core.AssetCategory, series core.SeriesName, ticker string) string {
	return fmt.Sprintf("%s/api/%s/%s?ticker=%s",
		a.baseURL, category.PathSegment(), series, url.QueryEscape(ticker))
}

// Fetch issues all six requests at once and waits for every one of them.
// A failed request leaves its slot nil instead of aborting the batch.
func (a *Aggregator) Fetch(ctx context.Context, ticker string, category core.AssetCategory) Slots {
	payloads := make([][]byte, len(core.AllSeries))

	var g errgroup.Group
	for i, series := range core.AllSeries {
		target := a.EndpointURL(category, series, ticker)
		g.Go(func() error {
			resp := a.fetcher.Fetch(ctx, target)
			if !resp.OK() {
				a.logger.Debug("series unavailable",
					zap.String("ticker", ticker),
					zap.String("series", string(series)),
					zap.Error(resp.Err()),
				)
				return nil
			}
			payloads[i] = resp.Body
			return nil
		})
	}
	// tasks never return errors
	_ = g.Wait()

	slots := make(Slots, len(core.AllSeries))
	for i, series := range core.AllSeries {
		slots[series] = payloads[i]
	}
	return slots
}

// Usable counts the slots that carry data.
func (s Slots) Usable() int {
	n := 0
	for _, raw := range s {
		if !normalize.IsEmpty(raw) {
			n++
		}
	}
	return n
}

// Aggregate fetches and normalizes every series for ticker. When no slot
// carries data the upstream is treated as blocked and ErrAggregationFailed
// is returned; otherwise partial snapshots are accepted.
func (a *Aggregator) Aggregate(ctx context.Context, ticker string, category core.AssetCategory) (*core.FinancialSnapshot, error) {
	slots := a.Fetch(ctx, ticker, category)

	usable := slots.Usable()
	switch {
	case usable == 0:
		a.metrics.RecordAggregation(ResultFailed)
		a.logger.Warn("all upstream endpoints failed",
			zap.String("ticker", ticker),
			zap.String("category", string(category)),
		)
		return nil, core.WrapError(core.ErrAggregationFailed,
			fmt.Errorf("%d endpoints returned no data for %s", len(core.AllSeries), ticker))
	case usable < len(core.AllSeries):
		a.metrics.RecordAggregation(ResultPartial)
		a.logger.Info("partial upstream data",
			zap.String("ticker", ticker),
			zap.Int("usable", usable),
			zap.Int("total", len(core.AllSeries)),
		)
	default:
		a.metrics.RecordAggregation(ResultComplete)
	}

	return &core.FinancialSnapshot{
		Ticker:      ticker,
		Category:    category,
		NetWorth:    normalize.Series(slots[core.SeriesNetWorth]),
		Revenue:     normalize.Series(slots[core.SeriesRevenue]),
		Expenses:    normalize.Series(slots[core.SeriesExpenses]),
		Cash:        normalize.Series(slots[core.SeriesCash]),
		NetResult:   normalize.Series(slots[core.SeriesNetResult]),
		Earnings:    normalize.Earnings(slots[core.SeriesEarnings]),
		IsSynthetic: false,
		GeneratedAt: a.now(),
	}, nil
}
