// Package classifier infers a ticker's asset category from the upstream's
// search results.
package classifier

import (
	"context"
	"net/url"
	"strings"

	"github.com/fundboard/fundboard/internal/core"
	"github.com/fundboard/fundboard/internal/logger"
	"github.com/fundboard/fundboard/internal/metrics"
	"github.com/fundboard/fundboard/internal/relay"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// SearchPath is the upstream's cross-category keyword search.
const SearchPath = "/api/search"

// markers are checked in order; the first one found in the result path wins.
var markers = []struct {
	substr   string
	category core.AssetCategory
}{
	{"/fiis/", core.CategoryRealEstateFund},
	{"/fiagros/", core.CategoryAgribusiness},
	{"/acoes/", core.CategoryEquity},
}

// resultPathFields are the fields that may hold a search hit's page link.
var resultPathFields = []string{"url", "path", "link"}

// Classifier resolves tickers to asset categories
type Classifier struct {
	fetcher relay.Fetcher
	baseURL string
	logger  *zap.Logger
	metrics *metrics.Registry
}

// New creates a classifier that searches under baseURL through fetcher.
func New(fetcher relay.Fetcher, baseURL string, log *zap.Logger, reg *metrics.Registry) *Classifier {
	return &Classifier{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.OrNop(log),
		metrics: reg,
	}
}

// SearchURL builds the search request for ticker.
func (c *Classifier) SearchURL(ticker string) string {
	return c.baseURL + SearchPath + "?q=" + url.QueryEscape(ticker)
}

// Classify never fails: a failed search, an empty result set or an
// unrecognized path all resolve to CategoryEquity.
func (c *Classifier) Classify(ctx context.Context, ticker string) core.AssetCategory {
	category := c.classify(ctx, ticker)
	c.metrics.RecordClassification(string(category))
	return category
}

func (c *Classifier) classify(ctx context.Context, ticker string) core.AssetCategory {
	resp := c.fetcher.Fetch(ctx, c.SearchURL(ticker))
	if !resp.OK() {
		c.logger.Debug("search failed, defaulting to equity",
			zap.String("ticker", ticker),
			zap.Error(resp.Err()),
		)
		return core.CategoryEquity
	}

	path := firstResultPath(resp.Body)
	if path == "" {
		c.logger.Debug("search returned no usable result", zap.String("ticker", ticker))
		return core.CategoryEquity
	}

	return CategoryFromPath(path)
}

// CategoryFromPath maps a result link to a category by marker precedence.
func CategoryFromPath(path string) core.AssetCategory {
	p := strings.ToLower(path)
	for _, m := range markers {
		if strings.Contains(p, m.substr) {
			return m.category
		}
	}
	return core.CategoryEquity
}

// firstResultPath reads results[0] from an object payload or [0] from an
// array payload and returns its first non-empty link field.
func firstResultPath(body []byte) string {
	doc := gjson.ParseBytes(body)

	var first gjson.Result
	switch {
	case doc.IsArray():
		first = doc.Get("0")
	case doc.IsObject():
		first = doc.Get("results.0")
	default:
		return ""
	}
	if !first.IsObject() {
		return ""
	}

	for _, field := range resultPathFields {
		if v := first.Get(field).String(); v != "" {
			return v
		}
	}
	return ""
}
