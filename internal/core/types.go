package core

import (
	"strings"
	"time"
)

// AssetCategory represents the kind of listed asset a ticker refers to
type AssetCategory string

const (
	CategoryEquity         AssetCategory = "equity"
	CategoryRealEstateFund AssetCategory = "real_estate_fund"
	CategoryAgribusiness   AssetCategory = "agribusiness"
)

// PathSegment returns the upstream URL segment that scopes data endpoints
// to this category. Unknown values fall back to equities.
func (c AssetCategory) PathSegment() string {
	switch c {
	case CategoryRealEstateFund:
		return "fiis"
	case CategoryAgribusiness:
		return "fiagros"
	default:
		return "acoes"
	}
}

// IsValid checks if the category is one of the known values
func (c AssetCategory) IsValid() bool {
	switch c {
	case CategoryEquity, CategoryRealEstateFund, CategoryAgribusiness:
		return true
	}
	return false
}

// NormalizeTicker trims and uppercases a user supplied symbol.
// An empty result is rejected with ErrInvalidTicker.
func NormalizeTicker(query string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(query))
	if t == "" {
		return "", ErrInvalidTicker
	}
	return t, nil
}

// SeriesName identifies one of the six per-ticker series
type SeriesName string

const (
	SeriesNetWorth  SeriesName = "net-worth"
	SeriesRevenue   SeriesName = "revenue"
	SeriesExpenses  SeriesName = "expenses"
	SeriesCash      SeriesName = "cash"
	SeriesNetResult SeriesName = "net-result"
	SeriesEarnings  SeriesName = "earnings"
)

// AllSeries lists the series in the order the dashboard requests them
var AllSeries = []SeriesName{
	SeriesNetWorth,
	SeriesRevenue,
	SeriesExpenses,
	SeriesCash,
	SeriesNetResult,
	SeriesEarnings,
}

// SeriesPoint is a single chart point
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// EarningsPoint is a single payout event
type EarningsPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Kind  string  `json:"type"`
}

// FinancialSnapshot is the per-ticker result handed to the presentation layer.
// A snapshot is built once per query and never mutated afterwards.
type FinancialSnapshot struct {
	Ticker      string          `json:"ticker"`
	Category    AssetCategory   `json:"category"`
	NetWorth    []SeriesPoint   `json:"netWorth"`
	Revenue     []SeriesPoint   `json:"revenue"`
	Expenses    []SeriesPoint   `json:"expenses"`
	Cash        []SeriesPoint   `json:"cash"`
	NetResult   []SeriesPoint   `json:"netResult"`
	Earnings    []EarningsPoint `json:"earnings"`
	IsSynthetic bool            `json:"isSynthetic"`
	Notice      string          `json:"notice,omitempty"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

// Monetary returns the five monetary series keyed by name
func (s *FinancialSnapshot) Monetary() map[SeriesName][]SeriesPoint {
	return map[SeriesName][]SeriesPoint{
		SeriesNetWorth:  s.NetWorth,
		SeriesRevenue:   s.Revenue,
		SeriesExpenses:  s.Expenses,
		SeriesCash:      s.Cash,
		SeriesNetResult: s.NetResult,
	}
}
