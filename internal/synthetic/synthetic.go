// Package synthetic produces plausible placeholder series for when the
// upstream cannot be reached at all.
package synthetic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/fundboard/fundboard/internal/core"
)

const (
	// Years of yearly points per monetary series
	Years = 6
	// Months of earnings points
	Months = 12

	// maxJitter bounds the random deviation from the baseline
	maxJitter = 0.08
)

// DefaultNotice explains a synthetic snapshot when no better reason is known.
const DefaultNotice = "Simulated data: the upstream source could not be reached, values below are not real."

// baseline values for the first year, by series
type profile struct {
	netWorth, revenue, expenses, cash, netResult float64
}

var (
	fundProfile = profile{
		netWorth:  1.2e9,
		revenue:   1.4e8,
		expenses:  2.5e7,
		cash:      9.0e7,
		netResult: 1.1e8,
	}
	equityProfile = profile{
		netWorth:  4.0e10,
		revenue:   6.5e10,
		expenses:  4.8e10,
		cash:      1.2e10,
		netResult: 9.0e9,
	}
)

// Generator builds synthetic snapshots. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New creates a generator seeded from the clock.
func New() *Generator {
	now := uint64(time.Now().UnixNano())
	return NewWithSeed(now)
}

// NewWithSeed creates a generator with a fixed seed.
func NewWithSeed(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// IsRealEstateFund applies the syntactic fund rule: six characters ending
// in "11". It is independent of the search based classifier.
func IsRealEstateFund(ticker string) bool {
	return len(ticker) == 6 && strings.HasSuffix(ticker, "11")
}

// Generate returns a synthetic snapshot for ticker.
func (g *Generator) Generate(ticker string) *core.FinancialSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	category := core.CategoryEquity
	p := equityProfile
	if IsRealEstateFund(ticker) {
		category = core.CategoryRealEstateFund
		p = fundProfile
	}

	firstYear := now.Year() - Years + 1
	return &core.FinancialSnapshot{
		Ticker:      ticker,
		Category:    category,
		NetWorth:    g.yearly(firstYear, p.netWorth),
		Revenue:     g.yearly(firstYear, p.revenue),
		Expenses:    g.yearly(firstYear, p.expenses),
		Cash:        g.yearly(firstYear, p.cash),
		NetResult:   g.yearly(firstYear, p.netResult),
		Earnings:    g.monthly(now, category),
		IsSynthetic: true,
		Notice:      DefaultNotice,
		GeneratedAt: now,
	}
}

// yearly grows base by 4-12% a year and applies bounded jitter per point.
func (g *Generator) yearly(firstYear int, base float64) []core.SeriesPoint {
	growth := 1.04 + g.rng.Float64()*0.08
	points := make([]core.SeriesPoint, Years)
	for i := range points {
		baseline := base * math.Pow(growth, float64(i))
		points[i] = core.SeriesPoint{
			Label: fmt.Sprintf("%d", firstYear+i),
			Value: round2(baseline * g.jitter()),
		}
	}
	return points
}

// monthly emits one point per month ending at now. Funds pay small amounts
// every month; equities pay larger amounts at quarter ends only.
func (g *Generator) monthly(now time.Time, category core.AssetCategory) []core.EarningsPoint {
	start := time.Date(now.Year(), now.Month(), 15, 0, 0, 0, 0, time.UTC).AddDate(0, -(Months - 1), 0)

	points := make([]core.EarningsPoint, Months)
	payouts := 0
	for i := range points {
		day := start.AddDate(0, i, 0)
		point := core.EarningsPoint{Label: day.Format("02/01/2006")}

		switch {
		case category == core.CategoryRealEstateFund:
			point.Value = round2(0.07 + g.rng.Float64()*0.05)
			point.Kind = "Rendimento"
		case day.Month()%3 == 0:
			point.Value = round2(0.40 + g.rng.Float64()*0.80)
			if payouts%2 == 0 {
				point.Kind = "Dividendos"
			} else {
				point.Kind = "JCP"
			}
			payouts++
		}
		points[i] = point
	}
	return points
}

func (g *Generator) jitter() float64 {
	return 1 + (g.rng.Float64()*2-1)*maxJitter
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
