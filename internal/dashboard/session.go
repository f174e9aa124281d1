package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/fundboard/fundboard/internal/core"
)

// Session keeps the snapshot on display for one consumer. Only the most
// recent submission may replace it; older in-flight queries are canceled
// and their results dropped.
type Session struct {
	loader Loader

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *core.FinancialSnapshot
}

// NewSession creates a session backed by loader.
func NewSession(loader Loader) *Session {
	return &Session{loader: loader}
}

// Submit loads query and makes it the current snapshot. An empty query is
// rejected without touching the query in flight. A result that was
// superseded while loading is discarded with core.ErrStaleQuery.
func (s *Session) Submit(ctx context.Context, query string) (*core.FinancialSnapshot, error) {
	ticker, err := core.NormalizeTicker(query)
	if err != nil {
		return nil, err
	}

	ctx, gen, cancel := s.begin(ctx)
	defer cancel()

	snap, err := s.loader.Load(ctx, ticker)
	return s.finish(gen, ticker, snap, err)
}

// SubmitAsync is Submit without waiting: the query becomes the newest one
// before SubmitAsync returns, and done receives the outcome later.
func (s *Session) SubmitAsync(ctx context.Context, query string, done func(*core.FinancialSnapshot, error)) error {
	ticker, err := core.NormalizeTicker(query)
	if err != nil {
		return err
	}

	ctx, gen, cancel := s.begin(ctx)
	go func() {
		defer cancel()
		snap, err := s.loader.Load(ctx, ticker)
		done(s.finish(gen, ticker, snap, err))
	}()
	return nil
}

// Current returns the last accepted snapshot, or nil before the first one.
func (s *Session) Current() *core.FinancialSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// begin cancels the query in flight and claims the next generation.
func (s *Session) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.cancel = cancel
	return ctx, s.generation, cancel
}

func (s *Session) finish(gen uint64, ticker string, snap *core.FinancialSnapshot, err error) (*core.FinancialSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, core.WrapError(core.ErrStaleQuery, fmt.Errorf("result for %s dropped", ticker))
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.current = snap
	return snap, nil
}
