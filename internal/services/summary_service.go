package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"debtflow/internal/cache"
	"debtflow/internal/core"
	"debtflow/internal/ledger"
)

const summaryCacheKey = "debt_summary"

// SummaryService serves the aggregated debt snapshot, caching it between
// mutations so dashboard polling does not hit storage on every swap.
type SummaryService struct {
	reader ledger.SummaryReader
	cache  cache.Cache[core.DebtSummary]
	window time.Duration
}

func NewSummaryService(reader ledger.SummaryReader, c cache.Cache[core.DebtSummary], window time.Duration) *SummaryService {
	return &SummaryService{
		reader: reader,
		cache:  c,
		window: window,
	}
}

// Get returns the current debt summary, from cache when possible.
func (s *SummaryService) Get(ctx context.Context, now time.Time) (core.DebtSummary, error) {
	if summary, ok := s.cache.Get(summaryCacheKey); ok {
		slog.DebugContext(ctx, "Debt summary served from cache")
		return summary, nil
	}

	summary, err := s.reader.ReadDebtSummary(ctx, now, s.window)
	if err != nil {
		return core.DebtSummary{}, fmt.Errorf("read debt summary: %w", err)
	}

	s.cache.Set(summaryCacheKey, summary)
	return summary, nil
}

// Invalidate drops the cached summary. Called after every mutation so the
// next dashboard refresh sees fresh numbers.
func (s *SummaryService) Invalidate() {
	s.cache.Delete(summaryCacheKey)
}

// Window returns the configured upcoming-payment window.
func (s *SummaryService) Window() time.Duration {
	return s.window
}
