package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/log"
)

// Chart kinds, used as cache key segments.
const (
	chartCategory = "categoria"
	chartMonthly  = "geral"
	chartInsights = "insights"
)

// ChartService serves the aggregation queries through a per-user cache.
// Aggregations filter on one exact category label, unlike listings.
type ChartService struct {
	store AggregateStore
	cache cache.Cache[any]
}

// NewChartService returns a ChartService. A nil cache disables caching.
func NewChartService(store AggregateStore, c cache.Cache[any]) *ChartService {
	return &ChartService{store: store, cache: c}
}

func (s *ChartService) ByCategory(ctx context.Context, userID int64, f core.Filter) ([]core.CategoryTotal, error) {
	f = aggregateFilter(userID, f, true)
	return cached(ctx, s.cache, chartKey(chartCategory, f), func() ([]core.CategoryTotal, error) {
		return s.store.SumByCategory(ctx, f)
	})
}

func (s *ChartService) ByMonth(ctx context.Context, userID int64, f core.Filter) (core.MonthlySummary, error) {
	f = aggregateFilter(userID, f, true)
	return cached(ctx, s.cache, chartKey(chartMonthly, f), func() (core.MonthlySummary, error) {
		return s.store.SumByMonth(ctx, f)
	})
}

// Insights ignores any category in f.
func (s *ChartService) Insights(ctx context.Context, userID int64, f core.Filter) (core.Insights, error) {
	f = aggregateFilter(userID, f, false)
	return cached(ctx, s.cache, chartKey(chartInsights, f), func() (core.Insights, error) {
		return s.store.Insights(ctx, f)
	})
}

// aggregateFilter keeps only the clauses the charts accept: the date range
// and, when allowed, the exact category.
func aggregateFilter(userID int64, f core.Filter, withCategory bool) core.Filter {
	out := core.Filter{UserID: userID, From: f.From, To: f.To}
	if withCategory {
		out.Category = strings.ToLower(strings.TrimSpace(f.Category))
	}
	return out
}

func chartKey(kind string, f core.Filter) string {
	return cache.Key(f.UserID, kind, f.Category, formatBound(f.From), formatBound(f.To))
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(core.DateLayout)
}

func cached[T any](ctx context.Context, c cache.Cache[any], key string, load func() (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			if out, ok := v.(T); ok {
				return out, nil
			}
		}
	}
	out, err := load()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("aggregate: %w", err)
	}
	if c != nil {
		c.Set(key, out)
		log.FromContext(ctx).DebugContext(ctx, "Chart cached", "key", key)
	}
	return out, nil
}
