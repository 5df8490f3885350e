package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
)

func TestChartService_CachesPerQuery(t *testing.T) {
	store := newFakeStore()
	charts := cache.NewLRUCache[any](10, time.Minute)
	svc := NewChartService(store, charts)
	ctx := context.Background()

	first, err := svc.ByCategory(ctx, 1, core.Filter{Category: " Mercado "})
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Category != "mercado" {
		t.Errorf("category should be trimmed and lower-cased, got %q", first[0].Category)
	}
	if _, err := svc.ByCategory(ctx, 1, core.Filter{Category: "mercado"}); err != nil {
		t.Fatal(err)
	}
	if store.sumCalls != 1 {
		t.Errorf("equivalent queries should hit the cache, store called %d times", store.sumCalls)
	}

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.ByCategory(ctx, 1, core.Filter{Category: "mercado", From: &from})
	svc.ByCategory(ctx, 2, core.Filter{Category: "mercado"})
	if store.sumCalls != 3 {
		t.Errorf("different ranges and users are cached apart, store called %d times", store.sumCalls)
	}

	charts.DeletePrefix(cache.UserPrefix(1))
	svc.ByCategory(ctx, 1, core.Filter{Category: "mercado"})
	if store.sumCalls != 4 {
		t.Errorf("invalidated entries should be reloaded, store called %d times", store.sumCalls)
	}
}

func TestChartService_InsightsIgnoresCategory(t *testing.T) {
	svc := NewChartService(newFakeStore(), nil)
	ins, err := svc.Insights(context.Background(), 1, core.Filter{Category: "mercado", Categories: []string{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	if *ins.TopCategory != "" {
		t.Errorf("insights must not filter by category, store saw %q", *ins.TopCategory)
	}
}

func TestChartService_ErrorsAreNotCached(t *testing.T) {
	store := newFakeStore()
	store.failOn = "aggregate"
	charts := cache.NewLRUCache[any](10, time.Minute)
	svc := NewChartService(store, charts)

	if _, err := svc.ByCategory(context.Background(), 1, core.Filter{}); !errors.Is(err, errFake) {
		t.Fatalf("expected store error, got %v", err)
	}
	if charts.Len() != 0 {
		t.Error("failed queries must not be cached")
	}
}
