package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"discount-rules-service/internal/models"
)

type fakeStatsProvider struct {
	stats *models.ShopStats
	err   error
}

func (f *fakeStatsProvider) GetStats(ctx context.Context, shop string) (*models.ShopStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

func TestStatsHandler_GetStats(t *testing.T) {
	provider := &fakeStatsProvider{stats: &models.ShopStats{Shop: "shop", Evaluations: 10, DiscountedLines: 4}}
	handler := NewStatsHandler(provider, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/shops/shop/stats", nil)
	rec := httptest.NewRecorder()
	handler.GetStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats models.ShopStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if stats.Evaluations != 10 || stats.DiscountedLines != 4 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestStatsHandler_GetStats_BadPath(t *testing.T) {
	handler := NewStatsHandler(&fakeStatsProvider{}, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/shops/", nil)
	rec := httptest.NewRecorder()
	handler.GetStats(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
