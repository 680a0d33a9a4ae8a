package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractShopFromPath(t *testing.T) {
	tests := []struct {
		path       string
		wantShop   string
		wantSuffix string
		wantErr    bool
	}{
		{"/api/shops/shop.example.com/rules", "shop.example.com", "rules", false},
		{"/api/shops/shop.example.com/rules/d1", "shop.example.com", "rules/d1", false},
		{"/api/shops/shop.example.com/cart/evaluate", "shop.example.com", "cart/evaluate", false},
		{"/api/shops/shop.example.com", "shop.example.com", "", false},
		{"/api/shops/shop.example.com/", "shop.example.com", "", false},
		{"/api/shops/", "", "", true},
		{"/api/other/123", "", "", true},
	}

	for _, tt := range tests {
		shop, suffix, err := extractShopFromPath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("path %q: expected error", tt.path)
			}
			continue
		}
		if err != nil {
			t.Fatalf("path %q: unexpected error: %v", tt.path, err)
		}
		if shop != tt.wantShop || suffix != tt.wantSuffix {
			t.Fatalf("path %q: got (%q, %q), want (%q, %q)", tt.path, shop, suffix, tt.wantShop, tt.wantSuffix)
		}
	}
}

func TestWriteErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErrorResponse(rec, http.StatusBadRequest, "bad input")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %s", ct)
	}
}
