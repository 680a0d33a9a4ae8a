package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"discount-rules-service/internal/apperror"
	"discount-rules-service/internal/config"
	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "debug", Format: "json"})
}

type fakeRuleService struct {
	set       *models.RuleSet
	list      []models.Rule
	err       error
	lastShop  string
	deletedID string
}

func (f *fakeRuleService) UpsertRule(ctx context.Context, shop string, req *models.UpsertRuleRequest) (*models.RuleSet, error) {
	f.lastShop = shop
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func (f *fakeRuleService) DeleteRule(ctx context.Context, shop, discountID string) error {
	f.lastShop = shop
	f.deletedID = discountID
	return f.err
}

func (f *fakeRuleService) ListRules(ctx context.Context, shop string) ([]models.Rule, error) {
	f.lastShop = shop
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func TestRulesHandler_ListRules(t *testing.T) {
	svc := &fakeRuleService{list: []models.Rule{{DiscountID: "d1", PercentOff: 10, Products: []string{"P1"}, MinQty: 2}}}
	handler := NewRulesHandler(svc, newTestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/shops/shop.example.com/rules", nil)
	rec := httptest.NewRecorder()
	handler.ListRules(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastShop != "shop.example.com" {
		t.Fatalf("shop not extracted: %q", svc.lastShop)
	}

	var set models.RuleSet
	if err := json.Unmarshal(rec.Body.Bytes(), &set); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(set.Rules) != 1 || set.Rules[0].DiscountID != "d1" {
		t.Fatalf("unexpected rule set: %+v", set)
	}
}

func TestRulesHandler_UpsertRule(t *testing.T) {
	svc := &fakeRuleService{set: &models.RuleSet{Rules: []models.Rule{{DiscountID: "d1"}}}}
	handler := NewRulesHandler(svc, newTestLogger())

	body, _ := json.Marshal(models.UpsertRuleRequest{
		DiscountID: "d1",
		Title:      "Bulk",
		PercentOff: 15,
		Products:   []string{"P1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/shops/shop.example.com/rules", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpsertRule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRulesHandler_UpsertRule_InvalidBody(t *testing.T) {
	handler := NewRulesHandler(&fakeRuleService{}, newTestLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/shops/shop/rules", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	handler.UpsertRule(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRulesHandler_UpsertRule_ValidationError(t *testing.T) {
	svc := &fakeRuleService{err: apperror.Validation("percent must be between 1 and 80", nil)}
	handler := NewRulesHandler(svc, newTestLogger())

	body, _ := json.Marshal(models.UpsertRuleRequest{Title: "T", PercentOff: 99, Products: []string{"P1"}})
	req := httptest.NewRequest(http.MethodPost, "/api/shops/shop/rules", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.UpsertRule(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRulesHandler_DeleteRule(t *testing.T) {
	svc := &fakeRuleService{}
	handler := NewRulesHandler(svc, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/shops/shop.example.com/rules/d1", nil)
	rec := httptest.NewRecorder()
	handler.DeleteRule(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.deletedID != "d1" {
		t.Fatalf("discount id not extracted: %q", svc.deletedID)
	}
}

func TestRulesHandler_DeleteRule_NotFound(t *testing.T) {
	svc := &fakeRuleService{err: apperror.NotFound("rule not found", nil)}
	handler := NewRulesHandler(svc, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/shops/shop/rules/missing", nil)
	rec := httptest.NewRecorder()
	handler.DeleteRule(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRulesHandler_DeleteRule_MissingID(t *testing.T) {
	handler := NewRulesHandler(&fakeRuleService{}, newTestLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/shops/shop/rules", nil)
	rec := httptest.NewRecorder()
	handler.DeleteRule(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRulesHandler_MethodNotAllowed(t *testing.T) {
	handler := NewRulesHandler(&fakeRuleService{}, newTestLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/shops/shop/rules", nil)
	rec := httptest.NewRecorder()
	handler.ListRules(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
