package services

import (
	"context"
	"database/sql"
	"testing"

	"discount-rules-service/internal/config"
	"discount-rules-service/internal/models"
	"discount-rules-service/internal/redis"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
)

func newTestRedisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := redis.Connect(&config.RedisConfig{Host: mr.Host(), Port: mr.Port()}, newTestLogger())
	if err != nil {
		t.Fatalf("failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

type fakeEvalStats struct {
	calls           int
	discountedLines int
}

func (f *fakeEvalStats) RecordEvaluation(ctx context.Context, shop string, discountedLines int) {
	f.calls++
	f.discountedLines = discountedLines
}

type fakeEvalEvents struct {
	published int
	lastCart  string
}

func (f *fakeEvalEvents) PublishCartEvaluated(shop, cartID string, discountCount int) error {
	f.published++
	f.lastCart = cartID
	return nil
}

func TestEvaluationService_EvaluateCart_FromDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	cache, _ := newTestRedisClient(t)

	stats := &fakeEvalStats{}
	events := &fakeEvalEvents{}
	service := NewEvaluationService(db, cache, stats, events, newTestLogger(), newTestRulesConfig())

	stored := `{"rules":[
		{"discountId":"d1","percentOff":10,"products":["P1"],"minQty":2},
		{"discountId":"d2","percentOff":25,"products":["P1"],"minQty":3}
	]}`
	mock.ExpectQuery("SELECT rules FROM shop_rules").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"rules"}).AddRow([]byte(stored)))

	req := &models.EvaluateCartRequest{
		CartID: "cart-1",
		Lines: []models.CartLine{
			{ID: "l1", Quantity: 3, ProductID: "P1"},
			{ID: "l2", Quantity: 2, ProductID: "P1"},
			{ID: "l3", Quantity: 5, ProductID: "P9"},
		},
	}
	resp, err := service.EvaluateCart(context.Background(), "shop", req)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	if len(resp.Discounts) != 2 {
		t.Fatalf("expected 2 discounts, got %+v", resp.Discounts)
	}
	if resp.Discounts[0].LineID != "l1" || resp.Discounts[0].PercentOff != 25 {
		t.Fatalf("line l1 must get the best eligible rule, got %+v", resp.Discounts[0])
	}
	if resp.Discounts[1].LineID != "l2" || resp.Discounts[1].PercentOff != 10 {
		t.Fatalf("line l2 must fall back to the lower threshold rule, got %+v", resp.Discounts[1])
	}

	if stats.calls != 1 || stats.discountedLines != 2 {
		t.Fatalf("expected stats to be recorded, got %+v", stats)
	}
	if events.published != 1 || events.lastCart != "cart-1" {
		t.Fatalf("expected cart evaluated event, got %+v", events)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEvaluationService_EvaluateCart_CacheHitSkipsDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	cache, _ := newTestRedisClient(t)

	service := NewEvaluationService(db, cache, nil, nil, newTestLogger(), newTestRulesConfig())

	stored := `{"rules":[{"discountId":"d1","percentOff":10,"products":["P1"],"minQty":2}]}`
	key := redis.GenerateKey(redis.KeyPrefixRules, "shop")
	if err := cache.Set(context.Background(), key, stored, 0); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	req := &models.EvaluateCartRequest{
		CartID: "cart-2",
		Lines:  []models.CartLine{{ID: "l1", Quantity: 2, ProductID: "P1"}},
	}
	resp, err := service.EvaluateCart(context.Background(), "shop", req)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if len(resp.Discounts) != 1 || resp.Discounts[0].PercentOff != 10 {
		t.Fatalf("unexpected discounts: %+v", resp.Discounts)
	}

	// БД не должна была участвовать.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("database was queried on cache hit: %v", err)
	}
}

func TestEvaluationService_EvaluateCart_PopulatesCache(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()
	cache, _ := newTestRedisClient(t)

	service := NewEvaluationService(db, cache, nil, nil, newTestLogger(), newTestRulesConfig())

	stored := `{"rules":[{"discountId":"d1","percentOff":10,"products":["P1"],"minQty":2}]}`
	mock.ExpectQuery("SELECT rules FROM shop_rules").
		WillReturnRows(sqlmock.NewRows([]string{"rules"}).AddRow([]byte(stored)))

	req := &models.EvaluateCartRequest{Lines: []models.CartLine{{ID: "l1", Quantity: 2, ProductID: "P1"}}}
	if _, err := service.EvaluateCart(context.Background(), "shop", req); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	var cached string
	key := redis.GenerateKey(redis.KeyPrefixRules, "shop")
	if err := cache.Get(context.Background(), key, &cached); err != nil {
		t.Fatalf("expected rules in cache: %v", err)
	}
	if cached != stored {
		t.Fatalf("cached payload mismatch: %s", cached)
	}

	// Второй запрос обслуживается из кеша.
	req2 := &models.EvaluateCartRequest{Lines: []models.CartLine{{ID: "l2", Quantity: 2, ProductID: "P1"}}}
	resp, err := service.EvaluateCart(context.Background(), "shop", req2)
	if err != nil {
		t.Fatalf("second evaluate failed: %v", err)
	}
	if len(resp.Discounts) != 1 {
		t.Fatalf("unexpected discounts from cache: %+v", resp.Discounts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEvaluationService_EvaluateCart_UnknownShop(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewEvaluationService(db, nil, nil, nil, newTestLogger(), newTestRulesConfig())

	mock.ExpectQuery("SELECT rules FROM shop_rules").
		WillReturnError(sql.ErrNoRows)

	req := &models.EvaluateCartRequest{
		CartID: "cart-3",
		Lines:  []models.CartLine{{ID: "l1", Quantity: 10, ProductID: "P1"}},
	}
	resp, err := service.EvaluateCart(context.Background(), "shop", req)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if resp.CartID != "cart-3" || resp.Discounts == nil || len(resp.Discounts) != 0 {
		t.Fatalf("expected empty discount list, got %+v", resp)
	}
}

func TestEvaluationService_EvaluateCart_MalformedStoredRules(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewEvaluationService(db, nil, nil, nil, newTestLogger(), newTestRulesConfig())

	mock.ExpectQuery("SELECT rules FROM shop_rules").
		WillReturnRows(sqlmock.NewRows([]string{"rules"}).AddRow([]byte(`{"broken`)))

	req := &models.EvaluateCartRequest{Lines: []models.CartLine{{ID: "l1", Quantity: 2, ProductID: "P1"}}}
	resp, err := service.EvaluateCart(context.Background(), "shop", req)
	if err != nil {
		t.Fatalf("malformed rules must not fail evaluation: %v", err)
	}
	if len(resp.Discounts) != 0 {
		t.Fatalf("expected no discounts, got %+v", resp.Discounts)
	}
}

func TestEvaluationService_EvaluateCart_DatabaseError(t *testing.T) {
	db, mock := newMockDB(t)
	defer db.Close()

	service := NewEvaluationService(db, nil, nil, nil, newTestLogger(), newTestRulesConfig())

	mock.ExpectQuery("SELECT rules FROM shop_rules").
		WillReturnError(sql.ErrConnDone)

	req := &models.EvaluateCartRequest{Lines: []models.CartLine{{ID: "l1", Quantity: 2, ProductID: "P1"}}}
	if _, err := service.EvaluateCart(context.Background(), "shop", req); err == nil {
		t.Fatal("expected error on database failure")
	}
}
