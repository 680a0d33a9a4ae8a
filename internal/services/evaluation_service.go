package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"discount-rules-service/internal/config"
	"discount-rules-service/internal/database"
	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"
	"discount-rules-service/internal/redis"
	"discount-rules-service/internal/rules"
)

// evalCache кеширует сырой JSON правил магазина.
type evalCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// evalEvents публикует события оценки корзины.
type evalEvents interface {
	PublishCartEvaluated(shop, cartID string, discountCount int) error
}

// evalStats записывает счётчики использования движка.
type evalStats interface {
	RecordEvaluation(ctx context.Context, shop string, discountedLines int)
}

// EvaluationService отвечает на запрос оценки корзины: загружает сырой
// JSON правил (кеш, затем БД), прогоняет его через движок и возвращает
// инструкции по скидкам. Пустой результат — нормальный ответ.
type EvaluationService struct {
	db       *database.DB
	cache    evalCache
	stats    evalStats
	events   evalEvents
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewEvaluationService создаёт сервис оценки корзин.
func NewEvaluationService(db *database.DB, cache evalCache, stats evalStats, events evalEvents, log *logger.Logger, cfg *config.RulesConfig) *EvaluationService {
	return &EvaluationService{
		db:       db,
		cache:    cache,
		stats:    stats,
		events:   events,
		log:      log,
		cacheTTL: time.Duration(cfg.CacheTTLSeconds) * time.Second,
	}
}

// EvaluateCart вычисляет скидки для строк корзины.
func (s *EvaluationService) EvaluateCart(ctx context.Context, shop string, req *models.EvaluateCartRequest) (*models.EvaluateCartResponse, error) {
	raw, err := s.loadRawRules(ctx, shop)
	if err != nil {
		return nil, err
	}

	ruleList := rules.ParseRuleSet(raw)
	discounts := rules.SelectDiscounts(ruleList, req.Lines)
	if discounts == nil {
		discounts = []models.LineDiscount{}
	}

	if s.stats != nil {
		s.stats.RecordEvaluation(ctx, shop, len(discounts))
	}
	if s.events != nil {
		if err := s.events.PublishCartEvaluated(shop, req.CartID, len(discounts)); err != nil {
			s.log.WithError(err).WithField("shop", shop).Warn("Failed to publish cart evaluated event")
		}
	}

	s.log.WithFields(map[string]interface{}{
		"shop":      shop,
		"cart_id":   req.CartID,
		"lines":     len(req.Lines),
		"discounts": len(discounts),
	}).Debug("Cart evaluated")

	return &models.EvaluateCartResponse{
		CartID:    req.CartID,
		Discounts: discounts,
	}, nil
}

// loadRawRules возвращает сырой JSON правил магазина. Ошибки кеша
// деградируют до чтения из БД и никогда не валят запрос; отсутствие строки
// магазина означает пустой набор.
func (s *EvaluationService) loadRawRules(ctx context.Context, shop string) ([]byte, error) {
	key := redis.GenerateKey(redis.KeyPrefixRules, shop)

	if s.cache != nil {
		var cached string
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return []byte(cached), nil
		}
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT rules FROM shop_rules WHERE shop_domain = $1", shop).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
			s.log.WithError(err).WithField("shop", shop).Warn("Failed to cache rules")
		}
	}

	return raw, nil
}
