package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"discount-rules-service/internal/apperror"
	"discount-rules-service/internal/config"
	"discount-rules-service/internal/database"
	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"
	"discount-rules-service/internal/redis"
	"discount-rules-service/internal/rules"
)

// ruleCache инвалидирует кеш правил магазина.
type ruleCache interface {
	Delete(ctx context.Context, key string) error
}

// ruleEvents публикует события изменения правил.
type ruleEvents interface {
	PublishRulesUpdated(shop, discountID string, ruleCount int) error
	PublishRuleDeleted(shop, discountID string) error
}

// RuleService управляет набором правил скидок магазина: валидация
// админ-запросов и слияние изменений в общий JSON-набор.
type RuleService struct {
	db     *database.DB
	cache  ruleCache
	events ruleEvents
	log    *logger.Logger
	cfg    *config.RulesConfig
}

// NewRuleService создаёт сервис правил.
func NewRuleService(db *database.DB, cache ruleCache, events ruleEvents, log *logger.Logger, cfg *config.RulesConfig) *RuleService {
	return &RuleService{
		db:     db,
		cache:  cache,
		events: events,
		log:    log,
		cfg:    cfg,
	}
}

// UpsertRule валидирует правило из админки и вливает его в набор магазина.
// Запись идёт циклом "прочитать-слить-записать" под блокировкой строки:
// набор общий для всех скидок магазина, слепая перезапись уничтожила бы
// правила соседних скидок. Если DiscountID ещё неизвестен (скидка на
// платформе не создана), правило добавляется без вытеснения; вызывающая
// сторона обязана повторить upsert после получения идентификатора.
func (s *RuleService) UpsertRule(ctx context.Context, shop string, req *models.UpsertRuleRequest) (*models.RuleSet, error) {
	if err := validateRulePayload(req, s.cfg); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	rule := models.Rule{
		DiscountID: strings.TrimSpace(req.DiscountID),
		PercentOff: req.PercentOff,
		Products:   normalizeProducts(req.Products),
		MinQty:     s.cfg.MinQtyFloor,
	}

	merged, err := s.updateRules(ctx, shop, func(existing []models.Rule) ([]models.Rule, error) {
		return rules.Reconcile(existing, rule), nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, shop)
	if s.events != nil {
		if err := s.events.PublishRulesUpdated(shop, rule.DiscountID, len(merged)); err != nil {
			s.log.WithError(err).WithField("shop", shop).Warn("Failed to publish rules updated event")
		}
	}

	s.log.WithFields(map[string]interface{}{
		"shop":        shop,
		"discount_id": rule.DiscountID,
		"rule_count":  len(merged),
	}).Info("Rule upserted")

	return &models.RuleSet{Rules: merged}, nil
}

// DeleteRule удаляет правило по идентификатору скидки.
func (s *RuleService) DeleteRule(ctx context.Context, shop, discountID string) error {
	if strings.TrimSpace(discountID) == "" {
		return apperror.Validation("discount id is required", nil)
	}

	_, err := s.updateRules(ctx, shop, func(existing []models.Rule) ([]models.Rule, error) {
		kept, removed := rules.Remove(existing, discountID)
		if !removed {
			return nil, apperror.NotFound("rule not found", nil)
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	s.invalidateCache(ctx, shop)
	if s.events != nil {
		if err := s.events.PublishRuleDeleted(shop, discountID); err != nil {
			s.log.WithError(err).WithField("shop", shop).Warn("Failed to publish rule deleted event")
		}
	}

	s.log.WithFields(map[string]interface{}{
		"shop":        shop,
		"discount_id": discountID,
	}).Info("Rule deleted")

	return nil
}

// ListRules возвращает распарсенный набор правил магазина. Значения вне
// границ [1,80] не отфильтровываются: админка должна показывать и
// легаси-правила, которые движок оценки игнорирует.
func (s *RuleService) ListRules(ctx context.Context, shop string) ([]models.Rule, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT rules FROM shop_rules WHERE shop_domain = $1", shop).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.Rule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	parsed := rules.ParseRuleSet(raw)
	if parsed == nil {
		parsed = []models.Rule{}
	}
	return parsed, nil
}

// updateRules выполняет цикл "прочитать-слить-записать" в транзакции под
// SELECT ... FOR UPDATE: конкурирующие правки набора одного магазина
// сериализуются базой данных.
func (s *RuleService) updateRules(ctx context.Context, shop string, mutate func([]models.Rule) ([]models.Rule, error)) ([]models.Rule, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.QueryRowContext(ctx, "SELECT rules FROM shop_rules WHERE shop_domain = $1 FOR UPDATE", shop).Scan(&raw)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	updated, err := mutate(rules.ParseRuleSet(raw))
	if err != nil {
		return nil, err
	}

	data, err := rules.MarshalRuleSet(updated)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rules: %w", err)
	}

	query := `
		INSERT INTO shop_rules (shop_domain, rules, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (shop_domain) DO UPDATE SET rules = EXCLUDED.rules, updated_at = EXCLUDED.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, shop, data, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to save rules: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rules update: %w", err)
	}

	return updated, nil
}

func (s *RuleService) invalidateCache(ctx context.Context, shop string) {
	if s.cache == nil {
		return
	}
	key := redis.GenerateKey(redis.KeyPrefixRules, shop)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.log.WithError(err).WithField("shop", shop).Warn("Failed to invalidate rules cache")
	}
}

// validateRulePayload проверяет границы админ-запроса. Ошибки отсюда
// показываются пользователю как есть.
func validateRulePayload(req *models.UpsertRuleRequest, cfg *config.RulesConfig) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if math.IsNaN(req.PercentOff) || math.IsInf(req.PercentOff, 0) {
		return fmt.Errorf("percent must be a finite number")
	}
	if req.PercentOff < cfg.MinPercent || req.PercentOff > cfg.MaxPercent {
		return fmt.Errorf("percent must be between %g and %g", cfg.MinPercent, cfg.MaxPercent)
	}
	if len(normalizeProducts(req.Products)) == 0 {
		return fmt.Errorf("at least one product is required")
	}
	return nil
}

// normalizeProducts отбрасывает пустые идентификаторы товаров.
func normalizeProducts(products []string) []string {
	normalized := make([]string, 0, len(products))
	for _, p := range products {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
