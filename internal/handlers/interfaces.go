package handlers

import (
	"context"

	"discount-rules-service/internal/models"
)

// ----- Rules -----

type RuleService interface {
	UpsertRule(ctx context.Context, shop string, req *models.UpsertRuleRequest) (*models.RuleSet, error)
	DeleteRule(ctx context.Context, shop, discountID string) error
	ListRules(ctx context.Context, shop string) ([]models.Rule, error)
}

// ----- Evaluation -----

type EvaluationService interface {
	EvaluateCart(ctx context.Context, shop string, req *models.EvaluateCartRequest) (*models.EvaluateCartResponse, error)
}

// ----- Stats -----

type StatsProvider interface {
	GetStats(ctx context.Context, shop string) (*models.ShopStats, error)
}

// ----- Health -----

type DBHealth interface {
	Health() error
}

type RedisHealth interface {
	Health(ctx context.Context) error
}
