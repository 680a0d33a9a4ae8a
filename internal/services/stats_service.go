package services

import (
	"context"
	"fmt"

	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"
	"discount-rules-service/internal/redis"
)

// statsRedis описывает операции Redis, нужные счётчикам.
type statsRedis interface {
	Incr(ctx context.Context, key string) (int64, error)
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

// StatsService ведёт счётчики использования движка по магазину.
// Счётчики вспомогательные: сбой Redis логируется и не влияет на оценку.
type StatsService struct {
	redis statsRedis
	log   *logger.Logger
}

// NewStatsService создаёт сервис счётчиков. Без Redis сервис работает
// как no-op.
func NewStatsService(redisClient *redis.Client, log *logger.Logger) *StatsService {
	s := &StatsService{log: log}
	if redisClient != nil {
		s.redis = redisClient
	}
	return s
}

// RecordEvaluation фиксирует одну оценку корзины и число строк со скидкой.
func (s *StatsService) RecordEvaluation(ctx context.Context, shop string, discountedLines int) {
	if s.redis == nil {
		return
	}

	if _, err := s.redis.Incr(ctx, statsKey(shop, "evaluations")); err != nil {
		s.log.WithError(err).WithField("shop", shop).Warn("Failed to increment evaluations counter")
	}
	if discountedLines > 0 {
		if _, err := s.redis.IncrBy(ctx, statsKey(shop, "discounted_lines"), int64(discountedLines)); err != nil {
			s.log.WithError(err).WithField("shop", shop).Warn("Failed to increment discounted lines counter")
		}
	}
}

// GetStats возвращает счётчики магазина; отсутствующие ключи считаются нулём.
func (s *StatsService) GetStats(ctx context.Context, shop string) (*models.ShopStats, error) {
	stats := &models.ShopStats{Shop: shop}
	if s.redis == nil {
		return stats, nil
	}

	if v, err := s.redis.GetInt(ctx, statsKey(shop, "evaluations")); err == nil {
		stats.Evaluations = v
	}
	if v, err := s.redis.GetInt(ctx, statsKey(shop, "discounted_lines")); err == nil {
		stats.DiscountedLines = v
	}

	return stats, nil
}

func statsKey(shop, counter string) string {
	return fmt.Sprintf("%s:%s", redis.GenerateKey(redis.KeyPrefixStats, shop), counter)
}
