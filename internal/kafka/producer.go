package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"discount-rules-service/internal/config"
	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer публикует события сервиса в Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создаёт синхронный producer.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishRulesUpdated публикует событие обновления набора правил магазина.
func (p *Producer) PublishRulesUpdated(shop, discountID string, ruleCount int) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeRulesUpdated,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"shop":        shop,
			"discount_id": discountID,
			"rule_count":  ruleCount,
		},
	}
	return p.publishEvent(p.topics.Rules, event)
}

// PublishRuleDeleted публикует событие удаления правила.
func (p *Producer) PublishRuleDeleted(shop, discountID string) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeRuleDeleted,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"shop":        shop,
			"discount_id": discountID,
		},
	}
	return p.publishEvent(p.topics.Rules, event)
}

// PublishCartEvaluated публикует событие оценки корзины.
func (p *Producer) PublishCartEvaluated(shop, cartID string, discountCount int) error {
	event := models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeCartEvaluated,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"shop":           shop,
			"cart_id":        cartID,
			"discount_count": discountCount,
		},
	}
	return p.publishEvent(p.topics.Carts, event)
}

// publishEvent сериализует событие и отправляет его в топик.
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"partition": partition,
		"offset":    offset,
		"type":      event.Type,
	}).Debug("Event published")

	return nil
}
