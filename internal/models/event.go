package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события Kafka.
type EventType string

const (
	EventTypeRulesUpdated  EventType = "rules.updated"
	EventTypeRuleDeleted   EventType = "rule.deleted"
	EventTypeCartEvaluated EventType = "cart.evaluated"
)

// Event представляет событие, публикуемое в Kafka.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
