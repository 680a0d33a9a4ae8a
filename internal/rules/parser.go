// Package rules содержит чистое ядро движка скидок: разбор сохранённого
// JSON в валидированные правила, выбор лучшего правила для строк корзины и
// слияние обновлённого правила в набор. Ни одна функция пакета не выполняет
// I/O и не возвращает ошибок разбора: испорченные данные деградируют до
// пустого или частичного набора.
package rules

import (
	"encoding/json"
	"math"
	"strconv"

	"discount-rules-service/internal/models"
)

// ParseRuleSet разбирает сохранённый JSON правил магазина. Принимает
// канонический формат {"rules":[...]} и легаси-формат: одно правило без
// обёртки. Невалидные элементы молча отбрасываются, порядок сохраняется.
// Любой неразбираемый вход даёт пустой набор, не ошибку.
func ParseRuleSet(raw []byte) []models.Rule {
	if len(raw) == 0 {
		return nil
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return nil
	}

	if seq, ok := obj["rules"].([]interface{}); ok {
		var parsed []models.Rule
		for _, el := range seq {
			if rule, ok := parseRule(el); ok {
				parsed = append(parsed, rule)
			}
		}
		return parsed
	}

	// Легаси-формат: объект правила на верхнем уровне.
	if rule, ok := parseRule(decoded); ok {
		return []models.Rule{rule}
	}
	return nil
}

// parseRule валидирует один элемент набора. Проценты проверяются здесь
// только на конечность: границы [1,80] применяются при записи и при выборе
// кандидатов, чтобы легаси-значения вне диапазона продолжали отображаться
// в админке. Правило с minQty < 2 отбрасывается целиком.
func parseRule(v interface{}) (models.Rule, bool) {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return models.Rule{}, false
	}

	percent, ok := toFinite(obj["percentOff"])
	if !ok {
		return models.Rule{}, false
	}

	rawProducts, ok := obj["products"].([]interface{})
	if !ok {
		return models.Rule{}, false
	}
	products := make([]string, 0, len(rawProducts))
	for _, p := range rawProducts {
		if s, ok := p.(string); ok && s != "" {
			products = append(products, s)
		}
	}

	minQty, ok := toFinite(obj["minQty"])
	if !ok || minQty < 2 {
		return models.Rule{}, false
	}

	rule := models.Rule{
		PercentOff: percent,
		Products:   products,
		MinQty:     int(minQty),
	}
	if id, ok := obj["discountId"].(string); ok {
		rule.DiscountID = id
	}
	return rule, true
}

// toFinite приводит число или числовую строку к конечному float64.
func toFinite(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// MarshalRuleSet сериализует набор в канонический формат {"rules":[...]}.
// Легаси-формат никогда не записывается.
func MarshalRuleSet(ruleList []models.Rule) ([]byte, error) {
	if ruleList == nil {
		ruleList = []models.Rule{}
	}
	return json.Marshal(models.RuleSet{Rules: ruleList})
}
