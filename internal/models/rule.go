package models

// Rule представляет валидированное правило скидки магазина.
// DiscountID — внешний идентификатор скидки платформы; пустая строка
// означает, что правило ещё не привязано к созданной скидке (легаси-данные
// или правило до завершения создания скидки).
type Rule struct {
	DiscountID string   `json:"discountId,omitempty"`
	PercentOff float64  `json:"percentOff"`
	Products   []string `json:"products"`
	MinQty     int      `json:"minQty"`
}

// RuleSet представляет канонический формат хранения правил магазина.
// На чтение также принимается легаси-формат: одно правило без обёртки rules.
type RuleSet struct {
	Rules []Rule `json:"rules"`
}

// UpsertRuleRequest представляет запрос админ-панели на создание или
// обновление правила. MinQty принимается для совместимости, но при записи
// всегда применяется порог из конфигурации.
type UpsertRuleRequest struct {
	DiscountID string   `json:"discount_id,omitempty"`
	Title      string   `json:"title"`
	PercentOff float64  `json:"percent_off"`
	Products   []string `json:"products"`
	MinQty     int      `json:"min_qty,omitempty"`
}

// ShopStats представляет счётчики использования движка по магазину.
type ShopStats struct {
	Shop            string `json:"shop"`
	Evaluations     int64  `json:"evaluations"`
	DiscountedLines int64  `json:"discounted_lines"`
}
