package models

// CartLine представляет строку корзины в запросе на оценку скидок.
// Пустой ProductID означает, что строка не ссылается на товар и скидки
// к ней не применяются.
type CartLine struct {
	ID        string `json:"id"`
	Quantity  int    `json:"quantity"`
	ProductID string `json:"productId"`
}

// LineDiscount представляет инструкцию движка: применить процент скидки
// к конкретной строке корзины.
type LineDiscount struct {
	LineID     string  `json:"lineId"`
	PercentOff float64 `json:"percentOff"`
}

// EvaluateCartRequest представляет запрос на оценку корзины.
type EvaluateCartRequest struct {
	CartID string     `json:"cart_id,omitempty"`
	Lines  []CartLine `json:"lines"`
}

// EvaluateCartResponse представляет результат оценки корзины.
// Пустой список скидок — валидный результат, а не ошибка.
type EvaluateCartResponse struct {
	CartID    string         `json:"cart_id"`
	Discounts []LineDiscount `json:"discounts"`
}
