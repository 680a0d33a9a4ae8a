package rules

import (
	"math"

	"discount-rules-service/internal/models"
)

// Границы процента скидки для участия правила в оценке корзины.
const (
	minEligiblePercent = 1
	maxEligiblePercent = 80
)

// SelectDiscounts выбирает для каждой строки корзины одно правило с
// максимальным процентом среди подходящих. Строки без товара и строки без
// подходящих правил в результат не попадают; правила не комбинируются.
// При равных процентах побеждает первое правило в порядке хранения.
func SelectDiscounts(ruleList []models.Rule, lines []models.CartLine) []models.LineDiscount {
	var discounts []models.LineDiscount

	for _, line := range lines {
		if line.ProductID == "" {
			continue
		}

		best := 0.0
		found := false
		for _, rule := range ruleList {
			if !eligible(rule, line) {
				continue
			}
			if !found || rule.PercentOff > best {
				best = rule.PercentOff
				found = true
			}
		}

		if found {
			discounts = append(discounts, models.LineDiscount{
				LineID:     line.ID,
				PercentOff: best,
			})
		}
	}

	return discounts
}

// eligible проверяет, применимо ли правило к строке: порог количества,
// вхождение товара и процент в допустимых границах. Конечность процента
// проверяется повторно: набор мог быть собран в обход парсера.
func eligible(rule models.Rule, line models.CartLine) bool {
	if math.IsNaN(rule.PercentOff) || math.IsInf(rule.PercentOff, 0) {
		return false
	}
	if rule.PercentOff < minEligiblePercent || rule.PercentOff > maxEligiblePercent {
		return false
	}
	if rule.MinQty > line.Quantity {
		return false
	}
	for _, product := range rule.Products {
		if product == line.ProductID {
			return true
		}
	}
	return false
}
