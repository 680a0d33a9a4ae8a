package rules

import "discount-rules-service/internal/models"

// Reconcile вливает обновлённое правило в существующий набор: удаляет
// правила с тем же непустым DiscountID и добавляет новое в конец. Правила
// других скидок не изменяются — общий для всех скидок магазина набор нельзя
// перезаписывать вслепую. Правило без идентификатора ничего не вытесняет:
// вызывающая сторона обязана повторить слияние, когда идентификатор
// созданной скидки станет известен.
func Reconcile(existing []models.Rule, upserted models.Rule) []models.Rule {
	merged := make([]models.Rule, 0, len(existing)+1)
	for _, rule := range existing {
		if upserted.DiscountID != "" && rule.DiscountID == upserted.DiscountID {
			continue
		}
		merged = append(merged, rule)
	}
	return append(merged, upserted)
}

// Remove удаляет из набора правила с указанным непустым идентификатором.
// Второе значение сообщает, было ли что-то удалено.
func Remove(existing []models.Rule, discountID string) ([]models.Rule, bool) {
	if discountID == "" {
		return existing, false
	}

	kept := make([]models.Rule, 0, len(existing))
	removed := false
	for _, rule := range existing {
		if rule.DiscountID == discountID {
			removed = true
			continue
		}
		kept = append(kept, rule)
	}
	return kept, removed
}
