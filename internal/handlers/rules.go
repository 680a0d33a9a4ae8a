package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"
)

// RulesHandler обрабатывает админ-запросы к правилам скидок магазина.
type RulesHandler struct {
	rules RuleService
	log   *logger.Logger
}

// NewRulesHandler создаёт новый обработчик правил.
func NewRulesHandler(rules RuleService, log *logger.Logger) *RulesHandler {
	return &RulesHandler{
		rules: rules,
		log:   log,
	}
}

// ListRules возвращает набор правил магазина.
func (h *RulesHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	shop, _, err := extractShopFromPath(r.URL.Path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.rules.ListRules(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list rules")
		return
	}

	writeJSONResponse(w, http.StatusOK, models.RuleSet{Rules: list})
}

// UpsertRule вставляет или заменяет правило скидки.
func (h *RulesHandler) UpsertRule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	shop, _, err := extractShopFromPath(r.URL.Path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpsertRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	set, err := h.rules.UpsertRule(r.Context(), shop, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to upsert rule")
		return
	}

	writeJSONResponse(w, http.StatusOK, set)
}

// DeleteRule удаляет правило по идентификатору скидки.
func (h *RulesHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	shop, suffix, err := extractShopFromPath(r.URL.Path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	discountID := strings.TrimPrefix(suffix, "rules/")
	if discountID == "" || discountID == "rules" {
		writeErrorResponse(w, http.StatusBadRequest, "discount id is required")
		return
	}

	if err := h.rules.DeleteRule(r.Context(), shop, discountID); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete rule")
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Rule deleted"})
}
