package handlers

import (
	"encoding/json"
	"net/http"

	"discount-rules-service/internal/logger"
	"discount-rules-service/internal/models"

	"github.com/google/uuid"
)

// EvaluationHandler обрабатывает запросы оценки корзины.
type EvaluationHandler struct {
	evaluation EvaluationService
	log        *logger.Logger
}

// NewEvaluationHandler создаёт новый обработчик оценки корзин.
func NewEvaluationHandler(evaluation EvaluationService, log *logger.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluation: evaluation,
		log:        log,
	}
}

// EvaluateCart вычисляет скидки для строк корзины магазина.
func (h *EvaluationHandler) EvaluateCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	shop, _, err := extractShopFromPath(r.URL.Path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.EvaluateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Клиент может не присылать идентификатор корзины
	if req.CartID == "" {
		req.CartID = uuid.New().String()
	}

	resp, err := h.evaluation.EvaluateCart(r.Context(), shop, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to evaluate cart")
		return
	}

	writeJSONResponse(w, http.StatusOK, resp)
}
