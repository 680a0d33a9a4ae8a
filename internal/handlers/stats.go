package handlers

import (
	"net/http"

	"discount-rules-service/internal/logger"
)

// StatsHandler отдаёт счётчики использования движка по магазину.
type StatsHandler struct {
	stats StatsProvider
	log   *logger.Logger
}

// NewStatsHandler создаёт новый обработчик статистики.
func NewStatsHandler(stats StatsProvider, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats: stats,
		log:   log,
	}
}

// GetStats возвращает счётчики магазина.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	shop, _, err := extractShopFromPath(r.URL.Path)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := h.stats.GetStats(r.Context(), shop)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to get stats")
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}
