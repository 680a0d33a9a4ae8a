package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Префикс маршрутов магазина
const shopPathPrefix = "/api/shops/"

// ErrorResponse представляет структуру ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSONResponse отправляет JSON ответ
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeErrorResponse отправляет ответ с ошибкой
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	writeJSONResponse(w, statusCode, response)
}

// extractShopFromPath извлекает домен магазина из пути URL и возвращает
// остаток пути после него (например "rules" или "cart/evaluate").
func extractShopFromPath(path string) (string, string, error) {
	if !strings.HasPrefix(path, shopPathPrefix) {
		return "", "", fmt.Errorf("invalid path format")
	}

	rest := strings.TrimPrefix(path, shopPathPrefix)
	parts := strings.SplitN(rest, "/", 2)
	shop := strings.TrimSpace(parts[0])
	if shop == "" {
		return "", "", fmt.Errorf("shop domain is required")
	}

	suffix := ""
	if len(parts) == 2 {
		suffix = strings.Trim(parts[1], "/")
	}

	return shop, suffix, nil
}
