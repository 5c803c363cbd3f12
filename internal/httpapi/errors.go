package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/UkralStul/forum-post-service/internal/domain"
)

// writeJSON сериализует payload с указанным статус-кодом.
func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// writeError сопоставляет таксономию ошибок со статус-кодами.
// Непредвиденные ошибки логируются и наружу уходят без деталей.
func writeError(w http.ResponseWriter, err error) {
	var code int
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidState):
		code = http.StatusBadRequest
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
