package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valpere/transhub/internal/broadcast"
	"github.com/valpere/transhub/internal/gateway"
	"github.com/valpere/transhub/internal/language"
	"github.com/valpere/transhub/internal/templates"
	"github.com/valpere/transhub/internal/translator"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, templates.ErrUnknownTemplate):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrEmptyInput),
		errors.Is(err, gateway.ErrSameLanguage),
		errors.Is(err, gateway.ErrUndetectedLanguage),
		errors.Is(err, language.ErrUnknownLanguage),
		errors.Is(err, broadcast.ErrNoTargets):
		return http.StatusBadRequest
	case errors.Is(err, translator.ErrModelUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, translator.ErrNetwork):
		return http.StatusServiceUnavailable
	case errors.Is(err, translator.ErrInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
