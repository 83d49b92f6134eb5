package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/questlingo/backend/internal/catalog"
	"github.com/questlingo/backend/internal/middleware"
	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/runner"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	logger *zap.Logger
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to a status code.
// Unexpected errors are logged and hidden behind fallback.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, catalog.ErrLessonNotFound):
		h.respondError(w, http.StatusNotFound, "lesson not found")
	case errors.Is(err, models.ErrSessionNotFound):
		h.respondError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, models.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, runner.ErrInvalidState):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(fallback,
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// userID returns the authenticated user, answering 401 when there is none
func (h *BaseHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// decodeJSON reads a JSON body into dst, answering 400 on malformed input.
// An empty body leaves dst untouched.
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}
