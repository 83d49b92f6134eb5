package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/questlingo/backend/internal/models"
	"github.com/questlingo/backend/internal/runner"
	"github.com/questlingo/backend/internal/services"
	"go.uber.org/zap"
)

// SessionService is the interface that wraps methods for lesson sessions.
type SessionService interface {
	// Method StartSession start a lesson for a user or return the session already running for it.
	//
	// Unfinished remote progress is resumed; absent or unreadable progress starts the lesson fresh.
	// An unknown lesson is reported with an error wrapping catalog.ErrLessonNotFound.
	StartSession(ctx context.Context, userID, lessonID string) (*services.SessionView, error)
	// Method GetSession retrieve the current view of a session.
	//
	// A session that was never started is reported with an error wrapping models.ErrSessionNotFound.
	GetSession(ctx context.Context, userID, lessonID string) (*services.SessionView, error)
	// Method Answer evaluate "resp" against the current step of a session and record it.
	//
	// A response that does not fit the step kind is reported with an error wrapping models.ErrInvalidInput,
	// an answer outside of a running session with an error wrapping runner.ErrInvalidState.
	Answer(ctx context.Context, userID, lessonID string, resp models.StepResponse) (*services.AnswerResult, error)
	// Method Advance move a session to its next step; advancing from the last step completes the lesson.
	Advance(ctx context.Context, userID, lessonID string) (*services.SessionView, error)
	// Method Complete finish a session and grant its rewards.
	//
	// Completing twice returns the first outcome; a call made while completion is running returns
	// the view in the completing state.
	Complete(ctx context.Context, userID, lessonID string) (*services.SessionView, error)
}

// SessionHandler handles HTTP requests for lesson sessions
type SessionHandler struct {
	BaseHandler
	service SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(svc SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all session handler routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/lessons/{id}/session", h.StartSession)
	r.Get("/lessons/{id}/session", h.GetSession)
	r.Post("/lessons/{id}/session/answer", h.Answer)
	r.Post("/lessons/{id}/session/advance", h.Advance)
	r.Post("/lessons/{id}/session/complete", h.Complete)
}

// StartSession handles POST /api/v1/lessons/{id}/session
// @Summary Start or resume a lesson
// @Description Start a lesson session, resuming unfinished progress
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} services.SessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /lessons/{id}/session [post]
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	view, err := h.service.StartSession(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to start session")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// GetSession handles GET /api/v1/lessons/{id}/session
// @Summary Get lesson session
// @Description Get the current state of a lesson session
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} services.SessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /lessons/{id}/session [get]
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetSession(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to get session")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Answer handles POST /api/v1/lessons/{id}/session/answer
// @Summary Answer the current step
// @Description Evaluate an answer to the current step of a session
// @Tags sessions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Param request body models.StepResponse true "Selected option or typed text"
// @Success 200 {object} services.AnswerResult
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /lessons/{id}/session/answer [post]
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var resp models.StepResponse
	if !h.decodeJSON(w, r, &resp) {
		return
	}

	result, err := h.service.Answer(r.Context(), userID, chi.URLParam(r, "id"), resp)
	if err != nil {
		h.respondServiceError(w, r, err, "failed to answer step")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Advance handles POST /api/v1/lessons/{id}/session/advance
// @Summary Advance to the next step
// @Description Move to the next step; advancing from the last step completes the lesson
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} services.SessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /lessons/{id}/session/advance [post]
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Advance(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to advance session")
		return
	}

	h.respondJSON(w, http.StatusOK, view)
}

// Complete handles POST /api/v1/lessons/{id}/session/complete
// @Summary Complete the lesson
// @Description Finish the lesson and grant rewards. 202 means another completion of the session is still running.
// @Tags sessions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} services.SessionView
// @Success 202 {object} services.SessionView
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /lessons/{id}/session/complete [post]
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Complete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to complete session")
		return
	}

	status := http.StatusOK
	if view.State == runner.StateCompleting {
		status = http.StatusAccepted
	}
	h.respondJSON(w, status, view)
}
