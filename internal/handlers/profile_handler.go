package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

// ProfileService is the interface that wraps methods for user profiles.
type ProfileService interface {
	// Method GetProfile retrieve the profile of a user, creating a default one on first access.
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	// Method UpdateProfile change the settings of a profile.
	//
	// Only name, characterType, sourceLanguage and targetLanguage may be set.
	// Any other field or an unsupported value is reported with an error wrapping models.ErrInvalidInput.
	UpdateProfile(ctx context.Context, userID string, update *models.ProfileUpdate) (*models.UserProfile, error)
}

// ProgressService is the interface that wraps the progress listing of a user.
type ProgressService interface {
	// Method ListProgress retrieve the progress records of a user; running sessions take precedence.
	ListProgress(ctx context.Context, userID string) ([]models.LessonProgress, error)
}

// ProfileHandler handles HTTP requests for the caller's profile and progress
type ProfileHandler struct {
	BaseHandler
	profiles ProfileService
	progress ProgressService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles ProfileService, progress ProgressService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: BaseHandler{logger: logger},
		profiles:    profiles,
		progress:    progress,
	}
}

// RegisterRoutes registers all profile handler routes
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.GetProfile)
	r.Patch("/profile", h.UpdateProfile)
	r.Get("/progress", h.ListProgress)
}

// GetProfile handles GET /api/v1/profile
// @Summary Get profile
// @Description Get the caller's profile with xp, level and streak
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.UserProfile
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err, "failed to get profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/v1/profile
// @Summary Update profile settings
// @Description Change name, character type or languages
// @Tags profile
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ProfileUpdate true "Settings to change"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /profile [patch]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if !h.decodeJSON(w, r, &update) {
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		h.respondServiceError(w, r, err, "failed to update profile")
		return
	}

	h.respondJSON(w, http.StatusOK, profile)
}

// ListProgress handles GET /api/v1/progress
// @Summary List lesson progress
// @Description List the caller's progress records
// @Tags profile
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.LessonProgress
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /progress [get]
func (h *ProfileHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	records, err := h.progress.ListProgress(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, r, err, "failed to list progress")
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}
