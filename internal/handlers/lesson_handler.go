package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/questlingo/backend/internal/models"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps methods for the lesson catalog as seen by a user.
type LessonService interface {
	// Method ListLessons retrieve the lessons of a language with lock and completion flags.
	//
	// "userID" parameter is used to read the completed lessons of the user.
	// "language" parameter selects the target language; an empty value means the user's target language.
	// An unsupported language is reported with an error wrapping models.ErrInvalidInput.
	ListLessons(ctx context.Context, userID, language string) ([]models.LessonListItem, error)
	// Method GetLesson retrieve a lesson with its steps. Answers are never part of the JSON form.
	//
	// An unknown id is reported with an error wrapping catalog.ErrLessonNotFound.
	GetLesson(ctx context.Context, lessonID string) (*models.Lesson, error)
	// Method Languages retrieve the languages a user may pick.
	Languages() []models.Language
	// Method Characters retrieve the selectable character classes.
	Characters() []models.CharacterInfo
}

// LessonHandler handles HTTP requests for the lesson catalog
type LessonHandler struct {
	BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler: BaseHandler{logger: logger},
		service:     svc,
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router) {
	r.Get("/languages", h.GetLanguages)
	r.Get("/characters", h.GetCharacters)
	r.Get("/lessons", h.ListLessons)
	r.Get("/lessons/{id}", h.GetLesson)
}

// GetLanguages handles GET /api/v1/languages
// @Summary Get supported languages
// @Description Get every language a user may learn or learn from
// @Tags catalog
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Language
// @Failure 401 {object} map[string]string
// @Router /languages [get]
func (h *LessonHandler) GetLanguages(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Languages())
}

// GetCharacters handles GET /api/v1/characters
// @Summary Get character classes
// @Description Get the selectable character classes
// @Tags catalog
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.CharacterInfo
// @Failure 401 {object} map[string]string
// @Router /characters [get]
func (h *LessonHandler) GetCharacters(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.Characters())
}

// ListLessons handles GET /api/v1/lessons
// @Summary List lessons
// @Description List the lessons of a language with lock status for the caller
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Param language query string false "Target language code, default: the user's target language"
// @Success 200 {array} models.LessonListItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /lessons [get]
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	lessons, err := h.service.ListLessons(r.Context(), userID, r.URL.Query().Get("language"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to list lessons")
		return
	}

	h.respondJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /api/v1/lessons/{id}
// @Summary Get lesson
// @Description Get a lesson with its steps
// @Tags lessons
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} models.Lesson
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.service.GetLesson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "failed to get lesson")
		return
	}

	h.respondJSON(w, http.StatusOK, lesson)
}
