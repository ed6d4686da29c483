// backend/internal/quiz/handler.go
package quiz

import (
	"net/http"

	"learning-system/internal/apperr"
	"learning-system/internal/auth"
	"learning-system/internal/httpx"
	"learning-system/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req models.QuizSubmissionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	result, err := h.service.SubmitQuizAttempt(r.Context(), identity, req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, result)
}

// ListAttempts handles GET /api/quizzes/attempts?courseId=&quizId=.
func (h *Handler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	courseID, err := httpx.QueryID(r, "courseId")
	if err != nil {
		apperr.Write(w, err)
		return
	}
	quizID, err := httpx.QueryID(r, "quizId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	history, err := h.service.ListAttempts(r.Context(), identity, courseID, quizID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, history)
}
