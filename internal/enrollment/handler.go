// backend/internal/enrollment/handler.go
package enrollment

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

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	courseID, err := httpx.PathID(r, "courseId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	e, err := h.service.Enroll(r.Context(), identity, courseID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}

	enrollments, err := h.service.ListMine(r.Context(), identity)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, enrollments)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	enrollmentID, err := httpx.PathID(r, "enrollmentId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	e, err := h.service.Get(r.Context(), identity, enrollmentID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

// UpdateProgress handles POST /api/enrollments/{enrollmentId}/progress.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	enrollmentID, err := httpx.PathID(r, "enrollmentId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var req models.LessonCompletionRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	snapshot, err := h.service.RecordLessonCompletion(r.Context(), identity, enrollmentID, req.ModuleID, req.LessonID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) UpdateWatch(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	enrollmentID, err := httpx.PathID(r, "enrollmentId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var req models.WatchProgressRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	lesson, err := h.service.RecordWatchProgress(r.Context(), identity, enrollmentID, req.ModuleID, req.LessonID, req.WatchedDuration)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, lesson)
}
