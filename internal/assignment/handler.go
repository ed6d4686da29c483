// backend/internal/assignment/handler.go
package assignment

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

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}

	var req models.AssignmentSubmitRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	sub, err := h.service.Submit(r.Context(), identity, req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub.ToDTO())
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	subs, err := h.service.ListMine(r.Context(), identity, courseID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

func (h *Handler) ListForReview(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.QueryID(r, "courseId")
	if err != nil {
		apperr.Write(w, err)
		return
	}
	status := models.SubmissionStatus(r.URL.Query().Get("status"))

	subs, err := h.service.ListForReview(r.Context(), status, courseID)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, subs)
}

// Grade handles PATCH /api/admin/assignments/{submissionId}.
func (h *Handler) Grade(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		apperr.Write(w, apperr.Unauthorized("authentication required"))
		return
	}
	submissionID, err := httpx.PathID(r, "submissionId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var req models.GradeRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	sub, err := h.service.GradeSubmission(r.Context(), identity, submissionID, req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sub.ToDTO())
}
