// backend/internal/catalog/handler.go
package catalog

import (
	"encoding/json"
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

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.PathID(r, "courseId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	course, err := h.service.GetCourse(r.Context(), courseID)
	if err != nil {
		apperr.Write(w, err)
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	httpx.WriteJSON(w, http.StatusOK, course.ToDTO(identity.IsAdmin()))
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var course models.Course
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
	if err := json.NewDecoder(r.Body).Decode(&course); err != nil {
		apperr.Write(w, apperr.Validation("invalid request body: %v", err))
		return
	}

	if err := h.service.CreateCourse(r.Context(), &course); err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, course.ToDTO(true))
}

func (h *Handler) AddLesson(w http.ResponseWriter, r *http.Request) {
	courseID, err := httpx.PathID(r, "courseId")
	if err != nil {
		apperr.Write(w, err)
		return
	}
	moduleID, err := httpx.PathID(r, "moduleId")
	if err != nil {
		apperr.Write(w, err)
		return
	}

	var req models.AddLessonRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, err)
		return
	}

	course, err := h.service.AddLesson(r.Context(), courseID, moduleID, req)
	if err != nil {
		apperr.Write(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, course.ToDTO(true))
}
