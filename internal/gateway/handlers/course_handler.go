package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"closercollege/internal/course"
	"closercollege/internal/gateway/util"
)

// CourseHandler exposes the course catalog over REST.
type CourseHandler struct {
	Courses *course.Service
}

// ListCourses handles GET /courses
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Courses.ListPublished(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{id}
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	c, err := h.Courses.Get(r.Context(), courseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}
