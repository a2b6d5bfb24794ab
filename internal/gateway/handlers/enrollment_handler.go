package handlers

import (
	"encoding/json"
	"net/http"

	"closercollege/internal/enrollment"
	"closercollege/internal/gateway/util"
)

// EnrollmentHandler exposes enrollment lifecycle over REST.
type EnrollmentHandler struct {
	Enrollments *enrollment.Service
}

// RESTEnrollRequest mirrors the JSON input for POST /enrollment/enroll
type RESTEnrollRequest struct {
	CourseID string `json:"course_id"`
}

// Enroll handles POST /enrollment/enroll
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var reqBody RESTEnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqBody.CourseID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	e, err := h.Enrollments.Enroll(r.Context(), user.ID, reqBody.CourseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, e)
}

// ListMine handles GET /enrollment
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	enrollments, err := h.Enrollments.ListByUser(r.Context(), user.ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, enrollments)
}
