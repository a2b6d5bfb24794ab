package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"closercollege/internal/gateway/util"
	"closercollege/internal/progress"
)

// ProgressHandler exposes learner progress tracking over REST. All routes
// operate on the authenticated user's own records.
type ProgressHandler struct {
	Progress *progress.Service
}

// RESTLessonCompleteRequest mirrors the JSON input for POST /progress/{course_id}/lesson
type RESTLessonCompleteRequest struct {
	ModuleID string `json:"module_id"`
	LessonID string `json:"lesson_id"`
}

// RESTVideoProgressRequest mirrors the JSON input for POST /progress/{course_id}/video
type RESTVideoProgressRequest struct {
	ModuleID       string `json:"module_id"`
	LessonID       string `json:"lesson_id"`
	PercentWatched int32  `json:"percent_watched"`
	SecondsWatched int32  `json:"seconds_watched"`
}

// RESTQuizResultRequest mirrors the JSON input for POST /progress/{course_id}/quiz
type RESTQuizResultRequest struct {
	ModuleID string `json:"module_id"`
	LessonID string `json:"lesson_id"`
	Score    int32  `json:"score"`
}

// GetProgress handles GET /progress/{course_id}
//
// Returns a zeroed record rather than 404 when the learner has not yet
// interacted with the course, so dashboards degrade gracefully.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	courseID := chi.URLParam(r, "course_id")

	p, err := h.Progress.GetOrZero(r.Context(), user.ID, courseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// CompleteLesson handles POST /progress/{course_id}/lesson
func (h *ProgressHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	courseID := chi.URLParam(r, "course_id")

	var reqBody RESTLessonCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqBody.ModuleID == "" || reqBody.LessonID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id and lesson_id are required")
		return
	}

	p, err := h.Progress.RecordLessonCompletion(r.Context(), user.ID, courseID, reqBody.ModuleID, reqBody.LessonID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// RecordVideoProgress handles POST /progress/{course_id}/video
func (h *ProgressHandler) RecordVideoProgress(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	courseID := chi.URLParam(r, "course_id")

	var reqBody RESTVideoProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqBody.ModuleID == "" || reqBody.LessonID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id and lesson_id are required")
		return
	}

	p, err := h.Progress.RecordVideoProgress(r.Context(), user.ID, courseID,
		reqBody.ModuleID, reqBody.LessonID, reqBody.PercentWatched, reqBody.SecondsWatched)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// RecordQuizResult handles POST /progress/{course_id}/quiz
func (h *ProgressHandler) RecordQuizResult(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	courseID := chi.URLParam(r, "course_id")

	var reqBody RESTQuizResultRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqBody.ModuleID == "" || reqBody.LessonID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id and lesson_id are required")
		return
	}

	p, err := h.Progress.RecordQuizResult(r.Context(), user.ID, courseID,
		reqBody.ModuleID, reqBody.LessonID, reqBody.Score)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}
