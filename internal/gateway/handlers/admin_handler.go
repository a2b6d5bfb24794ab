package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"closercollege/internal/admin"
	"closercollege/internal/course"
	"closercollege/internal/enrollment"
	"closercollege/internal/gateway/util"
	"closercollege/internal/shared"
)

// AdminHandler exposes the override layer, batch operations and platform
// stats. Every route behind it requires the admin role.
type AdminHandler struct {
	Admin       *admin.Service
	Enrollments *enrollment.Service
	Syncer      *enrollment.Syncer
	Courses     *course.Service
}

// RESTOverrideRequest mirrors the JSON input for the override routes
type RESTOverrideRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	ModuleID string `json:"module_id,omitempty"`
	LessonID string `json:"lesson_id,omitempty"`
	Note     string `json:"note,omitempty"`
}

// RESTBulkEnrollRequest mirrors the JSON input for POST /admin/enrollment/bulk
type RESTBulkEnrollRequest struct {
	UserIDs  []string `json:"user_ids"`
	CourseID string   `json:"course_id"`
}

func decodeOverride(w http.ResponseWriter, r *http.Request) (*RESTOverrideRequest, bool) {
	var reqBody RESTOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if reqBody.UserID == "" || reqBody.CourseID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "user_id and course_id are required")
		return nil, false
	}
	return &reqBody, true
}

// ============================================================================
// Progress Overrides
// ============================================================================

// MarkCourseComplete handles POST /admin/override/course/complete
func (h *AdminHandler) MarkCourseComplete(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}

	p, err := h.Admin.MarkCourseComplete(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// ResetCourseProgress handles POST /admin/override/course/reset
func (h *AdminHandler) ResetCourseProgress(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}

	p, err := h.Admin.ResetCourseProgress(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// MarkModuleComplete handles POST /admin/override/module/complete
func (h *AdminHandler) MarkModuleComplete(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	if reqBody.ModuleID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id is required")
		return
	}

	p, err := h.Admin.MarkModuleComplete(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.ModuleID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// ResetModuleProgress handles POST /admin/override/module/reset
func (h *AdminHandler) ResetModuleProgress(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	if reqBody.ModuleID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id is required")
		return
	}

	p, err := h.Admin.ResetModuleProgress(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.ModuleID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// MarkLessonComplete handles POST /admin/override/lesson/complete
func (h *AdminHandler) MarkLessonComplete(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	if reqBody.ModuleID == "" || reqBody.LessonID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id and lesson_id are required")
		return
	}

	p, err := h.Admin.MarkLessonComplete(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.ModuleID, reqBody.LessonID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// ResetLessonProgress handles POST /admin/override/lesson/reset
func (h *AdminHandler) ResetLessonProgress(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}
	if reqBody.ModuleID == "" || reqBody.LessonID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "module_id and lesson_id are required")
		return
	}

	p, err := h.Admin.ResetLessonProgress(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.ModuleID, reqBody.LessonID, reqBody.Note)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, p)
}

// RevokeEnrollment handles POST /admin/override/revoke
func (h *AdminHandler) RevokeEnrollment(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	reqBody, ok := decodeOverride(w, r)
	if !ok {
		return
	}

	if err := h.Admin.RevokeEnrollment(r.Context(), actor.ID, reqBody.UserID, reqBody.CourseID, reqBody.Note); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "enrollment revoked",
	})
}

// ============================================================================
// Batch Operations
// ============================================================================

// BulkEnroll handles POST /admin/enrollment/bulk
func (h *AdminHandler) BulkEnroll(w http.ResponseWriter, r *http.Request) {
	var reqBody RESTBulkEnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(reqBody.UserIDs) == 0 || reqBody.CourseID == "" {
		util.WriteJSONError(w, http.StatusBadRequest, "user_ids and course_id are required")
		return
	}

	report, err := h.Enrollments.BulkEnroll(r.Context(), reqBody.UserIDs, reqBody.CourseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}

// SyncAll handles POST /admin/sync. Optional user_id and course_id query
// parameters narrow the sweep.
func (h *AdminHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.Syncer.Sync(r.Context(), r.URL.Query().Get("user_id"), r.URL.Query().Get("course_id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}

// SyncUser handles POST /admin/sync/{user_id}
func (h *AdminHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	report, err := h.Syncer.SyncUser(r.Context(), userID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, report)
}

// ============================================================================
// Catalog Authoring, Stats and Audit
// ============================================================================

// UpsertCourse handles PUT /admin/courses
func (h *AdminHandler) UpsertCourse(w http.ResponseWriter, r *http.Request) {
	var c shared.Course
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Courses.Upsert(r.Context(), &c); err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Admin.GetPlatformStats(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, stats)
}

// ListAudit handles GET /admin/audit?limit=N
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)

	records, err := h.Admin.ListAudit(r.Context(), limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, records)
}
