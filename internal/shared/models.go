// ============================================================================
// internal/shared/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package shared

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ============================================================================
// User Models
// ============================================================================

// User represents a platform account (learner or admin)
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Never expose in JSON
	Role         string    `bson:"role" json:"role"`       // learner, admin
	Name         string    `bson:"name" json:"name"`
	CompanyID    string    `bson:"company_id,omitempty" json:"company_id,omitempty"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session represents an active user session (for JWT revocation)
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired checks if a session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ============================================================================
// Course Models
// ============================================================================

// Lesson is a single unit of course content. Content records are owned by
// course authoring and read-only from the progress subsystem's perspective.
type Lesson struct {
	ID       string `bson:"id" json:"id"`
	Title    string `bson:"title" json:"title"`
	Type     string `bson:"type" json:"type"` // video, quiz, text
	Order    int32  `bson:"order" json:"order"`
	Duration int32  `bson:"duration,omitempty" json:"duration,omitempty"` // seconds, videos only
}

// Module is an ordered section of a course holding lessons
type Module struct {
	ID      string   `bson:"id" json:"id"`
	Title   string   `bson:"title" json:"title"`
	Order   int32    `bson:"order" json:"order"`
	Lessons []Lesson `bson:"lessons" json:"lessons"`
}

// Course represents a published training course
type Course struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Modules     []Module  `bson:"modules" json:"modules"`
	IsPublished bool      `bson:"is_published" json:"is_published"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// TotalLessons returns the total lesson count across all modules.
func (c *Course) TotalLessons() int {
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

// FindModule returns the module with the given id, or nil.
func (c *Course) FindModule(moduleID string) *Module {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i]
		}
	}
	return nil
}

// HasLesson reports whether moduleID/lessonID identifies a lesson in this course.
func (c *Course) HasLesson(moduleID, lessonID string) bool {
	m := c.FindModule(moduleID)
	if m == nil {
		return false
	}
	for _, l := range m.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}

// AllLessonKeys returns the composite key of every lesson in the course.
func (c *Course) AllLessonKeys() []string {
	keys := make([]string, 0, c.TotalLessons())
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			keys = append(keys, LessonKey(m.ID, l.ID))
		}
	}
	return keys
}

// ============================================================================
// Progress Models
// ============================================================================

// LessonProgress holds granular per-lesson tracking data
type LessonProgress struct {
	Progress  int32 `bson:"progress" json:"progress"`     // 0-100
	TimeSpent int32 `bson:"time_spent" json:"time_spent"` // seconds
}

// Position points at the learner's last visited lesson
type Position struct {
	ModuleID string `bson:"module_id" json:"module_id"`
	LessonID string `bson:"lesson_id" json:"lesson_id"`
}

// CourseProgress is the canonical progress record, one per (user, course)
// pair, keyed by "{userID}_{courseID}". The version field backs the
// compare-and-swap discipline on every mutation.
type CourseProgress struct {
	ID               string                    `bson:"_id" json:"id"`
	UserID           string                    `bson:"user_id" json:"user_id"`
	CourseID         string                    `bson:"course_id" json:"course_id"`
	CourseName       string                    `bson:"course_name" json:"course_name"`
	OverallProgress  int32                     `bson:"overall_progress" json:"overall_progress"` // 0-100
	Completed        bool                      `bson:"completed" json:"completed"`
	CompletedDate    *time.Time                `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	CompletedLessons []string                  `bson:"completed_lessons" json:"completed_lessons"` // set of "{moduleID}_{lessonID}"
	CompletedModules []string                  `bson:"completed_modules" json:"completed_modules"`
	LessonProgress   map[string]LessonProgress `bson:"lesson_progress" json:"lesson_progress"`
	LastPosition     *Position                 `bson:"last_position,omitempty" json:"last_position,omitempty"`
	LastAccessDate   time.Time                 `bson:"last_access_date" json:"last_access_date"`
	Version          int64                     `bson:"version" json:"-"`
	CreatedAt        time.Time                 `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time                 `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HasCompletedLesson reports whether the composite key is in the completed set.
func (p *CourseProgress) HasCompletedLesson(key string) bool {
	for _, k := range p.CompletedLessons {
		if k == key {
			return true
		}
	}
	return false
}

// AddCompletedLesson adds the key with set semantics. Returns false when the
// key was already present.
func (p *CourseProgress) AddCompletedLesson(key string) bool {
	if p.HasCompletedLesson(key) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, key)
	sort.Strings(p.CompletedLessons)
	return true
}

// RemoveCompletedLesson removes the key. Returns false when it was absent.
func (p *CourseProgress) RemoveCompletedLesson(key string) bool {
	for i, k := range p.CompletedLessons {
		if k == key {
			p.CompletedLessons = append(p.CompletedLessons[:i], p.CompletedLessons[i+1:]...)
			return true
		}
	}
	return false
}

// ============================================================================
// Enrollment Models
// ============================================================================

// Enrollment is a user's membership in a course, keyed by
// "{userID}_{courseID}" so a second enrollment document for the same pair
// cannot exist. The progress and completed_lessons fields are denormalized
// copies of the canonical CourseProgress record for dashboard queries; the
// synchronizer repairs drift between the two.
type Enrollment struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	CourseID         string    `bson:"course_id" json:"course_id"`
	CourseName       string    `bson:"course_name" json:"course_name"`
	Status           string    `bson:"status" json:"status"` // active, completed, revoked
	Progress         int32     `bson:"progress" json:"progress"`
	CompletedLessons []string  `bson:"completed_lessons" json:"completed_lessons"`
	EnrolledAt       time.Time `bson:"enrolled_at" json:"enrolled_at"`
	LastAccessedAt   time.Time `bson:"last_accessed_at,omitempty" json:"last_accessed_at,omitempty"`
}

// ============================================================================
// Certificate Models
// ============================================================================

// Certificate records course completion; issued at most once per pair
type Certificate struct {
	ID               string    `bson:"_id" json:"id"`
	UserID           string    `bson:"user_id" json:"user_id"`
	CourseID         string    `bson:"course_id" json:"course_id"`
	CourseName       string    `bson:"course_name" json:"course_name"`
	Serial           string    `bson:"serial" json:"serial"`
	VerificationCode string    `bson:"verification_code" json:"verification_code"`
	IssuedAt         time.Time `bson:"issued_at" json:"issued_at"`
}

// ============================================================================
// Audit Log Models
// ============================================================================

// AuditRecord is an append-only trail entry for privileged mutations
type AuditRecord struct {
	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	ActorID   string    `bson:"actor_id" json:"actor_id"`
	Action    string    `bson:"action" json:"action"`
	Target    string    `bson:"target" json:"target"` // "{userID}:{courseID}" or entity id
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

// ============================================================================
// Report Models (for batch operation responses)
// ============================================================================

// SyncDetail records the outcome of one (user, course) pair in a sweep
type SyncDetail struct {
	UserID      string `json:"user_id"`
	CourseID    string `json:"course_id"`
	OldProgress int32  `json:"old_progress"`
	NewProgress int32  `json:"new_progress"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// SyncReport summarizes a reconciliation sweep
type SyncReport struct {
	Synced  int          `json:"synced"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
	Details []SyncDetail `json:"details"`
}

// BulkEnrollDetail records the outcome of one user in a roster enrollment
type BulkEnrollDetail struct {
	UserID  string `json:"user_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkEnrollReport summarizes a roster enrollment
type BulkEnrollReport struct {
	Enrolled int                `json:"enrolled"`
	Failed   int                `json:"failed"`
	Details  []BulkEnrollDetail `json:"details"`
}

// PlatformStats holds operator dashboard numbers
type PlatformStats struct {
	TotalLearners      int64   `json:"total_learners"`
	TotalCourses       int64   `json:"total_courses"`
	ActiveEnrollments  int64   `json:"active_enrollments"`
	CompletedCourses   int64   `json:"completed_courses"`
	MeanProgress       float64 `json:"mean_progress"`
	MedianProgress     float64 `json:"median_progress"`
	Progress90thPctile float64 `json:"progress_90th_pctile"`
}

// ============================================================================
// Constants
// ============================================================================

const (
	// User roles
	RoleLearner = "learner"
	RoleAdmin   = "admin"

	// Enrollment statuses
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusRevoked   = "revoked"

	// Lesson types
	LessonTypeVideo = "video"
	LessonTypeQuiz  = "quiz"
	LessonTypeText  = "text"

	// Audit actions
	ActionMarkCourseComplete  = "mark_course_complete"
	ActionResetCourseProgress = "reset_course_progress"
	ActionMarkModuleComplete  = "mark_module_complete"
	ActionResetModuleProgress = "reset_module_progress"
	ActionMarkLessonComplete  = "mark_lesson_complete"
	ActionResetLessonProgress = "reset_lesson_progress"
	ActionRevokeEnrollment    = "revoke_enrollment"
	ActionBulkEnroll          = "bulk_enroll"
	ActionSyncProgress        = "sync_progress"
)

// IsValidRole checks if user role is valid
func IsValidRole(role string) bool {
	return role == RoleLearner || role == RoleAdmin
}

// IsValidEnrollmentStatus checks if enrollment status is valid
func IsValidEnrollmentStatus(status string) bool {
	switch status {
	case StatusActive, StatusCompleted, StatusRevoked:
		return true
	}
	return false
}

// ============================================================================
// Key Helpers
// ============================================================================

// LessonKey builds the composite completed-lesson key "{moduleID}_{lessonID}".
func LessonKey(moduleID, lessonID string) string {
	return fmt.Sprintf("%s_%s", moduleID, lessonID)
}

// PairKey builds the deterministic document id for pair-keyed collections
// (courseProgress, enrollments): "{userID}_{courseID}".
func PairKey(userID, courseID string) string {
	return fmt.Sprintf("%s_%s", userID, courseID)
}

// Percentage computes round(100*completed/total). Total must be positive;
// callers guard the zero case with ErrInvalidState.
func Percentage(completed, total int) int32 {
	if total <= 0 {
		return 0
	}
	return int32(math.Round(100 * float64(completed) / float64(total)))
}
