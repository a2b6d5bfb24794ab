// ============================================================================
// internal/enrollment/service.go
// Enrollment lifecycle: enroll, list, bulk/team roster enrollment
// ============================================================================

package enrollment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// ProgressInitializer creates the canonical zeroed progress record for a
// freshly enrolled pair.
type ProgressInitializer interface {
	Initialize(ctx context.Context, userID, courseID, courseName string) (*shared.CourseProgress, error)
}

// Service manages enrollment documents. Enrollments are keyed by the
// (user, course) pair, so a duplicate enrollment cannot be created under a
// stray document id.
type Service struct {
	enrollments storage.EnrollmentStore
	courses     storage.CourseStore
	users       storage.UserStore
	progress    ProgressInitializer
	log         *zap.SugaredLogger
}

// NewService creates an enrollment Service.
func NewService(enrollments storage.EnrollmentStore, courses storage.CourseStore, users storage.UserStore, progress ProgressInitializer, log *zap.SugaredLogger) *Service {
	return &Service{
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		progress:    progress,
		log:         log,
	}
}

// Get reads the enrollment for the pair.
func (s *Service) Get(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	return s.enrollments.GetEnrollment(ctx, userID, courseID)
}

// ListByUser returns all of a user's enrollments, revoked ones included.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]shared.Enrollment, error) {
	return s.enrollments.ListEnrollments(ctx, storage.EnrollmentFilter{UserID: userID})
}

// Enroll creates an active enrollment and initializes the canonical progress
// record. Enrolling an already-enrolled user is a conflict; re-enrolling a
// revoked pair reactivates it with zeroed progress.
func (s *Service) Enroll(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	existing, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	switch {
	case err == nil && existing.Status != shared.StatusRevoked:
		return nil, shared.NewConflict("enrollment", existing.ID, "user already enrolled")
	case err == nil:
		// Revoked pair: reactivate in place.
		existing.Status = shared.StatusActive
		existing.Progress = 0
		existing.CompletedLessons = []string{}
		existing.EnrolledAt = time.Now()
		if err := s.enrollments.UpdateEnrollment(ctx, existing); err != nil {
			return nil, err
		}
		if _, err := s.progress.Initialize(ctx, userID, courseID, course.Name); err != nil {
			s.log.Warnw("progress init after re-enroll failed",
				"user_id", userID, "course_id", courseID, "error", err)
		}
		return existing, nil
	case !shared.IsNotFound(err):
		return nil, err
	}

	e := &shared.Enrollment{
		ID:               shared.PairKey(userID, courseID),
		UserID:           userID,
		CourseID:         courseID,
		CourseName:       course.Name,
		Status:           shared.StatusActive,
		Progress:         0,
		CompletedLessons: []string{},
		EnrolledAt:       time.Now(),
	}
	if err := s.enrollments.InsertEnrollment(ctx, e); err != nil {
		return nil, err
	}

	if _, err := s.progress.Initialize(ctx, userID, courseID, course.Name); err != nil {
		s.log.Warnw("progress init after enroll failed",
			"user_id", userID, "course_id", courseID, "error", err)
	}
	return e, nil
}

// BulkEnroll enrolls a roster of users (a company team) into one course.
// Each user's failure is isolated and reported; the batch itself never
// errors except on cancellation.
func (s *Service) BulkEnroll(ctx context.Context, userIDs []string, courseID string) (*shared.BulkEnrollReport, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	report := &shared.BulkEnrollReport{}
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		detail := shared.BulkEnrollDetail{UserID: userID, Success: true}
		if _, err := s.Enroll(ctx, userID, courseID); err != nil {
			detail.Success = false
			detail.Error = err.Error()
			report.Failed++
		} else {
			report.Enrolled++
		}
		report.Details = append(report.Details, detail)
	}
	return report, nil
}
