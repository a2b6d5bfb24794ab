// ============================================================================
// internal/progress/service.go
// Progress store accessor: canonical per-(user, course) progress records
// ============================================================================

package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// casMaxRetries bounds the optimistic-concurrency retry loop. Concurrent
// lesson completions from two tabs rarely collide more than once.
const casMaxRetries = 5

// CertificateIssuer issues a completion certificate at most once per pair.
type CertificateIssuer interface {
	IssueOnCompletion(ctx context.Context, userID, courseID, courseName string) (*shared.Certificate, error)
}

// Service owns the canonical CourseProgress documents. Every mutation is a
// read-modify-write under a version compare-and-swap, and mirrors the
// resulting percentage onto the enrollment record in the same call.
type Service struct {
	store       storage.ProgressStore
	enrollments storage.EnrollmentStore
	courses     storage.CourseStore
	certs       CertificateIssuer // optional
	log         *zap.SugaredLogger
}

// NewService creates a progress Service. certs may be nil when certificate
// issuance is handled elsewhere.
func NewService(store storage.ProgressStore, enrollments storage.EnrollmentStore, courses storage.CourseStore, certs CertificateIssuer, log *zap.SugaredLogger) *Service {
	return &Service{
		store:       store,
		enrollments: enrollments,
		courses:     courses,
		certs:       certs,
		log:         log,
	}
}

// Get reads the canonical progress record for the pair.
func (s *Service) Get(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error) {
	return s.store.GetProgress(ctx, userID, courseID)
}

// GetOrZero reads the canonical record, degrading to a zeroed one when it
// does not exist. Learner-facing dashboards display "0% / not started"
// rather than erroring the page.
func (s *Service) GetOrZero(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error) {
	p, err := s.store.GetProgress(ctx, userID, courseID)
	if shared.IsNotFound(err) {
		return newProgress(userID, courseID, ""), nil
	}
	return p, err
}

// Initialize creates a zeroed record if none exists. Idempotent:
// re-initializing returns the existing record untouched, never overwrites
// progress. The pair must be backed by a course and an enrollment.
func (s *Service) Initialize(ctx context.Context, userID, courseID, courseName string) (*shared.CourseProgress, error) {
	if _, err := s.courses.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if _, err := s.enrollments.GetEnrollment(ctx, userID, courseID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetProgress(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	p := newProgress(userID, courseID, courseName)
	if err := s.store.InsertProgress(ctx, p); err != nil {
		if shared.IsConflict(err) {
			// Raced another initializer; theirs wins.
			return s.store.GetProgress(ctx, userID, courseID)
		}
		return nil, err
	}
	return p, nil
}

// RecordLessonCompletion adds the lesson to the completed set and recomputes
// the percentage. Duplicate calls are no-ops on the set.
func (s *Service) RecordLessonCompletion(ctx context.Context, userID, courseID, moduleID, lessonID string) (*shared.CourseProgress, error) {
	return s.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		if err := ValidateLesson(c, moduleID, lessonID); err != nil {
			return err
		}
		p.AddCompletedLesson(shared.LessonKey(moduleID, lessonID))
		p.LastPosition = &shared.Position{ModuleID: moduleID, LessonID: lessonID}
		return Recompute(c, p)
	})
}

// RecordVideoProgress tracks how much of a video lesson was watched. Crossing
// the completion threshold marks the lesson completed.
func (s *Service) RecordVideoProgress(ctx context.Context, userID, courseID, moduleID, lessonID string, percentWatched, secondsWatched int32) (*shared.CourseProgress, error) {
	if percentWatched < 0 {
		percentWatched = 0
	}
	if percentWatched > 100 {
		percentWatched = 100
	}

	return s.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		if err := ValidateLesson(c, moduleID, lessonID); err != nil {
			return err
		}

		key := shared.LessonKey(moduleID, lessonID)
		lp := p.LessonProgress[key]
		if percentWatched > lp.Progress {
			lp.Progress = percentWatched
		}
		lp.TimeSpent += secondsWatched
		p.LessonProgress[key] = lp
		p.LastPosition = &shared.Position{ModuleID: moduleID, LessonID: lessonID}

		if VideoCompletes(percentWatched) {
			p.AddCompletedLesson(key)
		}
		return Recompute(c, p)
	})
}

// RecordQuizResult tracks a quiz attempt. A passing score marks the lesson
// completed; failing attempts only update the per-lesson score.
func (s *Service) RecordQuizResult(ctx context.Context, userID, courseID, moduleID, lessonID string, score int32) (*shared.CourseProgress, error) {
	return s.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		if err := ValidateLesson(c, moduleID, lessonID); err != nil {
			return err
		}

		key := shared.LessonKey(moduleID, lessonID)
		lp := p.LessonProgress[key]
		if score > lp.Progress {
			lp.Progress = score
		}
		p.LessonProgress[key] = lp
		p.LastPosition = &shared.Position{ModuleID: moduleID, LessonID: lessonID}

		if QuizPasses(score) {
			p.AddCompletedLesson(key)
		}
		return Recompute(c, p)
	})
}

// Apply runs a mutation against the pair's progress record under the CAS
// retry loop. The pair must have an active or completed enrollment; a record
// is created on first interaction but never as a side effect of a failed
// mutation. The admin override layer builds its privileged mutations on this
// same primitive.
func (s *Service) Apply(ctx context.Context, userID, courseID string, fn func(c *shared.Course, p *shared.CourseProgress) error) (*shared.CourseProgress, error) {
	course, err := s.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.enrollments.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == shared.StatusRevoked {
		return nil, shared.NewInvalidState("enrollment is revoked")
	}

	var lastErr error
	for attempt := 0; attempt < casMaxRetries; attempt++ {
		created := false
		p, err := s.store.GetProgress(ctx, userID, courseID)
		if shared.IsNotFound(err) {
			p = newProgress(userID, courseID, course.Name)
			created = true
		} else if err != nil {
			return nil, err
		}
		if p.LessonProgress == nil {
			p.LessonProgress = map[string]shared.LessonProgress{}
		}

		wasCompleted := p.Completed
		if err := fn(course, p); err != nil {
			return nil, err
		}
		p.LastAccessDate = time.Now()

		if created {
			err = s.store.InsertProgress(ctx, p)
		} else {
			err = s.store.UpdateProgress(ctx, p)
		}
		if shared.IsConflict(err) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.mirrorEnrollment(ctx, enrollment, p)

		if p.Completed && !wasCompleted && s.certs != nil {
			if _, err := s.certs.IssueOnCompletion(ctx, userID, courseID, course.Name); err != nil {
				s.log.Warnw("certificate issuance failed",
					"user_id", userID, "course_id", courseID, "error", err)
			}
		}
		return p, nil
	}

	return nil, lastErr
}

// mirrorEnrollment copies the canonical percentage onto the enrollment's
// denormalized fields in the same call as the canonical write. A failed
// mirror is logged, not fatal: the synchronizer sweep repairs the drift.
func (s *Service) mirrorEnrollment(ctx context.Context, e *shared.Enrollment, p *shared.CourseProgress) {
	e.Progress = p.OverallProgress
	e.CompletedLessons = append([]string(nil), p.CompletedLessons...)
	e.LastAccessedAt = p.LastAccessDate

	switch {
	case p.Completed && e.Status == shared.StatusActive:
		e.Status = shared.StatusCompleted
	case !p.Completed && e.Status == shared.StatusCompleted:
		e.Status = shared.StatusActive
	}

	if err := s.enrollments.UpdateEnrollment(ctx, e); err != nil {
		s.log.Warnw("enrollment progress mirror failed",
			"user_id", e.UserID, "course_id", e.CourseID, "error", err)
	}
}

func newProgress(userID, courseID, courseName string) *shared.CourseProgress {
	now := time.Now()
	return &shared.CourseProgress{
		ID:               shared.PairKey(userID, courseID),
		UserID:           userID,
		CourseID:         courseID,
		CourseName:       courseName,
		OverallProgress:  0,
		Completed:        false,
		CompletedLessons: []string{},
		CompletedModules: []string{},
		LessonProgress:   map[string]shared.LessonProgress{},
		LastAccessDate:   now,
		CreatedAt:        now,
	}
}
