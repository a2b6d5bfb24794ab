// ============================================================================
// internal/admin/service.go
// Admin override layer: forced completion/reset at course, module and lesson
// granularity, enrollment revocation, platform stats, audit trail
// ============================================================================

package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"closercollege/internal/progress"
	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Service performs privileged progress mutations on behalf of support staff.
// Every mutation goes through the same compare-and-swap primitive learner
// writes use, and every mutation leaves an audit record.
type Service struct {
	progress *progress.Service
	store    storage.Store
	log      *zap.SugaredLogger
}

// NewService creates an admin Service.
func NewService(p *progress.Service, store storage.Store, log *zap.SugaredLogger) *Service {
	return &Service{progress: p, store: store, log: log}
}

// ============================================================================
// Course-Level Overrides
// ============================================================================

// MarkCourseComplete forces every lesson in the course complete.
func (s *Service) MarkCourseComplete(ctx context.Context, actorID, userID, courseID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		for _, key := range c.AllLessonKeys() {
			p.AddCompletedLesson(key)
			lp := p.LessonProgress[key]
			lp.Progress = 100
			p.LessonProgress[key] = lp
		}
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionMarkCourseComplete, userID, courseID, note)
	return p, nil
}

// ResetCourseProgress clears all progress for the pair back to the state of
// a fresh enrollment. Lesson-level detail and the resume position are
// cleared too, so a reset followed by a forced completion is
// indistinguishable from any other fully completed record.
func (s *Service) ResetCourseProgress(ctx context.Context, actorID, userID, courseID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		p.CompletedLessons = []string{}
		p.CompletedModules = []string{}
		p.LessonProgress = map[string]shared.LessonProgress{}
		p.LastPosition = nil
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionResetCourseProgress, userID, courseID, note)
	return p, nil
}

// ============================================================================
// Module-Level Overrides
// ============================================================================

// MarkModuleComplete forces every lesson in one module complete.
func (s *Service) MarkModuleComplete(ctx context.Context, actorID, userID, courseID, moduleID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		m := c.FindModule(moduleID)
		if m == nil {
			return shared.NewNotFound("module", moduleID)
		}
		for _, lesson := range m.Lessons {
			key := shared.LessonKey(moduleID, lesson.ID)
			p.AddCompletedLesson(key)
			lp := p.LessonProgress[key]
			lp.Progress = 100
			p.LessonProgress[key] = lp
		}
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionMarkModuleComplete, userID, courseID, note)
	return p, nil
}

// ResetModuleProgress clears completion for every lesson in one module.
func (s *Service) ResetModuleProgress(ctx context.Context, actorID, userID, courseID, moduleID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		m := c.FindModule(moduleID)
		if m == nil {
			return shared.NewNotFound("module", moduleID)
		}
		for _, lesson := range m.Lessons {
			key := shared.LessonKey(moduleID, lesson.ID)
			p.RemoveCompletedLesson(key)
			delete(p.LessonProgress, key)
		}
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionResetModuleProgress, userID, courseID, note)
	return p, nil
}

// ============================================================================
// Lesson-Level Overrides
// ============================================================================

// MarkLessonComplete forces a single lesson complete.
func (s *Service) MarkLessonComplete(ctx context.Context, actorID, userID, courseID, moduleID, lessonID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		if err := progress.ValidateLesson(c, moduleID, lessonID); err != nil {
			return err
		}
		key := shared.LessonKey(moduleID, lessonID)
		p.AddCompletedLesson(key)
		lp := p.LessonProgress[key]
		lp.Progress = 100
		p.LessonProgress[key] = lp
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionMarkLessonComplete, userID, courseID, note)
	return p, nil
}

// ResetLessonProgress clears completion and tracked detail for one lesson.
func (s *Service) ResetLessonProgress(ctx context.Context, actorID, userID, courseID, moduleID, lessonID, note string) (*shared.CourseProgress, error) {
	p, err := s.progress.Apply(ctx, userID, courseID, func(c *shared.Course, p *shared.CourseProgress) error {
		if err := progress.ValidateLesson(c, moduleID, lessonID); err != nil {
			return err
		}
		key := shared.LessonKey(moduleID, lessonID)
		p.RemoveCompletedLesson(key)
		delete(p.LessonProgress, key)
		return progress.Recompute(c, p)
	})
	if err != nil {
		return nil, err
	}
	s.audit(ctx, actorID, shared.ActionResetLessonProgress, userID, courseID, note)
	return p, nil
}

// ============================================================================
// Enrollment Revocation
// ============================================================================

// RevokeEnrollment marks the enrollment revoked and removes the canonical
// progress record atomically. Revoking an already-revoked or missing
// enrollment is an error, never a silent no-op.
func (s *Service) RevokeEnrollment(ctx context.Context, actorID, userID, courseID, note string) error {
	e, err := s.store.GetEnrollment(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if e.Status == shared.StatusRevoked {
		return shared.NewInvalidState("enrollment is already revoked")
	}
	if err := s.store.RevokeEnrollment(ctx, userID, courseID); err != nil {
		return err
	}
	s.audit(ctx, actorID, shared.ActionRevokeEnrollment, userID, courseID, note)
	return nil
}

// ============================================================================
// Platform Stats
// ============================================================================

// GetPlatformStats computes the operator dashboard numbers. Progress
// percentiles are taken over non-revoked enrollments.
func (s *Service) GetPlatformStats(ctx context.Context) (*shared.PlatformStats, error) {
	learners, err := s.store.CountUsersByRole(ctx, shared.RoleLearner)
	if err != nil {
		return nil, err
	}
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.store.ListEnrollments(ctx, storage.EnrollmentFilter{})
	if err != nil {
		return nil, err
	}

	out := &shared.PlatformStats{
		TotalLearners: learners,
		TotalCourses:  int64(len(courses)),
	}

	var values []float64
	for _, e := range enrollments {
		switch e.Status {
		case shared.StatusActive:
			out.ActiveEnrollments++
		case shared.StatusCompleted:
			out.CompletedCourses++
		case shared.StatusRevoked:
			continue
		}
		values = append(values, float64(e.Progress))
	}
	if len(values) == 0 {
		return out, nil
	}

	if out.MeanProgress, err = stats.Mean(values); err != nil {
		return nil, err
	}
	if out.MedianProgress, err = stats.Median(values); err != nil {
		return nil, err
	}
	if out.Progress90thPctile, err = stats.Percentile(values, 90); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Audit Trail
// ============================================================================

// ListAudit returns the most recent audit records, newest first.
func (s *Service) ListAudit(ctx context.Context, limit int64) ([]shared.AuditRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListAudit(ctx, limit)
}

// audit appends a trail record. A failed append is logged but never fails
// the mutation it describes.
func (s *Service) audit(ctx context.Context, actorID, action, userID, courseID, note string) {
	rec := &shared.AuditRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		ActorID:   actorID,
		Action:    action,
		Target:    shared.PairKey(userID, courseID),
		Note:      note,
	}
	if err := s.store.AppendAudit(ctx, rec); err != nil {
		s.log.Errorw("audit append failed",
			"action", action, "actor_id", actorID, "target", rec.Target, "error", err)
	}
}
