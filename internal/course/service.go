// ============================================================================
// internal/course/service.go
// Course catalog reads and authoring upserts
// ============================================================================

package course

import (
	"context"
	"time"

	"go.uber.org/zap"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Service exposes the course catalog. Content is owned by authoring; the
// progress subsystem only ever reads it.
type Service struct {
	courses storage.CourseStore
	log     *zap.SugaredLogger
}

// NewService creates a course Service.
func NewService(courses storage.CourseStore, log *zap.SugaredLogger) *Service {
	return &Service{courses: courses, log: log}
}

// Get returns one course by id.
func (s *Service) Get(ctx context.Context, courseID string) (*shared.Course, error) {
	return s.courses.GetCourse(ctx, courseID)
}

// ListPublished returns the published catalog.
func (s *Service) ListPublished(ctx context.Context) ([]shared.Course, error) {
	all, err := s.courses.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	published := make([]shared.Course, 0, len(all))
	for _, c := range all {
		if c.IsPublished {
			published = append(published, c)
		}
	}
	return published, nil
}

// Upsert validates and stores a course definition.
func (s *Service) Upsert(ctx context.Context, c *shared.Course) error {
	if c.ID == "" || c.Name == "" {
		return shared.NewInvalidState("course id and name are required")
	}
	if len(c.Modules) == 0 {
		return shared.NewInvalidState("course must have at least one module")
	}
	for _, m := range c.Modules {
		if m.ID == "" {
			return shared.NewInvalidState("module id is required")
		}
		for _, l := range m.Lessons {
			if l.ID == "" {
				return shared.NewInvalidState("lesson id is required")
			}
			switch l.Type {
			case shared.LessonTypeVideo, shared.LessonTypeQuiz, shared.LessonTypeText:
			default:
				return shared.NewInvalidState("unknown lesson type: " + l.Type)
			}
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if err := s.courses.UpsertCourse(ctx, c); err != nil {
		return err
	}
	s.log.Infow("course upserted", "course_id", c.ID, "name", c.Name)
	return nil
}
