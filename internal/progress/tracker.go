// ============================================================================
// internal/progress/tracker.go
// Pure derivation of completion state from a course and a progress record
// ============================================================================

package progress

import (
	"fmt"
	"time"

	"closercollege/internal/shared"
)

// Completion thresholds. Policy constants, not configurable per course.
const (
	// VideoCompletionThreshold is the watched percentage at which a video
	// lesson counts as completed.
	VideoCompletionThreshold = 95

	// QuizPassingThreshold is the score at which a quiz lesson counts as
	// completed.
	QuizPassingThreshold = 70
)

// VideoCompletes reports whether a watched percentage completes a video lesson.
func VideoCompletes(percentWatched int32) bool {
	return percentWatched >= VideoCompletionThreshold
}

// QuizPasses reports whether a quiz score completes a quiz lesson.
func QuizPasses(score int32) bool {
	return score >= QuizPassingThreshold
}

// OverallProgress computes round(100*completed/total), clamped to 100.
// A course with no lessons cannot have a percentage; callers surface that as
// InvalidState and display 0%.
func OverallProgress(completedCount, totalLessons int) (int32, error) {
	if totalLessons <= 0 {
		return 0, shared.NewInvalidState("course has no lessons, progress cannot be computed")
	}
	pct := shared.Percentage(completedCount, totalLessons)
	if pct > 100 {
		pct = 100
	}
	return pct, nil
}

// IsModuleCompleted reports whether every lesson of the module is in the
// completed set. A module with zero lessons is completed vacuously.
func IsModuleCompleted(m *shared.Module, p *shared.CourseProgress) bool {
	for _, l := range m.Lessons {
		if !p.HasCompletedLesson(shared.LessonKey(m.ID, l.ID)) {
			return false
		}
	}
	return true
}

// CompletedModules derives the ordered list of completed module ids.
func CompletedModules(c *shared.Course, p *shared.CourseProgress) []string {
	modules := make([]string, 0, len(c.Modules))
	for i := range c.Modules {
		if IsModuleCompleted(&c.Modules[i], p) {
			modules = append(modules, c.Modules[i].ID)
		}
	}
	return modules
}

// Recompute rederives overall_progress, completed_modules, and the completed
// flag from the completed-lesson set. The percentage and module list are
// never hand-set at finer granularity than a whole course; every mutation
// funnels through here.
func Recompute(c *shared.Course, p *shared.CourseProgress) error {
	pct, err := OverallProgress(len(p.CompletedLessons), c.TotalLessons())
	if err != nil {
		return err
	}

	p.OverallProgress = pct
	p.CompletedModules = CompletedModules(c, p)

	if pct >= 100 {
		if !p.Completed {
			p.Completed = true
			now := time.Now()
			p.CompletedDate = &now
		}
	} else {
		p.Completed = false
		p.CompletedDate = nil
	}
	return nil
}

// ValidateLesson checks that the (module, lesson) pair exists in the course.
func ValidateLesson(c *shared.Course, moduleID, lessonID string) error {
	if !c.HasLesson(moduleID, lessonID) {
		return shared.NewNotFound("lesson", fmt.Sprintf("%s/%s", moduleID, lessonID))
	}
	return nil
}
