package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"closercollege/internal/shared"
)

func TestOverallProgress(t *testing.T) {
	cases := []struct {
		completed, total int
		want             int32
	}{
		{0, 4, 0},
		{1, 4, 25},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{5, 4, 100}, // stale set larger than the course; clamp
	}
	for _, tc := range cases {
		got, err := OverallProgress(tc.completed, tc.total)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "completed=%d total=%d", tc.completed, tc.total)
	}
}

func TestOverallProgress_NoLessons(t *testing.T) {
	_, err := OverallProgress(0, 0)
	assert.True(t, shared.IsInvalidState(err))

	_, err = OverallProgress(0, -1)
	assert.True(t, shared.IsInvalidState(err))
}

func TestVideoAndQuizThresholds(t *testing.T) {
	assert.False(t, VideoCompletes(94))
	assert.True(t, VideoCompletes(95))
	assert.True(t, VideoCompletes(100))

	assert.False(t, QuizPasses(69))
	assert.True(t, QuizPasses(70))
	assert.True(t, QuizPasses(100))
}

func TestIsModuleCompleted(t *testing.T) {
	m := &shared.Module{ID: "m1", Lessons: []shared.Lesson{
		{ID: "l1", Type: shared.LessonTypeVideo},
		{ID: "l2", Type: shared.LessonTypeQuiz},
	}}
	p := &shared.CourseProgress{}

	assert.False(t, IsModuleCompleted(m, p))

	p.AddCompletedLesson(shared.LessonKey("m1", "l1"))
	assert.False(t, IsModuleCompleted(m, p))

	p.AddCompletedLesson(shared.LessonKey("m1", "l2"))
	assert.True(t, IsModuleCompleted(m, p))

	// Zero-lesson module is completed vacuously.
	empty := &shared.Module{ID: "m9"}
	assert.True(t, IsModuleCompleted(empty, &shared.CourseProgress{}))
}

func TestRecompute_CompletionTransition(t *testing.T) {
	c := &shared.Course{ID: "c1", Modules: []shared.Module{
		{ID: "m1", Lessons: []shared.Lesson{{ID: "l1"}, {ID: "l2"}}},
	}}
	p := &shared.CourseProgress{}

	p.AddCompletedLesson(shared.LessonKey("m1", "l1"))
	require.NoError(t, Recompute(c, p))
	assert.Equal(t, int32(50), p.OverallProgress)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedDate)
	assert.Empty(t, p.CompletedModules)

	p.AddCompletedLesson(shared.LessonKey("m1", "l2"))
	require.NoError(t, Recompute(c, p))
	assert.Equal(t, int32(100), p.OverallProgress)
	assert.True(t, p.Completed)
	require.NotNil(t, p.CompletedDate)
	assert.Equal(t, []string{"m1"}, p.CompletedModules)

	first := *p.CompletedDate

	// Already complete: the date must not move.
	require.NoError(t, Recompute(c, p))
	assert.Equal(t, first, *p.CompletedDate)

	// Dropping below 100 clears both flag and date.
	p.RemoveCompletedLesson(shared.LessonKey("m1", "l2"))
	require.NoError(t, Recompute(c, p))
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedDate)
}

func TestValidateLesson(t *testing.T) {
	c := &shared.Course{ID: "c1", Modules: []shared.Module{
		{ID: "m1", Lessons: []shared.Lesson{{ID: "l1"}}},
	}}

	assert.NoError(t, ValidateLesson(c, "m1", "l1"))
	assert.True(t, shared.IsNotFound(ValidateLesson(c, "m1", "nope")))
	assert.True(t, shared.IsNotFound(ValidateLesson(c, "nope", "l1")))
}
