package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairAndLessonKeys(t *testing.T) {
	assert.Equal(t, "learner-001_course-selling", PairKey("learner-001", "course-selling"))
	assert.Equal(t, "m1_l2", LessonKey("m1", "l2"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, int32(0), Percentage(0, 4))
	assert.Equal(t, int32(25), Percentage(1, 4))
	assert.Equal(t, int32(33), Percentage(1, 3))
	assert.Equal(t, int32(67), Percentage(2, 3))
	assert.Equal(t, int32(100), Percentage(3, 3))
	assert.Equal(t, int32(0), Percentage(5, 0))
}

func TestCompletedLessonSet(t *testing.T) {
	p := &CourseProgress{}

	assert.True(t, p.AddCompletedLesson("m2_l1"))
	assert.True(t, p.AddCompletedLesson("m1_l1"))
	assert.False(t, p.AddCompletedLesson("m1_l1"))
	assert.Equal(t, []string{"m1_l1", "m2_l1"}, p.CompletedLessons)
	assert.True(t, p.HasCompletedLesson("m2_l1"))

	assert.True(t, p.RemoveCompletedLesson("m1_l1"))
	assert.False(t, p.RemoveCompletedLesson("m1_l1"))
	assert.Equal(t, []string{"m2_l1"}, p.CompletedLessons)
}

func TestCourseHelpers(t *testing.T) {
	c := &Course{Modules: []Module{
		{ID: "m1", Lessons: []Lesson{{ID: "l1"}, {ID: "l2"}}},
		{ID: "m2", Lessons: []Lesson{{ID: "l1"}}},
	}}

	assert.Equal(t, 3, c.TotalLessons())
	assert.True(t, c.HasLesson("m2", "l1"))
	assert.False(t, c.HasLesson("m2", "l2"))
	assert.Nil(t, c.FindModule("ghost"))
	assert.Equal(t, []string{"m1_l1", "m1_l2", "m2_l1"}, c.AllLessonKeys())
}
