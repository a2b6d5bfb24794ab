package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"closercollege/internal/progress"
	"closercollege/internal/shared"
	"closercollege/internal/storage/memory"
)

const (
	adminID      = "admin-001"
	learnerID    = "learner-001"
	testCourseID = "course-selling"
)

func seedCourse() *shared.Course {
	return &shared.Course{
		ID:          testCourseID,
		Name:        "Consultative Selling Fundamentals",
		IsPublished: true,
		Modules: []shared.Module{
			{ID: "m1", Lessons: []shared.Lesson{
				{ID: "l1", Type: shared.LessonTypeVideo},
				{ID: "l2", Type: shared.LessonTypeQuiz},
			}},
			{ID: "m2", Lessons: []shared.Lesson{
				{ID: "l1", Type: shared.LessonTypeVideo},
				{ID: "l2", Type: shared.LessonTypeQuiz},
			}},
		},
	}
}

func newTestAdminService(t *testing.T) (*Service, *progress.Service, *memory.Store) {
	t.Helper()
	store := memory.Open()
	ctx := context.Background()

	require.NoError(t, store.UpsertCourse(ctx, seedCourse()))
	require.NoError(t, store.UpsertUser(ctx, &shared.User{
		ID: adminID, Email: "admin@closercollege.com", Role: shared.RoleAdmin, IsActive: true,
	}))
	require.NoError(t, store.UpsertUser(ctx, &shared.User{
		ID: learnerID, Email: "learner@example.com", Role: shared.RoleLearner, IsActive: true,
	}))
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey(learnerID, testCourseID),
		UserID:   learnerID,
		CourseID: testCourseID,
		Status:   shared.StatusActive,
	}))

	progressSvc := progress.NewService(store, store, store, nil, shared.NopLogger())
	return NewService(progressSvc, store, shared.NopLogger()), progressSvc, store
}

func TestMarkCourseComplete(t *testing.T) {
	svc, _, store := newTestAdminService(t)
	ctx := context.Background()

	p, err := svc.MarkCourseComplete(ctx, adminID, learnerID, testCourseID, "support ticket 4821")
	require.NoError(t, err)
	assert.Equal(t, int32(100), p.OverallProgress)
	assert.True(t, p.Completed)
	require.NotNil(t, p.CompletedDate)
	assert.Len(t, p.CompletedLessons, 4)
	assert.ElementsMatch(t, []string{"m1", "m2"}, p.CompletedModules)

	e, err := store.GetEnrollment(ctx, learnerID, testCourseID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusCompleted, e.Status)

	records, err := svc.ListAudit(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, shared.ActionMarkCourseComplete, records[0].Action)
	assert.Equal(t, adminID, records[0].ActorID)
	assert.Equal(t, shared.PairKey(learnerID, testCourseID), records[0].Target)
	assert.Equal(t, "support ticket 4821", records[0].Note)
}

// TestResetThenCompleteRoundTrip checks that a reset leaves no residue: a
// forced completion after a reset looks exactly like a forced completion on
// a fresh record.
func TestResetThenCompleteRoundTrip(t *testing.T) {
	svc, progressSvc, _ := newTestAdminService(t)
	ctx := context.Background()

	// Accumulate messy organic state first.
	_, err := progressSvc.RecordVideoProgress(ctx, learnerID, testCourseID, "m1", "l1", 50, 300)
	require.NoError(t, err)
	_, err = progressSvc.RecordQuizResult(ctx, learnerID, testCourseID, "m1", "l2", 85)
	require.NoError(t, err)

	p, err := svc.ResetCourseProgress(ctx, adminID, learnerID, testCourseID, "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), p.OverallProgress)
	assert.False(t, p.Completed)
	assert.Nil(t, p.CompletedDate)
	assert.Empty(t, p.CompletedLessons)
	assert.Empty(t, p.CompletedModules)
	assert.Empty(t, p.LessonProgress)
	assert.Nil(t, p.LastPosition)

	p, err = svc.MarkCourseComplete(ctx, adminID, learnerID, testCourseID, "")
	require.NoError(t, err)
	assert.Equal(t, int32(100), p.OverallProgress)
	assert.True(t, p.Completed)
	assert.Len(t, p.CompletedLessons, 4)
	for _, key := range seedCourse().AllLessonKeys() {
		assert.Equal(t, int32(100), p.LessonProgress[key].Progress, key)
	}
}

func TestModuleOverrides(t *testing.T) {
	svc, _, _ := newTestAdminService(t)
	ctx := context.Background()

	p, err := svc.MarkModuleComplete(ctx, adminID, learnerID, testCourseID, "m1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(50), p.OverallProgress)
	assert.Equal(t, []string{"m1"}, p.CompletedModules)
	assert.False(t, p.Completed)

	_, err = svc.MarkModuleComplete(ctx, adminID, learnerID, testCourseID, "ghost", "")
	assert.True(t, shared.IsNotFound(err))

	p, err = svc.ResetModuleProgress(ctx, adminID, learnerID, testCourseID, "m1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), p.OverallProgress)
	assert.Empty(t, p.CompletedLessons)
}

func TestLessonOverrides(t *testing.T) {
	svc, _, _ := newTestAdminService(t)
	ctx := context.Background()

	p, err := svc.MarkLessonComplete(ctx, adminID, learnerID, testCourseID, "m1", "l1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(25), p.OverallProgress)
	assert.True(t, p.HasCompletedLesson(shared.LessonKey("m1", "l1")))

	_, err = svc.MarkLessonComplete(ctx, adminID, learnerID, testCourseID, "m1", "ghost", "")
	assert.True(t, shared.IsNotFound(err))

	p, err = svc.ResetLessonProgress(ctx, adminID, learnerID, testCourseID, "m1", "l1", "")
	require.NoError(t, err)
	assert.Equal(t, int32(0), p.OverallProgress)
	assert.False(t, p.HasCompletedLesson(shared.LessonKey("m1", "l1")))
}

func TestOverride_NoEnrollmentFailsClosed(t *testing.T) {
	svc, _, store := newTestAdminService(t)
	ctx := context.Background()

	// No enrollment for this pair: the override must refuse, and must not
	// manufacture a progress record on the way out.
	_, err := svc.MarkCourseComplete(ctx, adminID, "stranger", testCourseID, "")
	assert.True(t, shared.IsNotFound(err))

	_, err = store.GetProgress(ctx, "stranger", testCourseID)
	assert.True(t, shared.IsNotFound(err))
}

func TestRevokeEnrollment(t *testing.T) {
	svc, progressSvc, store := newTestAdminService(t)
	ctx := context.Background()

	_, err := progressSvc.RecordLessonCompletion(ctx, learnerID, testCourseID, "m1", "l1")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeEnrollment(ctx, adminID, learnerID, testCourseID, "policy violation"))

	e, err := store.GetEnrollment(ctx, learnerID, testCourseID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusRevoked, e.Status)
	assert.Equal(t, int32(0), e.Progress)

	// Canonical record is gone with the revocation.
	_, err = store.GetProgress(ctx, learnerID, testCourseID)
	assert.True(t, shared.IsNotFound(err))

	// Learner writes are now rejected.
	_, err = progressSvc.RecordLessonCompletion(ctx, learnerID, testCourseID, "m1", "l2")
	assert.True(t, shared.IsInvalidState(err))

	// Revoking twice is an error, not a silent no-op.
	err = svc.RevokeEnrollment(ctx, adminID, learnerID, testCourseID, "")
	assert.True(t, shared.IsInvalidState(err))

	// Missing pair.
	err = svc.RevokeEnrollment(ctx, adminID, "stranger", testCourseID, "")
	assert.True(t, shared.IsNotFound(err))
}

func TestGetPlatformStats(t *testing.T) {
	svc, _, store := newTestAdminService(t)
	ctx := context.Background()

	// Seeded: one active enrollment at 0%. Add a completed one at 100% and
	// a revoked one that must be excluded from the percentiles.
	require.NoError(t, store.UpsertUser(ctx, &shared.User{
		ID: "learner-002", Email: "learner2@example.com", Role: shared.RoleLearner, IsActive: true,
	}))
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-002", testCourseID),
		UserID:   "learner-002",
		CourseID: testCourseID,
		Status:   shared.StatusCompleted,
		Progress: 100,
	}))
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-002", "other-course"),
		UserID:   "learner-002",
		CourseID: "other-course",
		Status:   shared.StatusRevoked,
		Progress: 40,
	}))

	out, err := svc.GetPlatformStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), out.TotalLearners)
	assert.Equal(t, int64(1), out.TotalCourses)
	assert.Equal(t, int64(1), out.ActiveEnrollments)
	assert.Equal(t, int64(1), out.CompletedCourses)
	assert.InDelta(t, 50.0, out.MeanProgress, 0.001)
	assert.InDelta(t, 50.0, out.MedianProgress, 0.001)
}

func TestAudit_EveryOverrideLeavesATrail(t *testing.T) {
	svc, _, _ := newTestAdminService(t)
	ctx := context.Background()

	_, err := svc.MarkLessonComplete(ctx, adminID, learnerID, testCourseID, "m1", "l1", "")
	require.NoError(t, err)
	_, err = svc.MarkModuleComplete(ctx, adminID, learnerID, testCourseID, "m2", "")
	require.NoError(t, err)
	_, err = svc.ResetCourseProgress(ctx, adminID, learnerID, testCourseID, "")
	require.NoError(t, err)

	records, err := svc.ListAudit(ctx, 50)
	require.NoError(t, err)
	require.Len(t, records, 3)

	actions := make([]string, len(records))
	for i, r := range records {
		actions[i] = r.Action
	}
	assert.ElementsMatch(t, []string{
		shared.ActionMarkLessonComplete,
		shared.ActionMarkModuleComplete,
		shared.ActionResetCourseProgress,
	}, actions)
}
