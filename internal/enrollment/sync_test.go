package enrollment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
	"closercollege/internal/storage/memory"
)

// driftEnrollment plants an enrollment whose denormalized copy disagrees
// with the canonical progress record.
func driftEnrollment(t *testing.T, store *memory.Store, userID string, enrollPct, progressPct int32) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey(userID, testCourseID),
		UserID:   userID,
		CourseID: testCourseID,
		Status:   shared.StatusActive,
		Progress: enrollPct,
	}))
	require.NoError(t, store.InsertProgress(ctx, &shared.CourseProgress{
		ID:               shared.PairKey(userID, testCourseID),
		UserID:           userID,
		CourseID:         testCourseID,
		OverallProgress:  progressPct,
		CompletedLessons: []string{shared.LessonKey("m1", "l1")},
		CompletedModules: []string{},
	}))
}

func TestSyncAll_HealsDrift(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)
	ctx := context.Background()

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	report, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Details, 1)
	assert.Equal(t, int32(10), report.Details[0].OldProgress)
	assert.Equal(t, int32(50), report.Details[0].NewProgress)

	e, err := store.GetEnrollment(ctx, "learner-001", testCourseID)
	require.NoError(t, err)
	assert.Equal(t, int32(50), e.Progress)
	assert.Equal(t, []string{shared.LessonKey("m1", "l1")}, e.CompletedLessons)
}

func TestSyncAll_Idempotent(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)
	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	ctx := context.Background()

	first, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Synced)

	// Second pass over a consistent dataset writes nothing.
	second, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Synced)
	assert.Equal(t, 1, second.Skipped)
	assert.Equal(t, 0, second.Failed)
}

func TestSync_MissingProgressRecordIsSkipped(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	// Enrollment exists, learner never interacted with the course. The
	// enrollment must be left untouched, not zeroed.
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-001", testCourseID),
		UserID:   "learner-001",
		CourseID: testCourseID,
		Status:   shared.StatusActive,
		Progress: 30,
	}))

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	report, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Synced)
	assert.Equal(t, 1, report.Skipped)

	e, err := store.GetEnrollment(ctx, "learner-001", testCourseID)
	require.NoError(t, err)
	assert.Equal(t, int32(30), e.Progress)
}

func TestSync_StatusFollowsCompletion(t *testing.T) {
	store := seedStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-001", testCourseID),
		UserID:   "learner-001",
		CourseID: testCourseID,
		Status:   shared.StatusActive,
	}))
	require.NoError(t, store.InsertProgress(ctx, &shared.CourseProgress{
		ID:               shared.PairKey("learner-001", testCourseID),
		UserID:           "learner-001",
		CourseID:         testCourseID,
		OverallProgress:  100,
		Completed:        true,
		CompletedLessons: []string{shared.LessonKey("m1", "l1"), shared.LessonKey("m1", "l2")},
	}))

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	_, err := syncer.SyncAll(ctx)
	require.NoError(t, err)

	e, err := store.GetEnrollment(ctx, "learner-001", testCourseID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusCompleted, e.Status)
}

// flakyProgressStore fails reads for one pinned user.
type flakyProgressStore struct {
	storage.ProgressStore
	failUserID string
}

func (f *flakyProgressStore) GetProgress(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error) {
	if userID == f.failUserID {
		return nil, errors.New("storage hiccup")
	}
	return f.ProgressStore.GetProgress(ctx, userID, courseID)
}

func TestSync_FailureIsolation(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)
	driftEnrollment(t, store, "learner-002", 10, 50)
	ctx := context.Background()

	flaky := &flakyProgressStore{ProgressStore: store, failUserID: "learner-002"}
	syncer := NewSyncer(store, flaky, 4, shared.NopLogger())

	report, err := syncer.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Failed)

	// The healthy pair was still healed.
	e, err := store.GetEnrollment(ctx, "learner-001", testCourseID)
	require.NoError(t, err)
	assert.Equal(t, int32(50), e.Progress)
}

func TestSync_Cancellation(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	_, err := syncer.SyncAll(ctx)
	assert.Error(t, err)
}

func TestSync_CourseScope(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)
	ctx := context.Background()

	// Drifted pair in another course stays untouched under a course-scoped
	// sweep.
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-001", "other-course"),
		UserID:   "learner-001",
		CourseID: "other-course",
		Status:   shared.StatusActive,
		Progress: 10,
	}))
	require.NoError(t, store.InsertProgress(ctx, &shared.CourseProgress{
		ID:              shared.PairKey("learner-001", "other-course"),
		UserID:          "learner-001",
		CourseID:        "other-course",
		OverallProgress: 80,
	}))

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	report, err := syncer.Sync(ctx, "", testCourseID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)

	e, err := store.GetEnrollment(ctx, "learner-001", "other-course")
	require.NoError(t, err)
	assert.Equal(t, int32(10), e.Progress)
}

func TestSyncUser_SkipsRevoked(t *testing.T) {
	store := seedStore(t)
	driftEnrollment(t, store, "learner-001", 10, 50)
	ctx := context.Background()

	// A revoked enrollment for the same user must not be resurrected.
	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("learner-001", "other-course"),
		UserID:   "learner-001",
		CourseID: "other-course",
		Status:   shared.StatusRevoked,
	}))

	syncer := NewSyncer(store, store, 4, shared.NopLogger())
	report, err := syncer.SyncUser(ctx, "learner-001")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 0, report.Failed)

	e, err := store.GetEnrollment(ctx, "learner-001", "other-course")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusRevoked, e.Status)
}
