package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

func TestProgressCAS(t *testing.T) {
	store := Open()
	ctx := context.Background()

	p := &shared.CourseProgress{
		ID:       shared.PairKey("u1", "c1"),
		UserID:   "u1",
		CourseID: "c1",
	}
	require.NoError(t, store.InsertProgress(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	// Two readers at the same version: the second writer loses.
	a, err := store.GetProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	b, err := store.GetProgress(ctx, "u1", "c1")
	require.NoError(t, err)

	a.OverallProgress = 25
	require.NoError(t, store.UpdateProgress(ctx, a))
	assert.Equal(t, int64(2), a.Version)

	b.OverallProgress = 50
	err = store.UpdateProgress(ctx, b)
	assert.True(t, shared.IsConflict(err))

	// The winner's write survives.
	got, err := store.GetProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, int32(25), got.OverallProgress)

	// Re-read and retry clears the conflict.
	b, err = store.GetProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	b.OverallProgress = 50
	assert.NoError(t, store.UpdateProgress(ctx, b))
}

func TestInsertProgress_DuplicateConflicts(t *testing.T) {
	store := Open()
	ctx := context.Background()

	p := &shared.CourseProgress{ID: shared.PairKey("u1", "c1"), UserID: "u1", CourseID: "c1"}
	require.NoError(t, store.InsertProgress(ctx, p))

	dup := &shared.CourseProgress{ID: shared.PairKey("u1", "c1"), UserID: "u1", CourseID: "c1"}
	assert.True(t, shared.IsConflict(store.InsertProgress(ctx, dup)))
}

func TestStoredDocumentsDoNotAlias(t *testing.T) {
	store := Open()
	ctx := context.Background()

	p := &shared.CourseProgress{
		ID:               shared.PairKey("u1", "c1"),
		UserID:           "u1",
		CourseID:         "c1",
		CompletedLessons: []string{"m1_l1"},
		LessonProgress:   map[string]shared.LessonProgress{"m1_l1": {Progress: 100}},
	}
	require.NoError(t, store.InsertProgress(ctx, p))

	// Mutating the caller's copy must not leak into the store.
	p.CompletedLessons[0] = "tampered"
	p.LessonProgress["m1_l1"] = shared.LessonProgress{Progress: 1}

	got, err := store.GetProgress(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1_l1"}, got.CompletedLessons)
	assert.Equal(t, int32(100), got.LessonProgress["m1_l1"].Progress)
}

func TestRevokeEnrollment_Atomic(t *testing.T) {
	store := Open()
	ctx := context.Background()

	require.NoError(t, store.InsertEnrollment(ctx, &shared.Enrollment{
		ID:       shared.PairKey("u1", "c1"),
		UserID:   "u1",
		CourseID: "c1",
		Status:   shared.StatusActive,
		Progress: 40,
	}))
	require.NoError(t, store.InsertProgress(ctx, &shared.CourseProgress{
		ID: shared.PairKey("u1", "c1"), UserID: "u1", CourseID: "c1", OverallProgress: 40,
	}))

	require.NoError(t, store.RevokeEnrollment(ctx, "u1", "c1"))

	e, err := store.GetEnrollment(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusRevoked, e.Status)
	assert.Equal(t, int32(0), e.Progress)

	_, err = store.GetProgress(ctx, "u1", "c1")
	assert.True(t, shared.IsNotFound(err))

	assert.True(t, shared.IsNotFound(store.RevokeEnrollment(ctx, "ghost", "c1")))
}

func TestListEnrollments_Filter(t *testing.T) {
	store := Open()
	ctx := context.Background()

	seed := []shared.Enrollment{
		{ID: "u1_c1", UserID: "u1", CourseID: "c1", Status: shared.StatusActive},
		{ID: "u1_c2", UserID: "u1", CourseID: "c2", Status: shared.StatusCompleted},
		{ID: "u2_c1", UserID: "u2", CourseID: "c1", Status: shared.StatusActive},
	}
	for i := range seed {
		require.NoError(t, store.InsertEnrollment(ctx, &seed[i]))
	}

	all, err := store.ListEnrollments(ctx, storage.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byUser, err := store.ListEnrollments(ctx, storage.EnrollmentFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	byStatus, err := store.ListEnrollments(ctx, storage.EnrollmentFilter{Status: shared.StatusActive})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	narrow, err := store.ListEnrollments(ctx, storage.EnrollmentFilter{UserID: "u1", CourseID: "c1", Status: shared.StatusActive})
	require.NoError(t, err)
	require.Len(t, narrow, 1)
	assert.Equal(t, "u1_c1", narrow[0].ID)
}
