package certificate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"closercollege/internal/shared"
	"closercollege/internal/storage/memory"
)

func TestIssueOnCompletion_Idempotent(t *testing.T) {
	svc := NewService(memory.Open(), shared.NopLogger())
	ctx := context.Background()

	first, err := svc.IssueOnCompletion(ctx, "learner-001", "course-selling", "Consultative Selling Fundamentals")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.Serial)
	assert.Len(t, first.VerificationCode, 12)

	second, err := svc.IssueOnCompletion(ctx, "learner-001", "course-selling", "Consultative Selling Fundamentals")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.VerificationCode, second.VerificationCode)

	certs, err := svc.ListByUser(ctx, "learner-001")
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}

func TestIssueOnCompletion_PerPair(t *testing.T) {
	svc := NewService(memory.Open(), shared.NopLogger())
	ctx := context.Background()

	a, err := svc.IssueOnCompletion(ctx, "learner-001", "course-a", "Course A")
	require.NoError(t, err)
	b, err := svc.IssueOnCompletion(ctx, "learner-001", "course-b", "Course B")
	require.NoError(t, err)
	assert.NotEqual(t, a.VerificationCode, b.VerificationCode)

	certs, err := svc.ListByUser(ctx, "learner-001")
	require.NoError(t, err)
	assert.Len(t, certs, 2)
}

func TestVerify(t *testing.T) {
	svc := NewService(memory.Open(), shared.NopLogger())
	ctx := context.Background()

	issued, err := svc.IssueOnCompletion(ctx, "learner-001", "course-selling", "Consultative Selling Fundamentals")
	require.NoError(t, err)

	found, err := svc.Verify(ctx, issued.VerificationCode)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, found.ID)
	assert.Equal(t, "Consultative Selling Fundamentals", found.CourseName)

	// Codes are matched case-insensitively; employers retype them.
	found, err = svc.Verify(ctx, " "+issued.VerificationCode+" ")
	require.NoError(t, err)
	assert.Equal(t, issued.ID, found.ID)

	_, err = svc.Verify(ctx, "NOSUCHCODE99")
	assert.True(t, shared.IsNotFound(err))

	_, err = svc.Verify(ctx, "")
	assert.True(t, shared.IsInvalidState(err))
}
