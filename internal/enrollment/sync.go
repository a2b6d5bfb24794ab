// ============================================================================
// internal/enrollment/sync.go
// Reconciliation sweep: enrollment docs re-derived from progress records
// ============================================================================

package enrollment

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Syncer reconciles enrollment documents against the canonical progress
// records. The progress record is the source of truth; enrollments carry a
// denormalized copy for fast dashboard reads, and this sweep heals any
// drift between the two.
type Syncer struct {
	enrollments storage.EnrollmentStore
	progress    storage.ProgressStore
	concurrency int
	log         *zap.SugaredLogger
}

// NewSyncer creates a Syncer. Concurrency bounds how many pairs are
// reconciled in parallel; values below 1 are treated as 1.
func NewSyncer(enrollments storage.EnrollmentStore, progress storage.ProgressStore, concurrency int, log *zap.SugaredLogger) *Syncer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Syncer{
		enrollments: enrollments,
		progress:    progress,
		concurrency: concurrency,
		log:         log,
	}
}

// Sync sweeps non-revoked enrollments. Either scope may be empty: an empty
// userID widens to all users, an empty courseID to all courses. Per-pair
// failures are isolated and reported; only cancellation aborts the sweep
// early.
func (s *Syncer) Sync(ctx context.Context, userID, courseID string) (*shared.SyncReport, error) {
	all, err := s.enrollments.ListEnrollments(ctx, storage.EnrollmentFilter{UserID: userID, CourseID: courseID})
	if err != nil {
		return nil, err
	}
	eligible := make([]shared.Enrollment, 0, len(all))
	for _, e := range all {
		if e.Status != shared.StatusRevoked {
			eligible = append(eligible, e)
		}
	}
	return s.sync(ctx, eligible)
}

// SyncAll sweeps every non-revoked enrollment on the platform.
func (s *Syncer) SyncAll(ctx context.Context) (*shared.SyncReport, error) {
	return s.Sync(ctx, "", "")
}

// SyncUser sweeps one user's non-revoked enrollments.
func (s *Syncer) SyncUser(ctx context.Context, userID string) (*shared.SyncReport, error) {
	return s.Sync(ctx, userID, "")
}

func (s *Syncer) sync(ctx context.Context, enrollments []shared.Enrollment) (*shared.SyncReport, error) {
	report := &shared.SyncReport{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range enrollments {
		e := enrollments[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			detail, changed, err := s.syncOne(gctx, &e)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				report.Failed++
				report.Details = append(report.Details, shared.SyncDetail{
					UserID:   e.UserID,
					CourseID: e.CourseID,
					Error:    err.Error(),
				})
				s.log.Warnw("enrollment sync failed",
					"user_id", e.UserID, "course_id", e.CourseID, "error", err)
			case changed:
				report.Synced++
				report.Details = append(report.Details, *detail)
			default:
				report.Skipped++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

// syncOne reconciles a single enrollment against its progress record. A
// missing progress record leaves the enrollment untouched rather than
// zeroing it.
func (s *Syncer) syncOne(ctx context.Context, e *shared.Enrollment) (*shared.SyncDetail, bool, error) {
	p, err := s.progress.GetProgress(ctx, e.UserID, e.CourseID)
	if shared.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	wantStatus := e.Status
	if p.Completed {
		wantStatus = shared.StatusCompleted
	} else if e.Status == shared.StatusCompleted {
		wantStatus = shared.StatusActive
	}

	if e.Progress == p.OverallProgress &&
		lessonsEqual(e.CompletedLessons, p.CompletedLessons) &&
		e.Status == wantStatus {
		return nil, false, nil
	}

	detail := &shared.SyncDetail{
		UserID:      e.UserID,
		CourseID:    e.CourseID,
		OldProgress: e.Progress,
		NewProgress: p.OverallProgress,
		Success:     true,
	}

	e.Progress = p.OverallProgress
	e.CompletedLessons = append([]string{}, p.CompletedLessons...)
	e.Status = wantStatus
	e.LastAccessedAt = p.LastAccessDate
	if e.LastAccessedAt.IsZero() {
		e.LastAccessedAt = time.Now()
	}
	if err := s.enrollments.UpdateEnrollment(ctx, e); err != nil {
		return nil, false, err
	}
	return detail, true, nil
}

func lessonsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
