// ============================================================================
// internal/storage/storage.go
// Repository interfaces implemented by the mongodb and memory backends
// ============================================================================

package storage

import (
	"context"

	"closercollege/internal/shared"
)

// ProgressStore owns the canonical CourseProgress documents.
//
// UpdateProgress is a compare-and-swap: the passed record must carry the
// version it was read at; the store persists it with version+1 and returns a
// ConflictError if another writer got there first. This closes the
// lost-update race between concurrent lesson completions.
type ProgressStore interface {
	GetProgress(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error)
	InsertProgress(ctx context.Context, p *shared.CourseProgress) error
	UpdateProgress(ctx context.Context, p *shared.CourseProgress) error
	DeleteProgress(ctx context.Context, userID, courseID string) error
}

// EnrollmentFilter scopes enrollment listings. Zero values match everything.
type EnrollmentFilter struct {
	UserID   string
	CourseID string
	Status   string
}

// EnrollmentStore owns the Enrollment documents, keyed by the (user, course)
// pair so duplicate enrollments for a pair are unrepresentable.
type EnrollmentStore interface {
	GetEnrollment(ctx context.Context, userID, courseID string) (*shared.Enrollment, error)
	InsertEnrollment(ctx context.Context, e *shared.Enrollment) error
	UpdateEnrollment(ctx context.Context, e *shared.Enrollment) error
	ListEnrollments(ctx context.Context, f EnrollmentFilter) ([]shared.Enrollment, error)
}

// CourseStore provides read access to course metadata plus the upsert used
// by seeding and authoring.
type CourseStore interface {
	GetCourse(ctx context.Context, courseID string) (*shared.Course, error)
	ListCourses(ctx context.Context) ([]shared.Course, error)
	UpsertCourse(ctx context.Context, c *shared.Course) error
}

// UserStore owns user accounts.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*shared.User, error)
	FindUserByEmail(ctx context.Context, email string) (*shared.User, error)
	UpsertUser(ctx context.Context, u *shared.User) error
	CountUsersByRole(ctx context.Context, role string) (int64, error)
}

// SessionStore backs server-side JWT revocation.
type SessionStore interface {
	InsertSession(ctx context.Context, s *shared.Session) error
	CountSessionsByToken(ctx context.Context, token string) (int64, error)
	DeleteSessionsByToken(ctx context.Context, token string) (int64, error)
	DeleteSessionsByUser(ctx context.Context, userID string) error
}

// AuditStore is the append-only trail for privileged mutations.
type AuditStore interface {
	AppendAudit(ctx context.Context, rec *shared.AuditRecord) error
	ListAudit(ctx context.Context, limit int64) ([]shared.AuditRecord, error)
}

// CertificateStore owns completion certificates.
type CertificateStore interface {
	InsertCertificate(ctx context.Context, c *shared.Certificate) error
	FindCertificate(ctx context.Context, userID, courseID string) (*shared.Certificate, error)
	FindCertificateByCode(ctx context.Context, code string) (*shared.Certificate, error)
	ListCertificatesByUser(ctx context.Context, userID string) ([]shared.Certificate, error)
}

// Store aggregates every repository plus the cross-collection operations
// that must change together.
type Store interface {
	ProgressStore
	EnrollmentStore
	CourseStore
	UserStore
	SessionStore
	AuditStore
	CertificateStore

	// RevokeEnrollment marks the enrollment revoked and deletes the canonical
	// progress record in a single atomic step. NotFound when the pair has no
	// enrollment.
	RevokeEnrollment(ctx context.Context, userID, courseID string) error
}
