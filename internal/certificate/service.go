// ============================================================================
// internal/certificate/service.go
// Completion certificates: issuance, verification, listing
// ============================================================================

package certificate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Service issues and verifies completion certificates. At most one
// certificate exists per (user, course) pair; issuance is idempotent.
type Service struct {
	certs storage.CertificateStore
	log   *zap.SugaredLogger
}

// NewService creates a certificate Service.
func NewService(certs storage.CertificateStore, log *zap.SugaredLogger) *Service {
	return &Service{certs: certs, log: log}
}

// IssueOnCompletion issues a certificate for the pair, or returns the
// existing one. Two racing issuers still yield a single certificate: the
// loser's insert conflicts and is resolved by re-reading.
func (s *Service) IssueOnCompletion(ctx context.Context, userID, courseID, courseName string) (*shared.Certificate, error) {
	existing, err := s.certs.FindCertificate(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !shared.IsNotFound(err) {
		return nil, err
	}

	now := time.Now()
	cert := &shared.Certificate{
		ID:               uuid.NewString(),
		UserID:           userID,
		CourseID:         courseID,
		CourseName:       courseName,
		Serial:           fmt.Sprintf("CC-%s-%06d", now.Format("2006"), now.UnixNano()%1000000),
		VerificationCode: strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
		IssuedAt:         now,
	}
	if err := s.certs.InsertCertificate(ctx, cert); err != nil {
		if shared.IsConflict(err) {
			return s.certs.FindCertificate(ctx, userID, courseID)
		}
		return nil, err
	}

	s.log.Infow("certificate issued",
		"user_id", userID, "course_id", courseID, "serial", cert.Serial)
	return cert, nil
}

// Verify looks a certificate up by its public verification code.
func (s *Service) Verify(ctx context.Context, code string) (*shared.Certificate, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewInvalidState("verification code is empty")
	}
	return s.certs.FindCertificateByCode(ctx, code)
}

// ListByUser returns every certificate the user has earned.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]shared.Certificate, error) {
	return s.certs.ListCertificatesByUser(ctx, userID)
}
