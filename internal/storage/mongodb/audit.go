// ============================================================================
// internal/storage/mongodb/audit.go
// Append-only audit trail and completion certificates
// ============================================================================

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"closercollege/internal/shared"
)

func (s *Store) AppendAudit(ctx context.Context, rec *shared.AuditRecord) error {
	_, err := s.auditCol.InsertOne(ctx, rec)
	return err
}

func (s *Store) ListAudit(ctx context.Context, limit int64) ([]shared.AuditRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.auditCol.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []shared.AuditRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ============================================================================
// Certificates
// ============================================================================

func (s *Store) InsertCertificate(ctx context.Context, c *shared.Certificate) error {
	_, err := s.certificatesCol.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return shared.NewConflict("certificate", c.ID, "already issued for pair")
	}
	return err
}

func (s *Store) FindCertificate(ctx context.Context, userID, courseID string) (*shared.Certificate, error) {
	var c shared.Certificate
	err := s.certificatesCol.FindOne(ctx, bson.M{"user_id": userID, "course_id": courseID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("certificate", shared.PairKey(userID, courseID))
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindCertificateByCode(ctx context.Context, code string) (*shared.Certificate, error) {
	var c shared.Certificate
	err := s.certificatesCol.FindOne(ctx, bson.M{"verification_code": code}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("certificate", code)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCertificatesByUser(ctx context.Context, userID string) ([]shared.Certificate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issued_at", Value: 1}})
	cursor, err := s.certificatesCol.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var certs []shared.Certificate
	if err := cursor.All(ctx, &certs); err != nil {
		return nil, err
	}
	return certs, nil
}
