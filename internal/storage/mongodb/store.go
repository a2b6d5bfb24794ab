// ============================================================================
// internal/storage/mongodb/store.go
// MongoDB storage backend: collections, indexes, cross-collection operations
// ============================================================================

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Store implements storage.Store on top of MongoDB.
type Store struct {
	client          *mongo.Client
	db              *mongo.Database
	progressCol     *mongo.Collection
	enrollmentsCol  *mongo.Collection
	coursesCol      *mongo.Collection
	usersCol        *mongo.Collection
	sessionsCol     *mongo.Collection
	auditCol        *mongo.Collection
	certificatesCol *mongo.Collection
}

var _ storage.Store = (*Store)(nil)

// New creates a Store bound to the given database.
func New(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:          client,
		db:              db,
		progressCol:     db.Collection("course_progress"),
		enrollmentsCol:  db.Collection("enrollments"),
		coursesCol:      db.Collection("courses"),
		usersCol:        db.Collection("users"),
		sessionsCol:     db.Collection("sessions"),
		auditCol:        db.Collection("audit_logs"),
		certificatesCol: db.Collection("certificates"),
	}
}

// EnsureIndexes creates the secondary indexes the query paths rely on.
// Idempotent; called once at startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.enrollmentsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "course_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("enrollment indexes: %w", err)
	}

	_, err = s.certificatesCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "verification_code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("certificate indexes: %w", err)
	}

	_, err = s.sessionsCol.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "token", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("session indexes: %w", err)
	}

	_, err = s.usersCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	_, err = s.auditCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}

	return nil
}

// RevokeEnrollment flips the enrollment to revoked and removes the canonical
// progress document in one transaction, so a crash between the two writes
// cannot leave a revoked enrollment with live progress.
func (s *Store) RevokeEnrollment(ctx context.Context, userID, courseID string) error {
	key := shared.PairKey(userID, courseID)

	return shared.WithTransaction(ctx, s.client, func(sessCtx mongo.SessionContext) error {
		res, err := s.enrollmentsCol.UpdateOne(sessCtx,
			bson.M{"_id": key},
			bson.M{"$set": bson.M{
				"status":            shared.StatusRevoked,
				"progress":          0,
				"completed_lessons": []string{},
			}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return shared.NewNotFound("enrollment", key)
		}

		_, err = s.progressCol.DeleteOne(sessCtx, bson.M{"_id": key})
		return err
	})
}
