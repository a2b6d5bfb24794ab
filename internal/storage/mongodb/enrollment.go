// ============================================================================
// internal/storage/mongodb/enrollment.go
// Enrollment documents, deterministically keyed by "{userID}_{courseID}"
// ============================================================================

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

func (s *Store) GetEnrollment(ctx context.Context, userID, courseID string) (*shared.Enrollment, error) {
	key := shared.PairKey(userID, courseID)

	var e shared.Enrollment
	err := s.enrollmentsCol.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("enrollment", key)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) InsertEnrollment(ctx context.Context, e *shared.Enrollment) error {
	_, err := s.enrollmentsCol.InsertOne(ctx, e)
	if mongo.IsDuplicateKeyError(err) {
		return shared.NewConflict("enrollment", e.ID, "")
	}
	return err
}

func (s *Store) UpdateEnrollment(ctx context.Context, e *shared.Enrollment) error {
	res, err := s.enrollmentsCol.ReplaceOne(ctx, bson.M{"_id": e.ID}, e)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return shared.NewNotFound("enrollment", e.ID)
	}
	return nil
}

func (s *Store) ListEnrollments(ctx context.Context, f storage.EnrollmentFilter) ([]shared.Enrollment, error) {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.CourseID != "" {
		filter["course_id"] = f.CourseID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.enrollmentsCol.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []shared.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}
