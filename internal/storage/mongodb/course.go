// ============================================================================
// internal/storage/mongodb/course.go
// Course catalog documents (read side of course authoring)
// ============================================================================

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"closercollege/internal/shared"
)

func (s *Store) GetCourse(ctx context.Context, courseID string) (*shared.Course, error) {
	var c shared.Course
	err := s.coursesCol.FindOne(ctx, bson.M{"_id": courseID}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("course", courseID)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListCourses(ctx context.Context) ([]shared.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.coursesCol.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []shared.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *Store) UpsertCourse(ctx context.Context, c *shared.Course) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.coursesCol.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, opts)
	return err
}
