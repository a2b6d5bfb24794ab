// ============================================================================
// internal/storage/mongodb/progress.go
// Canonical CourseProgress documents with versioned compare-and-swap writes
// ============================================================================

package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"closercollege/internal/shared"
)

func (s *Store) GetProgress(ctx context.Context, userID, courseID string) (*shared.CourseProgress, error) {
	key := shared.PairKey(userID, courseID)

	var p shared.CourseProgress
	err := s.progressCol.FindOne(ctx, bson.M{"_id": key}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("course progress", key)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) InsertProgress(ctx context.Context, p *shared.CourseProgress) error {
	p.Version = 1
	_, err := s.progressCol.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return shared.NewConflict("course progress", p.ID, "")
	}
	return err
}

// UpdateProgress replaces the document only if its stored version still
// matches the version the caller read. A matched count of zero means either
// the record is gone or another writer won the race; the follow-up existence
// check tells the two apart.
func (s *Store) UpdateProgress(ctx context.Context, p *shared.CourseProgress) error {
	readVersion := p.Version
	p.Version = readVersion + 1
	p.UpdatedAt = time.Now()

	res, err := s.progressCol.ReplaceOne(ctx, bson.M{"_id": p.ID, "version": readVersion}, p)
	if err != nil {
		p.Version = readVersion
		return err
	}
	if res.MatchedCount == 0 {
		p.Version = readVersion
		count, err := s.progressCol.CountDocuments(ctx, bson.M{"_id": p.ID})
		if err != nil {
			return err
		}
		if count == 0 {
			return shared.NewNotFound("course progress", p.ID)
		}
		return shared.NewConflict("course progress", p.ID, "version mismatch")
	}
	return nil
}

func (s *Store) DeleteProgress(ctx context.Context, userID, courseID string) error {
	_, err := s.progressCol.DeleteOne(ctx, bson.M{"_id": shared.PairKey(userID, courseID)})
	return err
}
