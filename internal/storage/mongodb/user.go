// ============================================================================
// internal/storage/mongodb/user.go
// User accounts and server-side session records
// ============================================================================

package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"closercollege/internal/shared"
)

func (s *Store) GetUser(ctx context.Context, userID string) (*shared.User, error) {
	var u shared.User
	err := s.usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("user", userID)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	var u shared.User
	err := s.usersCol.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, shared.NewNotFound("user", email)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpsertUser(ctx context.Context, u *shared.User) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.usersCol.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, opts)
	return err
}

func (s *Store) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return s.usersCol.CountDocuments(ctx, bson.M{"role": role})
}

// ============================================================================
// Sessions
// ============================================================================

func (s *Store) InsertSession(ctx context.Context, sess *shared.Session) error {
	_, err := s.sessionsCol.InsertOne(ctx, sess)
	return err
}

func (s *Store) CountSessionsByToken(ctx context.Context, token string) (int64, error) {
	return s.sessionsCol.CountDocuments(ctx, bson.M{"token": token})
}

func (s *Store) DeleteSessionsByToken(ctx context.Context, token string) (int64, error) {
	res, err := s.sessionsCol.DeleteMany(ctx, bson.M{"token": token})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := s.sessionsCol.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
