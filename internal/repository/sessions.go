package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSessions struct {
	coll *mongo.Collection
}

func (r *mongoSessions) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "expiresAt", Value: 1}},
		},
	})
	return err
}

func (r *mongoSessions) Create(ctx context.Context, session *models.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Find returns a live session; expired sessions are treated as missing.
func (r *mongoSessions) Find(ctx context.Context, token string) (*models.Session, error) {
	session := &models.Session{}
	err := r.coll.FindOne(ctx, bson.M{
		"token":     token,
		"expiresAt": bson.M{"$gt": time.Now()},
	}).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// Renew extends a session's expiry.
func (r *mongoSessions) Renew(ctx context.Context, token string, expiresAt time.Time) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"expiresAt": expiresAt}},
	)
	if err != nil {
		return fmt.Errorf("failed to renew session: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoSessions) Delete(ctx context.Context, token string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many.
func (r *mongoSessions) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.DeletedCount, nil
}
