package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session links a session-cookie token to a user
type Session struct {
	Token     string             `json:"-" bson:"token"`
	UserID    primitive.ObjectID `json:"user_id" bson:"userId"`
	CreatedAt time.Time          `json:"created_at" bson:"createdAt"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expiresAt"`
}
