package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user in the system
type User struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	Name           string             `json:"name" bson:"name"`
	PasswordHash   string             `json:"-" bson:"passwordHash,omitempty"` // Not serialized
	Gender         string             `json:"gender" bson:"gender,omitempty"`
	ProfilePicture string             `json:"profilePicture" bson:"profilePicture,omitempty"`
	Provider       string             `json:"-" bson:"provider,omitempty"`
	ProviderID     string             `json:"-" bson:"providerId,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"createdAt"`
}
