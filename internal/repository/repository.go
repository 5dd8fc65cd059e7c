package repository

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore provides user persistence operations.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByProvider(ctx context.Context, provider, providerID string) (*models.User, error)
}

// TransactionStore provides transaction persistence operations.
type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionStore provides session persistence operations.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, token string) (*models.Session, error)
	Renew(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Stores bundles the Mongo-backed store implementations.
type Stores struct {
	Users        UserStore
	Transactions TransactionStore
	Sessions     SessionStore
}

// Connect opens a MongoDB client and verifies connectivity.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// NewStores initializes the stores and ensures indexes exist.
func NewStores(ctx context.Context, db *mongo.Database) (*Stores, error) {
	users := &mongoUsers{coll: db.Collection("users")}
	transactions := &mongoTransactions{coll: db.Collection("transactions")}
	sessions := &mongoSessions{coll: db.Collection("sessions")}

	for _, ensure := range []func(context.Context) error{
		users.ensureIndexes,
		transactions.ensureIndexes,
		sessions.ensureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return &Stores{
		Users:        users,
		Transactions: transactions,
		Sessions:     sessions,
	}, nil
}
