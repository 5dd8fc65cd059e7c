package repository

import (
	"context"
	"sync"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryStores returns store implementations backed by process memory.
// They carry the same semantics as the Mongo stores (duplicate usernames,
// insertion order, expired-session filtering) and back the test suites.
func NewMemoryStores() *Stores {
	return &Stores{
		Users:        &memoryUsers{byID: make(map[primitive.ObjectID]*models.User)},
		Transactions: &memoryTransactions{byID: make(map[primitive.ObjectID]*models.Transaction)},
		Sessions:     &memorySessions{byToken: make(map[string]*models.Session)},
	}
}

type memoryUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Username == user.Username {
			return apperrors.ErrDuplicateUser
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	r.byID[user.ID] = &copied
	return nil
}

func (r *memoryUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.byID[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryUsers) FindByProvider(_ context.Context, provider, providerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.byID {
		if user.Provider == provider && user.ProviderID == providerID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type memoryTransactions struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.Transaction
	order []primitive.ObjectID
}

func (r *memoryTransactions) Create(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	copied := *tx
	r.byID[tx.ID] = &copied
	r.order = append(r.order, tx.ID)
	return nil
}

func (r *memoryTransactions) FindByID(_ context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx, ok := r.byID[id]; ok {
		copied := *tx
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *memoryTransactions) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var transactions []models.Transaction
	for _, id := range r.order {
		if tx, ok := r.byID[id]; ok && tx.UserID == userID {
			transactions = append(transactions, *tx)
		}
	}
	return transactions, nil
}

func (r *memoryTransactions) Update(_ context.Context, tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[tx.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *tx
	r.byID[tx.ID] = &copied
	return nil
}

func (r *memoryTransactions) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type memorySessions struct {
	mu      sync.Mutex
	byToken map[string]*models.Session
}

func (r *memorySessions) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	copied := *session
	r.byToken[session.Token] = &copied
	return nil
}

func (r *memorySessions) Find(_ context.Context, token string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byToken[token]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return nil, apperrors.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *memorySessions) Renew(_ context.Context, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byToken[token]
	if !ok {
		return apperrors.ErrNotFound
	}
	session.ExpiresAt = expiresAt
	return nil
}

func (r *memorySessions) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, token)
	return nil
}

func (r *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for token, session := range r.byToken {
		if !session.ExpiresAt.After(time.Now()) {
			delete(r.byToken, token)
			deleted++
		}
	}
	return deleted, nil
}
