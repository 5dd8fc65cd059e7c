package graph

import (
	"context"
	"fmt"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"
	"finance-tracker/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver is the root resolver for queries, mutations and subscriptions.
// Every operation except signUp/login derives its identity from the session
// user the auth middleware placed on the context.
type Resolver struct {
	svc *service.Service
	bus *pubsub.Bus
	log *logrus.Logger
}

// NewResolver creates the root resolver.
func NewResolver(svc *service.Service, bus *pubsub.Bus, log *logrus.Logger) *Resolver {
	return &Resolver{svc: svc, bus: bus, log: log}
}

func sessionUser(ctx context.Context) (*models.User, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

func parseID(id graphql.ID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return primitive.ObjectID{}, apperrors.Validation(fmt.Sprintf("invalid id %q", id))
	}
	return oid, nil
}

// AuthUser returns the session user, or null when not logged in.
func (r *Resolver) AuthUser(ctx context.Context) (*UserResolver, error) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return nil, nil
	}
	return &UserResolver{user: user, svc: r.svc}, nil
}

// User returns a user by id. Only the session user may be looked up.
func (r *Resolver) User(ctx context.Context, args struct{ UserID graphql.ID }) (*UserResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.UserID)
	if err != nil {
		return nil, err
	}
	user, err := r.svc.GetUser(ctx, caller.ID, id)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: user, svc: r.svc}, nil
}

// Transaction returns one of the session user's transactions.
func (r *Resolver) Transaction(ctx context.Context, args struct{ TransactionID graphql.ID }) (*TransactionResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.TransactionID)
	if err != nil {
		return nil, err
	}
	tx, err := r.svc.GetTransaction(ctx, caller.ID, id)
	if err != nil {
		return nil, err
	}
	return &TransactionResolver{tx: tx, svc: r.svc}, nil
}

// Transactions returns all of the session user's transactions.
func (r *Resolver) Transactions(ctx context.Context) ([]*TransactionResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := r.svc.ListTransactions(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	return wrapTransactions(transactions, r.svc), nil
}

// CategoryStatistics returns per-category totals for the session user.
func (r *Resolver) CategoryStatistics(ctx context.Context) ([]*CategoryStatsResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := r.svc.CategoryStatistics(ctx, caller.ID)
	if err != nil {
		return nil, err
	}
	resolvers := make([]*CategoryStatsResolver, 0, len(stats))
	for i := range stats {
		resolvers = append(resolvers, &CategoryStatsResolver{stats: stats[i]})
	}
	return resolvers, nil
}

type signUpInput struct {
	Username string
	Name     string
	Password string
	Gender   string
	Email    *string
}

// SignUp registers a new user and logs them in.
func (r *Resolver) SignUp(ctx context.Context, args struct{ Input signUpInput }) (*UserResolver, error) {
	input := service.SignUpInput{
		Username: args.Input.Username,
		Name:     args.Input.Name,
		Password: args.Input.Password,
		Gender:   args.Input.Gender,
	}
	if args.Input.Email != nil {
		input.Email = *args.Input.Email
	}
	user, token, err := r.svc.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	r.setSessionCookie(ctx, token)
	return &UserResolver{user: user, svc: r.svc}, nil
}

type loginInput struct {
	Username string
	Password string
}

// Login authenticates and establishes a session cookie.
func (r *Resolver) Login(ctx context.Context, args struct{ Input loginInput }) (*UserResolver, error) {
	user, token, err := r.svc.Login(ctx, args.Input.Username, args.Input.Password)
	if err != nil {
		return nil, err
	}
	r.setSessionCookie(ctx, token)
	return &UserResolver{user: user, svc: r.svc}, nil
}

// LoginWithToken exchanges a provider ID token for a session cookie.
func (r *Resolver) LoginWithToken(ctx context.Context, args struct{ Token string }) (*UserResolver, error) {
	user, token, err := r.svc.LoginWithToken(ctx, args.Token)
	if err != nil {
		return nil, err
	}
	r.setSessionCookie(ctx, token)
	return &UserResolver{user: user, svc: r.svc}, nil
}

// Logout destroys the session and clears the cookie.
func (r *Resolver) Logout(ctx context.Context) (*LogoutResolver, error) {
	if _, err := sessionUser(ctx); err != nil {
		return nil, err
	}
	if rc := auth.RequestFromContext(ctx); rc != nil {
		if cookie, err := rc.R.Cookie(auth.SessionCookieName); err == nil {
			if err := r.svc.Logout(ctx, cookie.Value); err != nil {
				return nil, err
			}
		}
		auth.ClearSessionCookie(rc.W)
	}
	return &LogoutResolver{}, nil
}

type createTransactionInput struct {
	Description string
	PaymentType string
	Category    string
	Amount      float64
	Location    *string
	Date        *string
}

// CreateTransaction creates a transaction owned by the session user.
func (r *Resolver) CreateTransaction(ctx context.Context, args struct{ Input createTransactionInput }) (*TransactionResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	input := service.CreateTransactionInput{
		Description: args.Input.Description,
		PaymentType: args.Input.PaymentType,
		Category:    args.Input.Category,
		Amount:      args.Input.Amount,
	}
	if args.Input.Location != nil {
		input.Location = *args.Input.Location
	}
	if args.Input.Date != nil {
		input.Date = *args.Input.Date
	}
	tx, err := r.svc.CreateTransaction(ctx, caller.ID, input)
	if err != nil {
		return nil, err
	}
	return &TransactionResolver{tx: tx, svc: r.svc}, nil
}

type updateTransactionInput struct {
	TransactionID graphql.ID
	Description   *string
	PaymentType   *string
	Category      *string
	Amount        *float64
	Location      *string
	Date          *string
}

// UpdateTransaction updates a transaction the session user owns.
func (r *Resolver) UpdateTransaction(ctx context.Context, args struct{ Input updateTransactionInput }) (*TransactionResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.Input.TransactionID)
	if err != nil {
		return nil, err
	}
	tx, err := r.svc.UpdateTransaction(ctx, caller.ID, service.UpdateTransactionInput{
		TransactionID: id,
		Description:   args.Input.Description,
		PaymentType:   args.Input.PaymentType,
		Category:      args.Input.Category,
		Amount:        args.Input.Amount,
		Location:      args.Input.Location,
		Date:          args.Input.Date,
	})
	if err != nil {
		return nil, err
	}
	return &TransactionResolver{tx: tx, svc: r.svc}, nil
}

// DeleteTransaction deletes a transaction the session user owns and returns it.
func (r *Resolver) DeleteTransaction(ctx context.Context, args struct{ TransactionID graphql.ID }) (*TransactionResolver, error) {
	caller, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.TransactionID)
	if err != nil {
		return nil, err
	}
	tx, err := r.svc.DeleteTransaction(ctx, caller.ID, id)
	if err != nil {
		return nil, err
	}
	return &TransactionResolver{tx: tx, svc: r.svc}, nil
}

func (r *Resolver) setSessionCookie(ctx context.Context, token string) {
	if rc := auth.RequestFromContext(ctx); rc != nil {
		auth.SetSessionCookie(rc.W, token)
	}
}

// UserResolver resolves the User type.
type UserResolver struct {
	user *models.User
	svc  *service.Service
}

func (r *UserResolver) ID() graphql.ID   { return graphql.ID(r.user.ID.Hex()) }
func (r *UserResolver) Username() string { return r.user.Username }
func (r *UserResolver) Name() string     { return r.user.Name }

func (r *UserResolver) ProfilePicture() string { return r.user.ProfilePicture }

// Transactions resolves the user's transaction history.
func (r *UserResolver) Transactions(ctx context.Context) ([]*TransactionResolver, error) {
	transactions, err := r.svc.ListTransactions(ctx, r.user.ID)
	if err != nil {
		return nil, err
	}
	return wrapTransactions(transactions, r.svc), nil
}

// TransactionResolver resolves the Transaction type.
type TransactionResolver struct {
	tx  *models.Transaction
	svc *service.Service
}

func (r *TransactionResolver) ID() graphql.ID     { return graphql.ID(r.tx.ID.Hex()) }
func (r *TransactionResolver) UserID() graphql.ID { return graphql.ID(r.tx.UserID.Hex()) }

func (r *TransactionResolver) Description() string { return r.tx.Description }
func (r *TransactionResolver) PaymentType() string { return string(r.tx.PaymentType) }
func (r *TransactionResolver) Category() string    { return string(r.tx.Category) }

func (r *TransactionResolver) Amount() float64 {
	amount, _ := r.tx.Amount.Float64()
	return amount
}

func (r *TransactionResolver) Location() *string {
	if r.tx.Location == "" {
		return nil
	}
	location := r.tx.Location
	return &location
}

func (r *TransactionResolver) Date() string {
	return r.tx.Date.Format(time.RFC3339)
}

// User resolves the transaction's owner.
func (r *TransactionResolver) User(ctx context.Context) (*UserResolver, error) {
	user, err := r.svc.GetUser(ctx, r.tx.UserID, r.tx.UserID)
	if err != nil {
		return nil, err
	}
	return &UserResolver{user: user, svc: r.svc}, nil
}

func wrapTransactions(transactions []models.Transaction, svc *service.Service) []*TransactionResolver {
	resolvers := make([]*TransactionResolver, 0, len(transactions))
	for i := range transactions {
		resolvers = append(resolvers, &TransactionResolver{tx: &transactions[i], svc: svc})
	}
	return resolvers
}

// CategoryStatsResolver resolves the CategoryStatistics type.
type CategoryStatsResolver struct {
	stats models.CategoryStats
}

func (r *CategoryStatsResolver) Category() string { return string(r.stats.Category) }

func (r *CategoryStatsResolver) TotalAmount() float64 {
	total, _ := r.stats.TotalAmount.Float64()
	return total
}

// LogoutResolver resolves the LogoutResponse type.
type LogoutResolver struct{}

func (r *LogoutResolver) Message() string { return "Logged out successfully" }
