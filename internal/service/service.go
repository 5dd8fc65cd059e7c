package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"
	"finance-tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mailer sends account emails. It may be nil when SMTP is not configured.
type Mailer interface {
	SendWelcome(to, name string) error
}

// Service handles business logic
type Service struct {
	stores *repository.Stores
	bus    *pubsub.Bus
	mail   Mailer
	log    *logrus.Logger
	config *config.Config
}

// NewService initializes a new service
func NewService(stores *repository.Stores, bus *pubsub.Bus, mail Mailer, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{stores: stores, bus: bus, mail: mail, log: log, config: cfg}
}

// SignUpInput holds registration fields.
type SignUpInput struct {
	Username string
	Name     string
	Password string
	Gender   string
	Email    string
}

// Register creates a new user with a hashed password and logs them in by
// establishing a session. The returned token backs the session cookie.
func (s *Service) Register(ctx context.Context, input SignUpInput) (*models.User, string, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Name = strings.TrimSpace(input.Name)

	if input.Username == "" || input.Name == "" || input.Password == "" {
		return nil, "", apperrors.Validation("username, name and password are required")
	}
	if len(input.Password) < 6 {
		return nil, "", apperrors.Validation("password must be at least 6 characters")
	}
	if input.Gender != "male" && input.Gender != "female" {
		return nil, "", apperrors.Validation("gender must be 'male' or 'female'")
	}

	hashedPassword, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:       input.Username,
		Name:           input.Name,
		PasswordHash:   hashedPassword,
		Gender:         input.Gender,
		ProfilePicture: profilePictureURL(input.Gender, input.Username),
	}

	if err := s.stores.Users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if s.mail != nil && input.Email != "" {
		go func() {
			if err := s.mail.SendWelcome(input.Email, user.Name); err != nil {
				s.log.Warnf("Failed to send welcome email to %s: %v", input.Email, err)
			}
		}()
	}

	s.log.Infof("User registered: %s", user.Username)
	return user, token, nil
}

// Login authenticates a user and establishes a session.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	if username == "" || password == "" {
		return nil, "", apperrors.Validation("username and password are required")
	}

	user, err := s.stores.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.log.Infof("User logged in: %s", user.Username)
	return user, token, nil
}

// LoginWithToken exchanges a provider-issued ID token for a session,
// creating the user on first sight keyed by the provider identity.
func (s *Service) LoginWithToken(ctx context.Context, idToken string) (*models.User, string, error) {
	if s.config.OAuthSecret == "" {
		return nil, "", apperrors.Validation("federated login is not configured")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.OAuthSecret), nil
	})
	if err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	provider, _ := claims["iss"].(string)
	providerID, _ := claims["sub"].(string)
	if provider == "" || providerID == "" {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	user, err := s.stores.Users.FindByProvider(ctx, provider, providerID)
	if err != nil {
		username, _ := claims["username"].(string)
		if username == "" {
			username = fmt.Sprintf("%s-%s", provider, providerID)
		}
		name, _ := claims["name"].(string)
		if name == "" {
			name = username
		}
		picture, _ := claims["picture"].(string)

		user = &models.User{
			Username:       username,
			Name:           name,
			ProfilePicture: picture,
			Provider:       provider,
			ProviderID:     providerID,
		}
		if err := s.stores.Users.Create(ctx, user); err != nil {
			return nil, "", err
		}
		s.log.Infof("User created from provider %s: %s", provider, user.Username)
	}

	token, err := s.createSession(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout destroys the session behind the given token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.stores.Sessions.Delete(ctx, token)
}

// GetUser returns a user by id. Callers may only look up themselves.
func (s *Service) GetUser(ctx context.Context, callerID, userID primitive.ObjectID) (*models.User, error) {
	if callerID != userID {
		return nil, apperrors.ErrNotOwner
	}
	return s.stores.Users.FindByID(ctx, userID)
}

func (s *Service) createSession(ctx context.Context, user *models.User) (string, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", err
	}
	session := &models.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(auth.SessionDuration),
	}
	if err := s.stores.Sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return token, nil
}

func profilePictureURL(gender, username string) string {
	kind := "boy"
	if gender == "female" {
		kind = "girl"
	}
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%s?username=%s", kind, username)
}
