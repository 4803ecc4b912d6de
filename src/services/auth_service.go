package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mailgate/mailgate/src/logging"
	"github.com/mailgate/mailgate/src/models"
	"github.com/mailgate/mailgate/src/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles password authentication and session token issuance
type AuthService struct {
	store      *store.Store
	tokens     *TokenService
	bcryptCost int
	tokenTTL   time.Duration
	log        zerolog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(st *store.Store, tokens *TokenService, bcryptCost int, tokenTTL time.Duration) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		store:      st,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		tokenTTL:   tokenTTL,
		log:        logging.NewLogger("auth"),
	}
}

// Seed creates the admin user from configuration-supplied credentials.
// Called once at startup; fails if a user with the email already exists.
func (as *AuthService) Seed(email, password string) (*models.User, error) {
	if email == "" {
		return nil, errors.New("admin email must not be empty")
	}
	if len(password) < 8 {
		return nil, errors.New("admin password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), as.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}

	if err := as.store.InsertUser(user); err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	return user, nil
}

// Authenticate verifies email/password and mints a session token embedding
// {userId, email, role}. Both unknown-user and wrong-password failures
// surface as ErrInvalidCredentials so callers cannot enumerate accounts;
// the distinction is logged at debug level only.
func (as *AuthService) Authenticate(email, password string) (string, models.PublicUser, error) {
	user, ok := as.store.UserByEmail(email)
	if !ok {
		as.log.Debug().Str("email", email).Msg("login failed: user not found")
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		as.log.Debug().Str("email", email).Msg("login failed: password mismatch")
		return "", models.PublicUser{}, ErrInvalidCredentials
	}

	public := user.Public()
	token, err := as.tokens.Issue(public, as.tokenTTL)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	return token, public, nil
}
