package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mailgate/mailgate/src/models"
	"github.com/mailgate/mailgate/src/store"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	ts, err := NewTokenService(testSecret())
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return NewAuthService(store.New(), ts, bcrypt.MinCost, time.Hour)
}

func TestSeed_Validation(t *testing.T) {
	as := newTestAuthService(t)

	if _, err := as.Seed("", "password123"); err == nil {
		t.Fatal("expected error for empty email")
	}
	if _, err := as.Seed("admin@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestSeed_DuplicateEmail(t *testing.T) {
	as := newTestAuthService(t)

	if _, err := as.Seed("admin@example.com", "password123"); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	if _, err := as.Seed("admin@example.com", "password456"); err == nil {
		t.Fatal("expected error for duplicate email")
	}
}

func TestAuthenticate_Success(t *testing.T) {
	as := newTestAuthService(t)

	seeded, err := as.Seed("admin@example.com", "password123")
	if err != nil {
		t.Fatalf("seed error: %v", err)
	}

	token, user, err := as.Authenticate("admin@example.com", "password123")
	if err != nil {
		t.Fatalf("authenticate error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if user.ID != seeded.ID {
		t.Errorf("expected user id %s, got %s", seeded.ID, user.ID)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %s", user.Role)
	}

	// Token must verify and carry the seeded identity
	claims, err := as.tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("unexpected email claim: %s", claims.Email)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	as := newTestAuthService(t)

	if _, err := as.Seed("admin@example.com", "password123"); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	_, _, err := as.Authenticate("admin@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	as := newTestAuthService(t)

	// Unknown user yields the same error as a wrong password
	_, _, err := as.Authenticate("nobody@example.com", "password123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

// End-to-end credential lifecycle: login, token verification, key
// generation, validation, denied and successful deactivation.
func TestCredentialLifecycle(t *testing.T) {
	st := store.New()
	tokens, err := NewTokenService(testSecret())
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	as := NewAuthService(st, tokens, bcrypt.MinCost, time.Hour)
	enc, err := NewEncryptor(validHexKey())
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	ks := NewKeyService(st, enc)

	admin, err := as.Seed("a@x.com", "pw1pw1pw1")
	if err != nil {
		t.Fatalf("seed error: %v", err)
	}

	token, _, err := as.Authenticate("a@x.com", "pw1pw1pw1")
	if err != nil {
		t.Fatalf("authenticate error: %v", err)
	}
	claims, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.Email != "a@x.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %s/%s", claims.Email, claims.Role)
	}

	generated, err := ks.Generate(admin.ID, "lifecycle")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	identity, err := ks.Validate(generated.Key)
	if err != nil {
		t.Fatalf("validate error: %v", err)
	}
	if identity.UserID != admin.ID {
		t.Fatalf("expected owner %s, got %s", admin.ID, identity.UserID)
	}
	if keys := ks.List(admin.ID); len(keys) != 1 || keys[0].UsageCount != 1 {
		t.Fatalf("expected single key with usage_count 1, got %+v", keys)
	}

	// Denied deactivation leaves the key active
	wrongUser := uuid.New()
	if err := ks.Deactivate(generated.ID, wrongUser); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
	if keys := ks.List(admin.ID); !keys[0].IsActive {
		t.Fatal("denied deactivation must not change is_active")
	}

	if err := ks.Deactivate(generated.ID, admin.ID); err != nil {
		t.Fatalf("deactivate error: %v", err)
	}
	if _, err := ks.Validate(generated.Key); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid after deactivation, got %v", err)
	}
}
