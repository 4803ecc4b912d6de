package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mailgate/mailgate/src/mailer"
	"github.com/mailgate/mailgate/src/middleware"
	"github.com/mailgate/mailgate/src/services"
	"github.com/mailgate/mailgate/src/store"
	"golang.org/x/crypto/bcrypt"
)

// fakeSender records sent mail and can be told to fail
type fakeSender struct {
	mu        sync.Mutex
	sent      []mailer.Email
	failFor   map[string]bool
	verifyErr error
	nextID    int
}

func newFakeSender() *fakeSender {
	return &fakeSender{failFor: make(map[string]bool)}
}

func (f *fakeSender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[email.To] {
		return "", errors.New("delivery refused")
	}
	f.sent = append(f.sent, *email)
	f.nextID++
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeSender) Verify(ctx context.Context) error {
	return f.verifyErr
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type testEnv struct {
	router      *gin.Engine
	authService *services.AuthService
	keyService  *services.KeyService
	sender      *fakeSender
}

// newTestEnv wires the full route table against in-memory state and a
// fake mail transport
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	enc, err := services.NewEncryptor("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	if err != nil {
		t.Fatalf("encryptor: %v", err)
	}
	st := store.New()
	tokenService, err := services.NewTokenService("test-secret-test-secret-test-secret-1234")
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	authService := services.NewAuthService(st, tokenService, bcrypt.MinCost, time.Hour)
	keyService := services.NewKeyService(st, enc)
	sender := newFakeSender()

	authHandler := NewAuthHandler(authService, keyService)
	mailHandler := NewMailHandler(sender, "noreply@example.com")
	healthHandler := NewHealthHandler(sender)

	authRequired := middleware.AuthMiddleware(keyService, tokenService)

	router := gin.New()
	router.GET("/", healthHandler.HandleRoot)
	router.GET("/health", healthHandler.HandleHealth)
	router.POST("/auth/login", authHandler.HandleLogin)
	router.POST("/auth/generate-api-key", authRequired, authHandler.HandleGenerateKey)
	router.GET("/auth/api-keys", authRequired, authHandler.HandleListKeys)
	router.DELETE("/auth/api-keys/:key_id", authRequired, authHandler.HandleDeactivateKey)
	router.POST("/send-email", authRequired, mailHandler.HandleSendEmail)
	router.POST("/send-bulk-email", authRequired, mailHandler.HandleSendBulkEmail)

	return &testEnv{
		router:      router,
		authService: authService,
		keyService:  keyService,
		sender:      sender,
	}
}

// seedAdmin creates the default test admin and returns its login token
func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()
	if _, err := e.authService.Seed("admin@example.com", "password123"); err != nil {
		t.Fatalf("seed error: %v", err)
	}
	token, _, err := e.authService.Authenticate("admin@example.com", "password123")
	if err != nil {
		t.Fatalf("authenticate error: %v", err)
	}
	return token
}
