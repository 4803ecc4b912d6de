package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mailgate/mailgate/src/config"
	"github.com/mailgate/mailgate/src/handlers"
	"github.com/mailgate/mailgate/src/logging"
	"github.com/mailgate/mailgate/src/mailer"
	"github.com/mailgate/mailgate/src/middleware"
	"github.com/mailgate/mailgate/src/services"
	"github.com/mailgate/mailgate/src/store"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if present (ignored in production deployments)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("starting server")

	// Initialize API key encryption (AES-256-GCM)
	encryptor, err := services.NewEncryptor(cfg.APIKeySecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}

	// Initialize in-memory credential store
	st := store.New()

	// Initialize services
	tokenService, err := services.NewTokenService(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}
	authService := services.NewAuthService(st, tokenService, cfg.BcryptCost, cfg.TokenTTL)
	keyService := services.NewKeyService(st, encryptor)

	// Seed admin user (if ADMIN_EMAIL and ADMIN_PASSWORD are set)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := authService.Seed(cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
		log.Info().Str("email", admin.Email).Msg("admin user seeded")
	} else {
		log.Warn().Msg("ADMIN_EMAIL/ADMIN_PASSWORD not set - password login disabled")
	}

	// Initialize mail transport: Mailgun preferred, SMTP fallback
	var sender mailer.Sender
	switch {
	case cfg.MailgunAPIKey != "" && cfg.MailgunDomain != "":
		sender = mailer.NewMailgunSender(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailFrom)
		log.Info().Str("domain", cfg.MailgunDomain).Msg("Mailgun mail transport initialized")
	case cfg.SMTPHost != "":
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
		log.Info().Str("host", cfg.SMTPHost).Int("smtp_port", cfg.SMTPPort).Msg("SMTP mail transport initialized")
	default:
		log.Fatal().Msg("no mail transport configured: set MAILGUN_DOMAIN/MAILGUN_API_KEY or SMTP_HOST")
	}

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(cors.New(buildCORSConfig(cfg.AllowedOrigins)))

	// Setup routes
	setupRoutes(router, authService, keyService, tokenService, sender, cfg)

	// Create HTTP server with timeouts (G112: protect from Slowloris attack)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

func setupRoutes(router *gin.Engine, authService *services.AuthService, keyService *services.KeyService, tokenService *services.TokenService, sender mailer.Sender, cfg *config.Config) {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(sender)
	authHandler := handlers.NewAuthHandler(authService, keyService)
	mailHandler := handlers.NewMailHandler(sender, cfg.MailFrom)

	authRequired := middleware.AuthMiddleware(keyService, tokenService)

	// Service info and health
	router.GET("/", healthHandler.HandleRoot)
	router.GET("/health", healthHandler.HandleHealth)

	// Authentication endpoints
	router.POST("/auth/login", authHandler.HandleLogin)
	router.POST("/auth/generate-api-key", authRequired, authHandler.HandleGenerateKey)
	router.GET("/auth/api-keys", authRequired, authHandler.HandleListKeys)
	router.DELETE("/auth/api-keys/:key_id", authRequired, authHandler.HandleDeactivateKey)

	// Email relay endpoints
	router.POST("/send-email", authRequired, mailHandler.HandleSendEmail)
	router.POST("/send-bulk-email", authRequired, mailHandler.HandleSendBulkEmail)
}

// buildCORSConfig maps ALLOWED_ORIGINS ("*" or a comma-separated list)
// to a gin-contrib/cors configuration
func buildCORSConfig(allowedOrigins string) cors.Config {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Api-Key"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if allowedOrigins == "" || allowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
		return corsConfig
	}
	corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	corsConfig.AllowCredentials = true
	return corsConfig
}
