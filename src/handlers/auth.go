package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mailgate/mailgate/src/middleware"
	"github.com/mailgate/mailgate/src/services"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	keyService  *services.KeyService
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *services.AuthService, keyService *services.KeyService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		keyService:  keyService,
	}
}

// LoginRequest represents the request body for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GenerateKeyRequest represents the request body for key generation
type GenerateKeyRequest struct {
	Description string `json:"description" binding:"omitempty,max=255"`
}

// HandleLogin handles POST /auth/login - password login returning a session token
func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "email and password are required",
		})
		return
	}

	token, user, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Same response for unknown user and wrong password
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_credentials",
				"message": "invalid email or password",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "login failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// HandleGenerateKey handles POST /auth/generate-api-key - issues a new API key
func (h *AuthHandler) HandleGenerateKey(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req GenerateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "invalid request body",
		})
		return
	}
	if req.Description == "" {
		req.Description = "generated via API"
	}

	key, err := h.keyService.Generate(identity.UserID, req.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "failed to generate API key",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"api_key": key,
		"warning": "store this key securely; it will not be shown again",
	})
}

// HandleListKeys handles GET /auth/api-keys - lists the caller's keys
func (h *AuthHandler) HandleListKeys(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	keys := h.keyService.List(identity.UserID)

	c.JSON(http.StatusOK, gin.H{
		"api_keys": keys,
		"total":    len(keys),
	})
}

// HandleDeactivateKey handles DELETE /auth/api-keys/:key_id
func (h *AuthHandler) HandleDeactivateKey(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	keyID, err := uuid.Parse(c.Param("key_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "key_id must be a valid UUID",
		})
		return
	}

	if err := h.keyService.Deactivate(keyID, identity.UserID); err != nil {
		// Missing key and foreign key produce the same external signal
		if errors.Is(err, services.ErrKeyNotFound) || errors.Is(err, services.ErrDenied) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "API key not found or not authorized",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "server_error",
			"message": "failed to deactivate API key",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "deactivated",
	})
}
