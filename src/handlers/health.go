package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mailgate/mailgate/src/mailer"
)

var startTime = time.Now()

// HealthHandler handles health check requests
type HealthHandler struct {
	sender mailer.Sender
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sender mailer.Sender) *HealthHandler {
	return &HealthHandler{
		sender: sender,
	}
}

// HandleHealth returns health status with a mail transport check
func (hh *HealthHandler) HandleHealth(c *gin.Context) {
	start := time.Now()
	err := hh.sender.Verify(c.Request.Context())
	latency := time.Since(start)

	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"mail":   "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"mail":         "connected",
		"mail_latency": latency.String(),
		"uptime":       time.Since(startTime).String(),
	})
}

// HandleRoot returns service and endpoint information
func (hh *HealthHandler) HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "mailgate",
		"version": "2.0.0",
		"authentication": gin.H{
			"required": "JWT token or API key required for sending email",
			"endpoints": gin.H{
				"POST /auth/login":              "log in and obtain a JWT token",
				"POST /auth/generate-api-key":   "generate a new API key (requires auth)",
				"GET /auth/api-keys":            "list your API keys (requires auth)",
				"DELETE /auth/api-keys/:key_id": "deactivate an API key (requires auth)",
			},
		},
		"email_endpoints": gin.H{
			"POST /send-email":      "send an email (requires auth)",
			"POST /send-bulk-email": "send emails in bulk (requires auth)",
			"GET /health":           "service health",
		},
	})
}
