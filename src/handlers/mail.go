package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mailgate/mailgate/src/logging"
	"github.com/mailgate/mailgate/src/mailer"
	"github.com/mailgate/mailgate/src/middleware"
	"github.com/rs/zerolog"
)

// MailHandler handles email relay requests
type MailHandler struct {
	sender      mailer.Sender
	defaultFrom string
	log         zerolog.Logger
}

// NewMailHandler creates a new mail handler
func NewMailHandler(sender mailer.Sender, defaultFrom string) *MailHandler {
	return &MailHandler{
		sender:      sender,
		defaultFrom: defaultFrom,
		log:         logging.NewLogger("mail"),
	}
}

// SendEmailRequest represents the request body for single email sending
type SendEmailRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=1"`
	Text    string `json:"text" binding:"required,min=1"`
	HTML    string `json:"html" binding:"omitempty"`
	From    string `json:"from" binding:"omitempty,email"`
}

// SendBulkEmailRequest represents the request body for bulk email sending
type SendBulkEmailRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1,dive,email"`
	Subject    string   `json:"subject" binding:"required,min=1"`
	Text       string   `json:"text" binding:"required,min=1"`
	HTML       string   `json:"html" binding:"omitempty"`
	From       string   `json:"from" binding:"omitempty,email"`
}

// BulkResult is the per-recipient outcome of a bulk send
type BulkResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleSendEmail handles POST /send-email
func (h *MailHandler) HandleSendEmail(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "to, subject and text are required; to and from must be email addresses",
		})
		return
	}

	email := &mailer.Email{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	}
	if email.From == "" {
		email.From = h.defaultFrom
	}

	messageID, err := h.sender.Send(c.Request.Context(), email)
	if err != nil {
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("to", req.To).
			Msg("failed to send email")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "send_failed",
			"message": "failed to send email",
		})
		return
	}

	h.log.Info().
		Str("request_id", middleware.GetRequestID(c)).
		Str("message_id", messageID).
		Str("auth_type", string(identity.Type)).
		Msg("email sent")

	c.JSON(http.StatusOK, gin.H{
		"message_id":       messageID,
		"to":               req.To,
		"subject":          req.Subject,
		"authenticated_by": identity.Type,
		"sent_at":          time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleSendBulkEmail handles POST /send-bulk-email. Recipients are
// processed sequentially; individual failures do not abort the batch.
func (h *MailHandler) HandleSendBulkEmail(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req SendBulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "recipients (non-empty list of email addresses), subject and text are required",
		})
		return
	}

	results := make([]BulkResult, 0, len(req.Recipients))
	successCount := 0

	for _, recipient := range req.Recipients {
		email := &mailer.Email{
			From:    req.From,
			To:      recipient,
			Subject: req.Subject,
			Text:    req.Text,
			HTML:    req.HTML,
		}
		if email.From == "" {
			email.From = h.defaultFrom
		}

		messageID, err := h.sender.Send(c.Request.Context(), email)
		if err != nil {
			h.log.Warn().
				Err(err).
				Str("request_id", middleware.GetRequestID(c)).
				Str("to", recipient).
				Msg("bulk send: recipient failed")
			results = append(results, BulkResult{
				Recipient: recipient,
				Success:   false,
				Error:     "failed to send email",
			})
			continue
		}

		successCount++
		results = append(results, BulkResult{
			Recipient: recipient,
			Success:   true,
			MessageID: messageID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_recipients": len(req.Recipients),
		"success_count":    successCount,
		"failure_count":    len(req.Recipients) - successCount,
		"authenticated_by": identity.Type,
		"processed_at":     time.Now().UTC().Format(time.RFC3339),
		"results":          results,
	})
}
