package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mailgate/mailgate/src/logging"
	"github.com/mailgate/mailgate/src/models"
	"github.com/mailgate/mailgate/src/services"
)

// IdentityKey is the gin context key for the authenticated identity
const IdentityKey = "identity"

// credentialScheme is one way a request can authenticate: extract pulls
// the credential from the request if present, authenticate validates it.
type credentialScheme struct {
	name         string
	extract      func(c *gin.Context) (string, bool)
	authenticate func(credential string) (*models.Identity, error)
}

// AuthMiddleware is the single authentication entry point. Schemes are
// tried in a fixed order: the first one whose credential is present on
// the request is attempted, and its outcome decides the request. An API
// key that validates wins outright; a bearer token is only consulted
// when no API key was sent.
//
// Every failure produces the same generic 401 payload; the reason a
// credential was rejected is logged server-side only.
func AuthMiddleware(keys *services.KeyService, tokens *services.TokenService) gin.HandlerFunc {
	log := logging.NewLogger("authgate")

	schemes := []credentialScheme{
		{
			name:    "api_key",
			extract: extractAPIKey,
			authenticate: func(credential string) (*models.Identity, error) {
				return keys.Validate(credential)
			},
		},
		{
			name:    "bearer",
			extract: extractBearerToken,
			authenticate: func(credential string) (*models.Identity, error) {
				claims, err := tokens.Verify(credential)
				if err != nil {
					return nil, err
				}
				userID, err := claims.Subject()
				if err != nil {
					return nil, err
				}
				return &models.Identity{
					Type:   models.AuthTypeToken,
					UserID: userID,
					Email:  claims.Email,
					Role:   models.Role(claims.Role),
				}, nil
			},
		},
	}

	return func(c *gin.Context) {
		for _, scheme := range schemes {
			credential, present := scheme.extract(c)
			if !present {
				continue
			}

			identity, err := scheme.authenticate(credential)
			if err != nil {
				log.Debug().
					Err(err).
					Str("scheme", scheme.name).
					Str("request_id", GetRequestID(c)).
					Msg("authentication failed")
				unauthorized(c)
				return
			}

			c.Set(IdentityKey, identity)
			c.Next()
			return
		}

		unauthorized(c)
	}
}

// GetIdentity retrieves the authenticated identity from the gin context
func GetIdentity(c *gin.Context) (*models.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return nil, false
	}
	identity, ok := v.(*models.Identity)
	return identity, ok
}

// extractAPIKey pulls the X-Api-Key header value if set
func extractAPIKey(c *gin.Context) (string, bool) {
	key := c.GetHeader("X-Api-Key")
	return key, key != ""
}

// extractBearerToken pulls a correctly prefixed Authorization header value
func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// unauthorized writes the single generic rejection payload. It names the
// accepted schemes but never why a presented credential failed.
func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": "access denied: a valid API key or bearer token is required",
		"how_to_authenticate": gin.H{
			"api_key": "send header X-Api-Key: <your-api-key>",
			"bearer":  "send header Authorization: Bearer <token>",
		},
	})
	c.Abort()
}
