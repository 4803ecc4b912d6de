package models

import "github.com/google/uuid"

// AuthType identifies which credential scheme authenticated a request
type AuthType string

const (
	// AuthTypeAPIKey indicates authentication via X-Api-Key header
	AuthTypeAPIKey AuthType = "api_key"
	// AuthTypeToken indicates authentication via JWT bearer token
	AuthTypeToken AuthType = "jwt"
)

// Identity is the request-scoped authenticated principal attached by the
// auth middleware. KeyID is set for api_key auth; Email and Role for jwt.
type Identity struct {
	Type   AuthType  `json:"type"`
	UserID uuid.UUID `json:"user_id"`
	KeyID  uuid.UUID `json:"key_id,omitempty"`
	Email  string    `json:"email,omitempty"`
	Role   Role      `json:"role,omitempty"`
}
