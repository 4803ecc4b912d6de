package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey represents an issued API key. The raw key value is never stored:
// only its AES-256-GCM ciphertext and a SHA-256 digest of the key-id
// component (used as a lookup index) are kept.
type APIKey struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	EncryptedSecret []byte     `json:"-"` // never expose
	LookupDigest    string     `json:"-"` // never expose
	Description     string     `json:"description"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	LastUsedAt      *time.Time `json:"last_used_at"`
	UsageCount      uint64     `json:"usage_count"`
}

// Summary returns the listing projection without secret material
func (k *APIKey) Summary() APIKeySummary {
	return APIKeySummary{
		ID:          k.ID,
		Description: k.Description,
		IsActive:    k.IsActive,
		CreatedAt:   k.CreatedAt,
		LastUsedAt:  k.LastUsedAt,
		UsageCount:  k.UsageCount,
	}
}

// APIKeySummary is the listing projection of an APIKey
type APIKeySummary struct {
	ID          uuid.UUID  `json:"id"`
	Description string     `json:"description"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at"`
	UsageCount  uint64     `json:"usage_count"`
}

// GeneratedKey carries the plaintext key back to the caller exactly once,
// at generation time. No recoverable copy of Key exists afterwards.
type GeneratedKey struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
