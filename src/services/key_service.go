package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mailgate/mailgate/src/logging"
	"github.com/mailgate/mailgate/src/models"
	"github.com/mailgate/mailgate/src/store"
	"github.com/rs/zerolog"
)

// Key format: mk_<key id, 32 hex chars>_<secret, 64 hex chars>.
// The id component indexes the record; the secret carries 256 bits of
// entropy and is what actually gets verified.
const (
	keyPrefix    = "mk_"
	keyIDHexLen  = 32
	keySecretLen = 64
)

// KeyService manages API key issuance and validation. Keys are stored
// encrypted (AES-256-GCM); a presented key is located in O(1) via a
// SHA-256 digest of its id component, then verified against that single
// record. No linear scan over the key population.
type KeyService struct {
	store *store.Store
	enc   *Encryptor
	log   zerolog.Logger
}

// NewKeyService creates a new key service
func NewKeyService(st *store.Store, enc *Encryptor) *KeyService {
	return &KeyService{
		store: st,
		enc:   enc,
		log:   logging.NewLogger("keys"),
	}
}

// Generate creates a fresh API key for ownerID, stores it encrypted and
// returns the plaintext exactly once. No recoverable copy of the
// plaintext exists afterwards.
func (ks *KeyService) Generate(ownerID uuid.UUID, description string) (*models.GeneratedKey, error) {
	keyID := uuid.New()
	idHex := strings.ReplaceAll(keyID.String(), "-", "")

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate key secret: %w", err)
	}

	plaintext := keyPrefix + idHex + "_" + hex.EncodeToString(secret)

	ciphertext, err := ks.enc.Encrypt([]byte(plaintext))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt key: %w", err)
	}

	record := &models.APIKey{
		ID:              keyID,
		OwnerID:         ownerID,
		EncryptedSecret: ciphertext,
		LookupDigest:    lookupDigest(idHex),
		Description:     description,
		IsActive:        true,
		CreatedAt:       time.Now(),
	}
	ks.store.InsertKey(record)

	return &models.GeneratedKey{
		ID:          keyID,
		Key:         plaintext,
		Description: description,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Validate checks a presented key string. Shape is checked before any
// cryptography; the digest lookup selects at most one candidate record;
// the decrypted plaintext is compared in constant time. On success the
// record's usage stats are bumped atomically.
func (ks *KeyService) Validate(presented string) (*models.Identity, error) {
	idHex, ok := parseKey(presented)
	if !ok {
		return nil, ErrKeyInvalid
	}

	record, ok := ks.store.KeyByDigest(lookupDigest(idHex))
	if !ok || !record.IsActive {
		return nil, ErrKeyInvalid
	}

	plaintext, err := ks.enc.Decrypt(record.EncryptedSecret)
	if err != nil {
		// Stored ciphertext that fails to open means the encryption key
		// is misconfigured, not a bad credential.
		ks.log.Error().Err(err).Str("key_id", record.ID.String()).Msg("stored key failed to decrypt")
		return nil, fmt.Errorf("failed to decrypt stored key: %w", err)
	}

	if subtle.ConstantTimeCompare(plaintext, []byte(presented)) != 1 {
		return nil, ErrKeyInvalid
	}

	// Re-checks IsActive under the write lock: a concurrent deactivation
	// wins and the key is rejected.
	if !ks.store.MarkKeyUsed(record.ID) {
		return nil, ErrKeyInvalid
	}

	return &models.Identity{
		Type:   models.AuthTypeAPIKey,
		UserID: record.OwnerID,
		KeyID:  record.ID,
	}, nil
}

// List returns summaries of all keys owned by ownerID, newest first.
// Summaries never contain plaintext or ciphertext secret material.
func (ks *KeyService) List(ownerID uuid.UUID) []models.APIKeySummary {
	records := ks.store.KeysByOwner(ownerID)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	summaries := make([]models.APIKeySummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].Summary())
	}
	return summaries
}

// Deactivate flips a key to inactive. Returns ErrKeyNotFound if no such
// key exists and ErrDenied if it belongs to a different owner; callers
// must present both as the same external signal. Deactivating an
// already-inactive key succeeds silently.
func (ks *KeyService) Deactivate(keyID, requesterID uuid.UUID) error {
	record, ok := ks.store.KeyByID(keyID)
	if !ok {
		return ErrKeyNotFound
	}
	if record.OwnerID != requesterID {
		return ErrDenied
	}

	ks.store.DeactivateKey(keyID)
	return nil
}

// parseKey checks the shape of a presented key and extracts its id
// component. Anything that does not look like mk_<32 hex>_<64 hex> is
// rejected before any decryption work.
func parseKey(presented string) (idHex string, ok bool) {
	if !strings.HasPrefix(presented, keyPrefix) {
		return "", false
	}

	rest := presented[len(keyPrefix):]
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return "", false
	}
	idHex, secret := parts[0], parts[1]

	if len(idHex) != keyIDHexLen || len(secret) != keySecretLen {
		return "", false
	}
	if _, err := hex.DecodeString(idHex); err != nil {
		return "", false
	}
	if _, err := hex.DecodeString(secret); err != nil {
		return "", false
	}

	return idHex, true
}

// lookupDigest derives the one-way index value for a key id component
func lookupDigest(idHex string) string {
	sum := sha256.Sum256([]byte(idHex))
	return hex.EncodeToString(sum[:])
}
