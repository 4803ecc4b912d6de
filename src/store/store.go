package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mailgate/mailgate/src/models"
)

// ErrUserExists indicates a user with the same email is already stored
var ErrUserExists = errors.New("user already exists")

// Store holds all credential state for the process lifetime. State is
// in-memory only and is lost on restart.
//
// A single RWMutex guards both collections. Every mutation of a record
// happens under the write lock, so concurrent usage updates and
// deactivations of the same key are atomic and readers never observe a
// torn record.
type Store struct {
	mu           sync.RWMutex
	usersByEmail map[string]*models.User
	keysByID     map[uuid.UUID]*models.APIKey
	keysByDigest map[string]*models.APIKey
}

// New creates an empty credential store
func New() *Store {
	return &Store{
		usersByEmail: make(map[string]*models.User),
		keysByID:     make(map[uuid.UUID]*models.APIKey),
		keysByDigest: make(map[string]*models.APIKey),
	}
}

// InsertUser stores a user keyed by email (case-sensitive, unique)
func (s *Store) InsertUser(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return ErrUserExists
	}
	s.usersByEmail[u.Email] = u
	return nil
}

// UserByEmail returns a copy of the user with the given email
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.usersByEmail[email]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// UserCount returns the number of stored users
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByEmail)
}

// InsertKey stores an API key record, indexed by id and lookup digest
func (s *Store) InsertKey(k *models.APIKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keysByID[k.ID] = k
	s.keysByDigest[k.LookupDigest] = k
}

// KeyByID returns a copy of the key record with the given id
func (s *Store) KeyByID(id uuid.UUID) (models.APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keysByID[id]
	if !ok {
		return models.APIKey{}, false
	}
	return *k, true
}

// KeyByDigest returns a copy of the key record with the given lookup digest
func (s *Store) KeyByDigest(digest string) (models.APIKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, ok := s.keysByDigest[digest]
	if !ok {
		return models.APIKey{}, false
	}
	return *k, true
}

// KeysByOwner returns copies of all key records owned by the given user
func (s *Store) KeysByOwner(ownerID uuid.UUID) []models.APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []models.APIKey
	for _, k := range s.keysByID {
		if k.OwnerID == ownerID {
			keys = append(keys, *k)
		}
	}
	return keys
}

// MarkKeyUsed atomically bumps usage_count and advances last_used_at for
// an active key. Returns false if the key is missing or inactive, so a
// validation that races a deactivation observes exactly one of the two
// consistent states.
func (s *Store) MarkKeyUsed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keysByID[id]
	if !ok || !k.IsActive {
		return false
	}
	now := time.Now()
	k.UsageCount++
	k.LastUsedAt = &now
	return true
}

// DeactivateKey flips a key to inactive. Idempotent: deactivating an
// already-inactive key succeeds. Returns false only if the key is missing.
func (s *Store) DeactivateKey(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, ok := s.keysByID[id]
	if !ok {
		return false
	}
	k.IsActive = false
	return true
}
