package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Default session store limits.
const (
	DefaultSessionTTL      = 30 * time.Minute
	DefaultSessionCapacity = 1000

	// maxIDAttempts bounds regeneration on ID collision.
	maxIDAttempts = 5
)

// SessionStoreConfig configures the in-memory session store.
type SessionStoreConfig struct {
	// TTL is how long a session lives after creation.
	TTL time.Duration

	// Capacity bounds the number of held sessions.
	Capacity int

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// NewID generates session identifiers. Defaults to uuid.NewString.
	NewID func() string
}

// SessionStore is an in-memory implementation of driven.SessionStore.
// Stored sessions are shared read-only between readers.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	ttl      time.Duration
	capacity int
	now      func() time.Time
	newID    func() string
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultSessionTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultSessionCapacity
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
		ttl:      cfg.TTL,
		capacity: cfg.Capacity,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
}

// Create stores a copy of session under a fresh identifier.
func (s *SessionStore) Create(_ context.Context, session *domain.Session) (string, error) {
	if session == nil {
		return "", fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ""
	for range maxIDAttempts {
		candidate := s.newID()
		if _, taken := s.sessions[candidate]; candidate != "" && !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		return "", domain.ErrSessionConflict
	}

	now := s.now()
	if len(s.sessions) >= s.capacity {
		s.sweepLocked(now)
	}
	for len(s.sessions) >= s.capacity {
		s.evictOldestLocked()
	}

	stored := *session
	stored.ID = id
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(s.ttl)
	s.sessions[id] = &stored

	return id, nil
}

// Get retrieves a live session. Expired sessions are removed on access.
func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	now := s.now()

	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(now) {
		s.mu.Lock()
		if current, ok := s.sessions[id]; ok && current.Expired(now) {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Sweep removes every expired session.
func (s *SessionStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now()), nil
}

// Len returns the number of held sessions, including any not yet swept.
func (s *SessionStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close drops all sessions.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*domain.Session)
	return nil
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, session := range s.sessions {
		if oldestID == "" || session.CreatedAt.Before(oldest) {
			oldestID, oldest = id, session.CreatedAt
		}
	}
	delete(s.sessions, oldestID)
}
