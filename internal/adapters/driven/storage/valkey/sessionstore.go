// Package valkey provides a session store backed by Valkey, so sessions
// survive process restarts and can be shared between server replicas.
package valkey

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// Default configuration values.
const (
	DefaultAddress   = "localhost:6379"
	DefaultKeyPrefix = "threadsense:session:"
	DefaultTTL       = 30 * time.Minute

	connectTimeout = 3 * time.Second
	maxIDAttempts  = 5
)

// Config configures the Valkey session store.
type Config struct {
	// Address is the host:port of the Valkey server.
	Address string

	// Password authenticates against the server. Empty disables AUTH.
	Password string

	// DB selects the logical database.
	DB int

	// KeyPrefix namespaces session keys.
	KeyPrefix string

	// TTL is how long a session lives after creation.
	TTL time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	// NewID generates session identifiers. Defaults to uuid.NewString.
	NewID func() string
}

// SessionStore stores gzip-compressed JSON sessions with a server-side
// expiry. Keys are written with SET NX so an existing session is never
// overwritten.
type SessionStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

// NewSessionStore connects to Valkey and verifies the connection with PING.
func NewSessionStore(ctx context.Context, cfg Config) (*SessionStore, error) {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}

	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ConnWriteTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey: connect %s: %w", cfg.Address, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey: ping %s: %w", cfg.Address, err)
	}

	return newSessionStore(client, cfg), nil
}

func newSessionStore(client valkey.Client, cfg Config) *SessionStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &SessionStore{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL,
		now:    cfg.Now,
		newID:  cfg.NewID,
	}
}

func (s *SessionStore) key(id string) string {
	return s.prefix + id
}

// ttlSeconds rounds the TTL up to whole seconds.
func ttlSeconds(ttl time.Duration) int64 {
	secs := int64((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Create encodes the session and stores it under a fresh identifier.
// A key that already exists counts as a collision and a new ID is drawn.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) (string, error) {
	if session == nil {
		return "", fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}

	now := s.now()
	stored := *session
	stored.CreatedAt = now
	stored.ExpiresAt = now.Add(s.ttl)

	for range maxIDAttempts {
		id := s.newID()
		if id == "" {
			continue
		}
		stored.ID = id

		payload, err := Encode(&stored)
		if err != nil {
			return "", err
		}

		cmd := s.client.B().Set().Key(s.key(id)).Value(valkey.BinaryString(payload)).Nx().ExSeconds(ttlSeconds(s.ttl)).Build()
		err = s.client.Do(ctx, cmd).Error()
		if valkey.IsValkeyNil(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("valkey: store session: %w", err)
		}
		return id, nil
	}
	return "", domain.ErrSessionConflict
}

// Get loads and decodes a session.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}

	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(id)).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("valkey: load session: %w", err)
	}

	session, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Sweep is a no-op: Valkey expires keys itself.
func (s *SessionStore) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

// Len reports -1 because counting prefixed keys would need a full SCAN.
func (s *SessionStore) Len(_ context.Context) int {
	return -1
}

// Close releases the client connection.
func (s *SessionStore) Close() error {
	s.client.Close()
	return nil
}

// Encode serialises a session as gzip-compressed JSON.
func Encode(session *domain.Session) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(session); err != nil {
		return nil, fmt.Errorf("valkey: encode session: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("valkey: compress session: %w", err)
	}
	return buf.Bytes(), nil
}

// errCorrupt marks an undecodable payload.
var errCorrupt = errors.New("corrupt session payload")

// Decode reverses Encode.
func Decode(payload []byte) (*domain.Session, error) {
	zr, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("valkey: %w: %w", errCorrupt, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("valkey: %w: %w", errCorrupt, err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("valkey: %w: %w", errCorrupt, err)
	}
	return &session, nil
}
