package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/delizzia/pos-backend/pkg/config"
	redisclient "github.com/delizzia/pos-backend/pkg/redis"
	"github.com/google/uuid"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// record is what lives under the access session key.
type record struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// Session identifies one issued access/refresh pair.
type Session struct {
	AccessID     string
	RefreshToken string
	UserID       uuid.UUID
}

// Manager stores refresh tokens keyed by the access token jti and rotates them on refresh.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	return newManager(client, client, cfg)
}

func newManager(store sessionStore, keyer sessionKeyer, cfg config.JWTConfig) (*Manager, error) {
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: store, keyer: keyer, ttl: ttl}, nil
}

// Start opens a new session for userID and returns its identifiers.
func (m *Manager) Start(ctx context.Context, userID uuid.UUID) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, fmt.Errorf("user id is required")
	}
	sess := Session{AccessID: NewAccessID(), UserID: userID}
	token, err := m.put(ctx, sess.AccessID, userID)
	if err != nil {
		return Session{}, err
	}
	sess.RefreshToken = token
	return sess, nil
}

// Rotate validates the provided refresh token, invalidates the prior session and opens a new one.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Session, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Session{}, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(oldAccessID)
	current, err := m.load(ctx, key)
	if err != nil {
		return Session{}, err
	}
	if subtle.ConstantTimeCompare([]byte(current.Token), []byte(provided)) != 1 {
		return Session{}, ErrInvalidRefreshToken
	}

	next := Session{AccessID: NewAccessID(), UserID: current.UserID}
	token, err := m.put(ctx, next.AccessID, current.UserID)
	if err != nil {
		return Session{}, err
	}
	next.RefreshToken = token

	if err := m.store.Del(ctx, key); err != nil {
		return Session{}, err
	}
	return next, nil
}

// Revoke deletes the refresh mapping tied to the access identifier.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the access ID still has an active refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if redisclient.IsNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Manager) put(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(record{UserID: userID, Token: token})
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) load(ctx context.Context, key string) (record, error) {
	raw, err := m.store.Get(ctx, key)
	if err != nil {
		if redisclient.IsNil(err) {
			return record{}, ErrInvalidRefreshToken
		}
		return record{}, err
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Token == "" {
		return record{}, ErrInvalidRefreshToken
	}
	return rec, nil
}

// NewAccessID produces the identifier used as the JWT jti and the Redis key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
