package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is the authenticated state attached to a bearer token.
type Session struct {
	Token    string    `json:"-"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}

// SessionManager owns the lifecycle of bearer token sessions backed by Redis:
// issue on login, lookup per request, revoke on logout, expiry via TTL.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

// Issue creates a new session for the user and persists it under a fresh token.
func (sm *SessionManager) Issue(ctx context.Context, userID int64, username string) (*Session, error) {
	sess := &Session{
		Token:    uuid.NewString(),
		UserID:   userID,
		Username: username,
		IssuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.Token), data, sm.ttl).Err(); err != nil {
		return nil, fmt.Errorf("shared: store session: %w", err)
	}
	return sess, nil
}

// Lookup resolves a token to its session and slides the expiry window.
func (sm *SessionManager) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("shared: load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	sess.Token = token
	_ = sm.client.Expire(ctx, sm.redisKey(token), sm.ttl).Err()
	return &sess, nil
}

// Revoke deletes a session token.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("shared: revoke session: %w", err)
	}
	return nil
}

// RevokeAllForUser removes every live session belonging to the user.
// Used when an account is deactivated.
func (sm *SessionManager) RevokeAllForUser(ctx context.Context, userID int64) error {
	iter := sm.client.Scan(ctx, 0, "session:*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := sm.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var sess Session
		if json.Unmarshal(payload, &sess) == nil && sess.UserID == userID {
			_ = sm.client.Del(ctx, key).Err()
		}
	}
	return iter.Err()
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}
