package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/eprod/internal/auth/domain"
)

const (
	sessionKeyPrefix     = "eprod:session:" // Session data: eprod:session:{token}
	userSessionSetPrefix = "eprod:user:"    // Set of tokens for a user: eprod:user:{user_id}:sessions
)

// SessionRepository handles Redis operations for session tokens
type SessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

// Create stores a session until its ExpiresAt.
func (r *SessionRepository) Create(ctx context.Context, s *domain.StoredSession) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	setKey := r.userSessionSetKey(s.UserID)

	// Use pipeline for atomic operations
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(s.Token), data, ttl)
	pipe.SAdd(ctx, setKey, s.Token)
	pipe.Expire(ctx, setKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a live session by token.
func (r *SessionRepository) Get(ctx context.Context, token string) (*domain.StoredSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var s domain.StoredSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	s, err := r.Get(ctx, token)
	if err == domain.ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(token))
	pipe.SRem(ctx, r.userSessionSetKey(s.UserID), token)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListByUserID returns the session tokens recorded for a user.
func (r *SessionRepository) ListByUserID(ctx context.Context, userID string) ([]string, error) {
	tokens, err := r.client.SMembers(ctx, r.userSessionSetKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for user: %w", err)
	}
	return tokens, nil
}

// Ping reports whether Redis is reachable.
func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *SessionRepository) sessionKey(token string) string {
	return fmt.Sprintf("%s%s", sessionKeyPrefix, token)
}

func (r *SessionRepository) userSessionSetKey(userID string) string {
	return fmt.Sprintf("%s%s:sessions", userSessionSetPrefix, userID)
}
