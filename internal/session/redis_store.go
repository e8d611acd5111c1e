package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/checkin-service/internal/domain"
)

const keyPrefix = "checkin:session:"

// RedisStore keeps one JSON blob per session handle with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore builds a store on an existing client. A zero ttl keeps sessions forever.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func key(handle string) string {
	return keyPrefix + handle
}

// Get loads the state for handle, falling back to a fresh state when absent or malformed.
func (s *RedisStore) Get(ctx context.Context, handle string) (*domain.WorkflowState, error) {
	if handle == "" {
		return nil, ErrEmptyHandle
	}
	blob, err := s.client.Get(ctx, key(handle)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewWorkflowState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var state domain.WorkflowState
	if err := json.Unmarshal(blob, &state); err != nil {
		s.logger.Warn("discarding undecodable session state", zap.Error(err))
		return domain.NewWorkflowState(), nil
	}
	if err := state.Validate(); err != nil {
		s.logger.Warn("discarding inconsistent session state", zap.String("step", string(state.Step)), zap.Error(err))
		return domain.NewWorkflowState(), nil
	}
	return &state, nil
}

// Set replaces the stored state and refreshes its TTL.
func (s *RedisStore) Set(ctx context.Context, handle string, state *domain.WorkflowState) error {
	if handle == "" {
		return ErrEmptyHandle
	}
	if err := state.Validate(); err != nil {
		return err
	}
	state.UpdatedAt = time.Now().UTC()
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, key(handle), blob, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Clear deletes everything stored under handle.
func (s *RedisStore) Clear(ctx context.Context, handle string) error {
	if handle == "" {
		return ErrEmptyHandle
	}
	if err := s.client.Del(ctx, key(handle)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
