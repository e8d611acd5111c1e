package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/spec-kit/checkin-service/internal/domain"
)

type memoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	now   func() time.Time
}

// NewMemoryStore keeps sessions in process memory. States are stored as encoded copies so
// callers can never mutate stored state without a Set.
func NewMemoryStore() Store {
	return &memoryStore{blobs: make(map[string][]byte), now: time.Now}
}

func (s *memoryStore) Get(ctx context.Context, handle string) (*domain.WorkflowState, error) {
	if handle == "" {
		return nil, ErrEmptyHandle
	}
	s.mu.Lock()
	blob, ok := s.blobs[handle]
	s.mu.Unlock()
	if !ok {
		return domain.NewWorkflowState(), nil
	}
	var state domain.WorkflowState
	if err := json.Unmarshal(blob, &state); err != nil || state.Validate() != nil {
		return domain.NewWorkflowState(), nil
	}
	return &state, nil
}

func (s *memoryStore) Set(ctx context.Context, handle string, state *domain.WorkflowState) error {
	if handle == "" {
		return ErrEmptyHandle
	}
	if err := state.Validate(); err != nil {
		return err
	}
	state.UpdatedAt = s.now().UTC()
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[handle] = blob
	return nil
}

func (s *memoryStore) Clear(ctx context.Context, handle string) error {
	if handle == "" {
		return ErrEmptyHandle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, handle)
	return nil
}
