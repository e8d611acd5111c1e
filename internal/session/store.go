// Package session persists workflow state keyed by an opaque session handle.
package session

import (
	"context"
	"errors"

	"github.com/spec-kit/checkin-service/internal/domain"
)

// ErrEmptyHandle is returned when a store is asked about an empty handle.
var ErrEmptyHandle = errors.New("session handle required")

// Store is the only persistence boundary for workflow state.
// Get never returns nil: an unknown handle or a blob that fails validation yields a fresh
// START state. Clear removes every workflow entity stored under the handle.
type Store interface {
	Get(ctx context.Context, handle string) (*domain.WorkflowState, error)
	Set(ctx context.Context, handle string, state *domain.WorkflowState) error
	Clear(ctx context.Context, handle string) error
}
