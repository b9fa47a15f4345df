package ports

import (
	"context"

	"github.com/tasklane/task-api/internal/core/domain"
)

// ActivityRepository persists task activity log entries.
type ActivityRepository interface {
	Insert(ctx context.Context, event domain.TaskEvent) error
}

// ActivityRecorder accepts activity events for asynchronous persistence.
// Record must not block the caller.
type ActivityRecorder interface {
	Record(event domain.TaskEvent)
}

// IdempotencyStore remembers which task an owner created for a given
// Idempotency-Key.
//
// A create first Claims the key. Only the claimant inserts a task and then
// Remembers its id, or Releases the key when the insert fails. While a claim
// is pending, Lookup reports found with a zero task id.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID int64, key string) (int64, bool, error)
	Claim(ctx context.Context, ownerID int64, key string) (bool, error)
	Remember(ctx context.Context, ownerID int64, key string, taskID int64) error
	Release(ctx context.Context, ownerID int64, key string) error
}
