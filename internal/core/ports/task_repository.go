package ports

import (
	"context"

	"github.com/tasklane/task-api/internal/core/domain"
)

// TaskRepository persists tasks. It performs no authorization of its own.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id int64) (*domain.Task, bool, error)
	// List returns the non-deleted tasks matching filter, ordered by id.
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
	// Update overwrites title, description, completed, deleted and updated_at
	// of the stored row. Concurrent writers race at last-write-wins.
	Update(ctx context.Context, t *domain.Task) error
}
