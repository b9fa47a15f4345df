package ports

import (
	"context"

	"github.com/tasklane/task-api/internal/core/domain"
)

// CreateTaskInput carries the data needed to create a task.
type CreateTaskInput struct {
	OwnerID        int64
	Title          string
	Description    string
	IdempotencyKey string
}

// CreateTaskResult is returned by CreateTask.
type CreateTaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// TaskUpdate carries an update payload. For a full update Title, Description
// and Completed are all mandatory; for a partial update at least one of them
// must be set. OwnerID is accepted only to detect attempts to change it.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
	OwnerID     *int64
}

// TaskService defines the task lifecycle use cases. Every method acts on
// behalf of actingUserID.
type TaskService interface {
	CreateTask(ctx context.Context, input CreateTaskInput) (*CreateTaskResult, error)
	ListTasks(ctx context.Context, actingUserID int64, filter domain.TaskFilter) ([]*domain.Task, error)
	GetTask(ctx context.Context, taskID, actingUserID int64) (*domain.Task, error)
	FullUpdateTask(ctx context.Context, taskID, actingUserID int64, update TaskUpdate) (*domain.Task, error)
	PartialUpdateTask(ctx context.Context, taskID, actingUserID int64, update TaskUpdate) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, actingUserID int64) error
	RestoreTask(ctx context.Context, taskID, actingUserID int64) error
}
