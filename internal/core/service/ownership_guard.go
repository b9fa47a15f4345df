package service

import (
	"context"
	"fmt"

	"github.com/tasklane/task-api/internal/core/domain"
	"github.com/tasklane/task-api/internal/core/ports"
)

// GuardMode selects whether soft-deleted tasks are visible to the guard.
type GuardMode int

const (
	// GuardActive hides soft-deleted tasks behind domain.ErrTaskNotFound.
	GuardActive GuardMode = iota
	// GuardRestore lets the restore path see soft-deleted tasks.
	GuardRestore
)

// OwnershipGuard is the authorization check every task operation that
// targets an existing task goes through.
type OwnershipGuard struct {
	tasks ports.TaskRepository
	users ports.UserRepository
}

func NewOwnershipGuard(tasks ports.TaskRepository, users ports.UserRepository) *OwnershipGuard {
	return &OwnershipGuard{tasks: tasks, users: users}
}

// Authorize resolves taskID and confirms actingUserID may act on it.
//
// Deleted tasks are indistinguishable from missing ones outside restore mode.
// Ownership is checked before the acting user is resolved, so a non-owner
// learns only that the task exists.
func (g *OwnershipGuard) Authorize(ctx context.Context, taskID, actingUserID int64, mode GuardMode) (*domain.Task, error) {
	task, found, err := g.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("authorize task %d: %w", taskID, err)
	}
	if !found {
		return nil, domain.ErrTaskNotFound
	}

	if task.Deleted && mode != GuardRestore {
		return nil, domain.ErrTaskNotFound
	}

	if task.OwnerID != actingUserID {
		return nil, domain.ErrTaskForbidden
	}

	_, found, err = g.users.FindByID(ctx, actingUserID)
	if err != nil {
		return nil, fmt.Errorf("authorize user %d: %w", actingUserID, err)
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}

	return task, nil
}
