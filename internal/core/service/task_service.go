package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tasklane/task-api/internal/core/domain"
	"github.com/tasklane/task-api/internal/core/ports"
)

// TaskService implements the task lifecycle. It holds no state between calls:
// each operation reads current state, authorizes, then writes.
type TaskService struct {
	tasks    ports.TaskRepository
	users    ports.UserRepository
	guard    *OwnershipGuard
	activity ports.ActivityRecorder
	idem     ports.IdempotencyStore
	log      zerolog.Logger
	now      func() time.Time
}

// NewTaskService returns a TaskService. activity and idem may be nil, which
// disables the activity log and idempotent create respectively.
func NewTaskService(
	tasks ports.TaskRepository,
	users ports.UserRepository,
	activity ports.ActivityRecorder,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		guard:    NewOwnershipGuard(tasks, users),
		activity: activity,
		idem:     idem,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateTask creates an active, incomplete task owned by input.OwnerID.
func (s *TaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput) (*ports.CreateTaskResult, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.NewValidationError("title is required")
	}

	_, found, err := s.users.FindByID(ctx, input.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	if !found {
		return nil, domain.ErrInvalidActor
	}

	existing, claimed, err := s.reserve(ctx, input)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ports.CreateTaskResult{Task: existing, AlreadyExisted: true}, nil
	}

	now := s.now()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Completed:   false,
		Deleted:     false,
		OwnerID:     input.OwnerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if claimed {
			if rerr := s.idem.Release(ctx, input.OwnerID, input.IdempotencyKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("idempotency_key", input.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		s.log.Error().Err(err).Int64("owner_id", input.OwnerID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	if claimed {
		if err := s.idem.Remember(ctx, input.OwnerID, input.IdempotencyKey, task.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to remember idempotency key")
		}
	}

	s.record(task, domain.ActionCreated)
	s.log.Info().Int64("task_id", task.ID).Int64("owner_id", task.OwnerID).Msg("task created")

	return &ports.CreateTaskResult{Task: task}, nil
}

// reserve resolves the idempotency key before a create. It returns the task
// to replay when an earlier create finished under the key, or claimed=true
// when this request now owns the key and must Remember or Release it.
// Store failures are logged and the create proceeds without a key.
func (s *TaskService) reserve(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, bool, error) {
	if input.IdempotencyKey == "" || s.idem == nil {
		return nil, false, nil
	}

	existing, pending, err := s.remembered(ctx, input)
	if err != nil || existing != nil || pending {
		return existing, false, err
	}

	claimed, err := s.idem.Claim(ctx, input.OwnerID, input.IdempotencyKey)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("idempotency claim failed, creating anyway")
		return nil, false, nil
	}
	if claimed {
		return nil, true, nil
	}

	// A concurrent create got the key first.
	existing, pending, err = s.remembered(ctx, input)
	if err != nil || existing != nil || pending {
		return existing, false, err
	}

	// The entry names a task that is gone, deleted or foreign. Take it over.
	return nil, true, nil
}

// remembered looks the key up. It returns the task to replay, or
// domain.ErrCreateInProgress while another request holds the claim.
// pending is true only together with that error.
func (s *TaskService) remembered(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, bool, error) {
	taskID, ok, err := s.idem.Lookup(ctx, input.OwnerID, input.IdempotencyKey)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("idempotency lookup failed, creating anyway")
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}
	if taskID == 0 {
		return nil, true, domain.ErrCreateInProgress
	}

	task, err := s.guard.Authorize(ctx, taskID, input.OwnerID, GuardActive)
	if err != nil {
		s.log.Debug().Err(err).Int64("task_id", taskID).Msg("remembered task not replayable")
		return nil, false, nil
	}

	s.log.Info().Str("idempotency_key", input.IdempotencyKey).Int64("task_id", task.ID).Msg("idempotent replay")
	return task, false, nil
}

// ListTasks returns the caller's active tasks matching filter. The owner
// predicate is always taken from actingUserID. An empty result is reported
// as domain.ErrTasksNotFound.
func (s *TaskService) ListTasks(ctx context.Context, actingUserID int64, filter domain.TaskFilter) ([]*domain.Task, error) {
	filter.OwnerID = actingUserID

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, domain.ErrTasksNotFound
	}
	return tasks, nil
}

// GetTask returns a single active task owned by the caller.
func (s *TaskService) GetTask(ctx context.Context, taskID, actingUserID int64) (*domain.Task, error) {
	return s.guard.Authorize(ctx, taskID, actingUserID, GuardActive)
}

// FullUpdateTask replaces title, description and completed.
func (s *TaskService) FullUpdateTask(ctx context.Context, taskID, actingUserID int64, update ports.TaskUpdate) (*domain.Task, error) {
	if err := checkOwnerUnchanged(update, actingUserID); err != nil {
		return nil, err
	}
	if update.Title == nil || update.Description == nil || update.Completed == nil {
		return nil, domain.NewValidationError("title, description and completed are required for a full update")
	}
	if err := checkTitle(update.Title); err != nil {
		return nil, err
	}

	return s.applyUpdate(ctx, taskID, actingUserID, update)
}

// PartialUpdateTask changes only the supplied fields.
func (s *TaskService) PartialUpdateTask(ctx context.Context, taskID, actingUserID int64, update ports.TaskUpdate) (*domain.Task, error) {
	if err := checkOwnerUnchanged(update, actingUserID); err != nil {
		return nil, err
	}
	if update.Title == nil && update.Description == nil && update.Completed == nil {
		return nil, domain.NewValidationError("at least one of title, description or completed is required")
	}
	if err := checkTitle(update.Title); err != nil {
		return nil, err
	}

	return s.applyUpdate(ctx, taskID, actingUserID, update)
}

func (s *TaskService) applyUpdate(ctx context.Context, taskID, actingUserID int64, update ports.TaskUpdate) (*domain.Task, error) {
	task, err := s.guard.Authorize(ctx, taskID, actingUserID, GuardActive)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	task.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task %d: %w", taskID, err)
	}

	s.record(task, domain.ActionUpdated)
	return task, nil
}

// DeleteTask soft-deletes the task. A second delete is masked as not found.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actingUserID int64) error {
	task, err := s.guard.Authorize(ctx, taskID, actingUserID, GuardActive)
	if err != nil {
		return err
	}
	return s.transition(ctx, task, domain.TaskDeleted, domain.ActionDeleted)
}

// RestoreTask brings a soft-deleted task back to active.
func (s *TaskService) RestoreTask(ctx context.Context, taskID, actingUserID int64) error {
	task, err := s.guard.Authorize(ctx, taskID, actingUserID, GuardRestore)
	if err != nil {
		return err
	}
	if task.State() != domain.TaskDeleted {
		return domain.ErrTaskNotDeleted
	}
	return s.transition(ctx, task, domain.TaskActive, domain.ActionRestored)
}

func (s *TaskService) transition(ctx context.Context, task *domain.Task, next domain.TaskState, action domain.TaskAction) error {
	if !task.State().CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move task from %s to %s", domain.ErrInvalidState, task.State(), next)
	}

	task.Deleted = next == domain.TaskDeleted
	task.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, task); err != nil {
		return fmt.Errorf("%s task %d: %w", action, task.ID, err)
	}

	s.record(task, action)
	s.log.Info().Int64("task_id", task.ID).Str("action", string(action)).Msg("task state changed")
	return nil
}

func (s *TaskService) record(task *domain.Task, action domain.TaskAction) {
	if s.activity == nil {
		return
	}
	s.activity.Record(domain.TaskEvent{
		TaskID:     task.ID,
		OwnerID:    task.OwnerID,
		Action:     action,
		OccurredAt: s.now(),
	})
}

func checkOwnerUnchanged(update ports.TaskUpdate, actingUserID int64) error {
	if update.OwnerID != nil && *update.OwnerID != actingUserID {
		return domain.ErrOwnerChange
	}
	return nil
}

func checkTitle(title *string) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return domain.NewValidationError("title must not be empty")
	}
	return nil
}
