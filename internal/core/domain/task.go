package domain

import "time"

// TaskState is the lifecycle state of a task. It is derived from the deleted flag.
type TaskState string

const (
	TaskActive  TaskState = "active"
	TaskDeleted TaskState = "deleted"
)

// validTransitions defines the allowed lifecycle edges. There is no edge out
// of the system: tasks are never physically removed.
var validTransitions = map[TaskState][]TaskState{
	TaskActive:  {TaskDeleted},
	TaskDeleted: {TaskActive},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s TaskState) CanTransitionTo(next TaskState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Task is the core aggregate. OwnerID is fixed at creation.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Deleted     bool      `json:"deleted"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// State returns the lifecycle state of the task.
func (t *Task) State() TaskState {
	if t.Deleted {
		return TaskDeleted
	}
	return TaskActive
}

// TaskFilter selects tasks of a single owner. Nil fields are not filtered on.
// Deleted tasks are always excluded.
type TaskFilter struct {
	OwnerID     int64
	Title       *string
	Description *string
	Completed   *bool
}

// Matches reports whether t satisfies the filter.
func (f TaskFilter) Matches(t *Task) bool {
	if t.Deleted || t.OwnerID != f.OwnerID {
		return false
	}
	if f.Title != nil && t.Title != *f.Title {
		return false
	}
	if f.Description != nil && t.Description != *f.Description {
		return false
	}
	if f.Completed != nil && t.Completed != *f.Completed {
		return false
	}
	return true
}
