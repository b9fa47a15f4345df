package domain

import "time"

// TaskAction names a recorded lifecycle change.
type TaskAction string

const (
	ActionCreated  TaskAction = "created"
	ActionUpdated  TaskAction = "updated"
	ActionDeleted  TaskAction = "deleted"
	ActionRestored TaskAction = "restored"
)

// TaskEvent is an entry in the task activity log.
type TaskEvent struct {
	TaskID     int64
	OwnerID    int64
	Action     TaskAction
	OccurredAt time.Time
}
