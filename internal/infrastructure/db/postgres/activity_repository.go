package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tasklane/task-api/internal/core/domain"
)

// ActivityRepository appends task activity entries to the task_events table.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Insert(ctx context.Context, event domain.TaskEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Create(&taskEventModel{
		TaskID:      event.TaskID,
		OwnerID:     event.OwnerID,
		Action:      string(event.Action),
		OccurredAt:  event.OccurredAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}).Error
}
