package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/tasklane/task-api/internal/core/domain"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := taskModel{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Deleted:     t.Deleted,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return m.toDomain(), nil
}

// FindByID retrieves a task by id regardless of its deleted flag.
func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m taskModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find task: %w", err)
	}
	return m.toDomain(), true, nil
}

// List returns the owner's non-deleted tasks matching the filter, ordered by id.
func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := r.db.WithContext(ctx).Where("owner_id = ? AND deleted = ?", f.OwnerID, false)
	if f.Title != nil {
		q = q.Where("title = ?", *f.Title)
	}
	if f.Description != nil {
		q = q.Where("description = ?", *f.Description)
	}
	if f.Completed != nil {
		q = q.Where("completed = ?", *f.Completed)
	}

	var rows []taskModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, m := range rows {
		tasks = append(tasks, m.toDomain())
	}
	return tasks, nil
}

// Update overwrites the mutable columns. A map is used so false and empty
// values are written too.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&taskModel{}).Where("id = ?", t.ID).Updates(map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"deleted":     t.Deleted,
		"updated_at":  t.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}
