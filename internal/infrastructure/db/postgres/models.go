package postgres

import (
	"time"

	"github.com/tasklane/task-api/internal/core/domain"
)

type userModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type taskModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"not null"`
	Description string `gorm:"not null;default:''"`
	Completed   bool   `gorm:"not null;default:false"`
	Deleted     bool   `gorm:"not null;default:false;index:idx_tasks_owner_deleted,priority:2"`
	OwnerID     int64  `gorm:"not null;index:idx_tasks_owner_deleted,priority:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskModel) TableName() string { return "tasks" }

func (m taskModel) toDomain() *domain.Task {
	return &domain.Task{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Completed:   m.Completed,
		Deleted:     m.Deleted,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

type taskEventModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	TaskID      int64  `gorm:"not null;index"`
	OwnerID     int64  `gorm:"not null"`
	Action      string `gorm:"not null;size:16"`
	OccurredAt  time.Time
	ProcessedAt time.Time
}

func (taskEventModel) TableName() string { return "task_events" }
