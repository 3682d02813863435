package repository

import (
	"context"

	"github.com/dailydo/backend/domain"
)

// TaskPatch carries partial field changes for an update. Nil fields are left
// untouched.
type TaskPatch struct {
	Title          *string
	ScheduledTime  *string
	RepeatType     *domain.RepeatType
	RepeatDays     *[]int
	Category       *string
	Priority       *domain.Priority
	ReminderOffset *int
	IsActive       *bool
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// ListActive returns active tasks ordered by scheduled_time ascending.
	// An empty userID matches tasks of every owner.
	ListActive(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Patch(ctx context.Context, id string, patch TaskPatch) error
	Delete(ctx context.Context, id string) error
}
