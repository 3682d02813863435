package repository

import (
	"context"
	"time"

	"github.com/dailydo/backend/domain"
)

// CompletionRecord is a completion row joined with its task's title for
// history views.
type CompletionRecord struct {
	domain.TaskCompletion
	TaskTitle string `json:"task_title"`
}

type CompletionRepository interface {
	// ListForDate returns completions whose scheduled_for equals date
	// ("YYYY-MM-DD"), scoped to the user's tasks.
	ListForDate(ctx context.Context, userID, date string) ([]domain.TaskCompletion, error)
	// ListSince returns completions with completed_at >= since, newest first,
	// joined with task titles. A zero since returns the full history.
	ListSince(ctx context.Context, userID string, since time.Time) ([]CompletionRecord, error)
	Create(ctx context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error)
	Delete(ctx context.Context, id string) error
}
