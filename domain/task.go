package domain

import "time"

// RepeatType describes how often a task recurs.
type RepeatType string

const (
	RepeatOnce    RepeatType = "once"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
)

// Priority ranks a task for display purposes.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultCategory is applied when a task is created without a category tag.
const DefaultCategory = "personal"

// Task represents a recurring or one-off obligation with a scheduled wall-clock time.
type Task struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id,omitempty"`
	Title          string     `json:"title"`
	ScheduledTime  string     `json:"scheduled_time"` // "HH:MM", 24-hour
	RepeatType     RepeatType `json:"repeat_type"`
	RepeatDays     []int      `json:"repeat_days"` // weekday indices 0-6, weekly tasks only
	Category       string     `json:"category"`
	Priority       Priority   `json:"priority"`
	ReminderOffset int        `json:"reminder_offset"` // minutes after scheduled_time
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (t *Task) IsWeekly() bool {
	return t != nil && t.RepeatType == RepeatWeekly
}

// TaskWithCompletion is a Task joined with today's completion record.
// It is derived fresh on every reconciliation pass and never stored.
type TaskWithCompletion struct {
	Task
	IsCompletedToday bool       `json:"isCompletedToday"`
	CompletionID     string     `json:"completionId,omitempty"`
	LastCompletedAt  *time.Time `json:"lastCompletedAt,omitempty"`
}
