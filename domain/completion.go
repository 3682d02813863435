package domain

import "time"

// TaskCompletion records that a task's occurrence was completed on a given calendar day.
// Completions are inserted when the user marks a task done and deleted when the
// mark is removed; they are never updated in place.
type TaskCompletion struct {
	ID              string    `json:"id"`
	TaskID          string    `json:"task_id"`
	CompletedAt     time.Time `json:"completed_at"`
	ScheduledFor    string    `json:"scheduled_for"` // "YYYY-MM-DD"
	CompletedOnTime bool      `json:"completed_on_time"`
	Notes           string    `json:"notes,omitempty"`
}
