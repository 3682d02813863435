package reminderstore

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a pending notification persisted until its fire time passes.
type Reminder struct {
	ID      string    `json:"id"`
	TaskID  string    `json:"task_id"`
	UserID  string    `json:"user_id,omitempty"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	FireAt  time.Time `json:"fire_at"`
	Created time.Time `json:"created"`

	bucketKey []byte
}

func (r *Reminder) normalize() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
}
