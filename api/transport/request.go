package transport

import (
	"github.com/go-playground/validator/v10"

	"github.com/dailydo/backend/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v
}

// TaskCreateRequest is the payload for creating a task.
type TaskCreateRequest struct {
	Title          string `json:"title" validate:"required,max=200"`
	ScheduledTime  string `json:"scheduled_time" validate:"required,datetime=15:04"`
	RepeatType     string `json:"repeat_type" validate:"omitempty,oneof=once daily weekly monthly"`
	RepeatDays     []int  `json:"repeat_days" validate:"omitempty,dive,gte=0,lte=6"`
	Category       string `json:"category" validate:"omitempty,max=50"`
	Priority       string `json:"priority" validate:"omitempty,oneof=low medium high"`
	ReminderOffset int    `json:"reminder_offset" validate:"gte=0,lte=1440"`
}

// Validate checks field constraints plus the weekly repeat rule: a weekly
// task must name at least one weekday.
func (r *TaskCreateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	if domain.RepeatType(r.RepeatType) == domain.RepeatWeekly && len(r.RepeatDays) == 0 {
		return domain.ErrInvalidPayload.WithMessage("weekly tasks require at least one repeat day")
	}
	return nil
}

// ToTask converts the request into a domain task with defaults applied.
func (r *TaskCreateRequest) ToTask() *domain.Task {
	task := &domain.Task{
		Title:          r.Title,
		ScheduledTime:  r.ScheduledTime,
		RepeatType:     domain.RepeatType(r.RepeatType),
		RepeatDays:     r.RepeatDays,
		Category:       r.Category,
		Priority:       domain.Priority(r.Priority),
		ReminderOffset: r.ReminderOffset,
		IsActive:       true,
	}
	if task.RepeatType == "" {
		task.RepeatType = domain.RepeatDaily
	}
	if task.Category == "" {
		task.Category = domain.DefaultCategory
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	return task
}

// TaskUpdateRequest carries partial task changes. Absent fields stay untouched.
type TaskUpdateRequest struct {
	Title          *string `json:"title" validate:"omitempty,min=1,max=200"`
	ScheduledTime  *string `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	RepeatType     *string `json:"repeat_type" validate:"omitempty,oneof=once daily weekly monthly"`
	RepeatDays     *[]int  `json:"repeat_days" validate:"omitempty,dive,gte=0,lte=6"`
	Category       *string `json:"category" validate:"omitempty,max=50"`
	Priority       *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	ReminderOffset *int    `json:"reminder_offset" validate:"omitempty,gte=0,lte=1440"`
	IsActive       *bool   `json:"is_active"`
}

func (r *TaskUpdateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	if r.RepeatType != nil && domain.RepeatType(*r.RepeatType) == domain.RepeatWeekly {
		if r.RepeatDays == nil || len(*r.RepeatDays) == 0 {
			return domain.ErrInvalidPayload.WithMessage("weekly tasks require at least one repeat day")
		}
	}
	return nil
}

// ToggleRequest flips a task's completion state for today.
type ToggleRequest struct {
	Completed bool `json:"completed"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id" validate:"required"`
	TTL    int    `json:"ttl_seconds" validate:"gte=0"`
}

func (r *AuthLoginRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	return nil
}

type RefreshRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TTL       int    `json:"ttl_seconds" validate:"gte=0"`
}

func (r *RefreshRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	return nil
}
