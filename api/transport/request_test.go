package transport

import (
	"testing"

	"github.com/dailydo/backend/domain"
)

func TestTaskCreateRequestValidate(t *testing.T) {
	valid := TaskCreateRequest{
		Title:          "Water plants",
		ScheduledTime:  "08:30",
		RepeatType:     "daily",
		ReminderOffset: 15,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	cases := map[string]TaskCreateRequest{
		"missing title":       {ScheduledTime: "08:30"},
		"bad time format":     {Title: "x", ScheduledTime: "8:30am"},
		"hour out of range":   {Title: "x", ScheduledTime: "25:00"},
		"unknown repeat type": {Title: "x", ScheduledTime: "08:30", RepeatType: "yearly"},
		"weekday out of range": {
			Title: "x", ScheduledTime: "08:30",
			RepeatType: "weekly", RepeatDays: []int{7},
		},
		"weekly without days": {Title: "x", ScheduledTime: "08:30", RepeatType: "weekly"},
		"negative offset":     {Title: "x", ScheduledTime: "08:30", ReminderOffset: -5},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			err := req.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Errorf("expected INVALID code, got %v", err)
			}
		})
	}
}

func TestTaskCreateRequestDefaults(t *testing.T) {
	req := TaskCreateRequest{Title: "Read", ScheduledTime: "21:00"}
	task := req.ToTask()

	if task.RepeatType != domain.RepeatDaily {
		t.Errorf("RepeatType = %s, want daily", task.RepeatType)
	}
	if task.Category != domain.DefaultCategory {
		t.Errorf("Category = %s, want %s", task.Category, domain.DefaultCategory)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("Priority = %s, want medium", task.Priority)
	}
	if !task.IsActive {
		t.Error("new tasks should be active")
	}
}

func TestTaskUpdateRequestWeeklyRule(t *testing.T) {
	weekly := "weekly"
	req := TaskUpdateRequest{RepeatType: &weekly}
	if err := req.Validate(); err == nil {
		t.Fatal("switching to weekly without days should fail")
	}

	days := []int{1, 3}
	req.RepeatDays = &days
	if err := req.Validate(); err != nil {
		t.Fatalf("weekly with days rejected: %v", err)
	}
}
