package reconcile

import (
	"testing"
	"time"

	"github.com/dailydo/backend/domain"
)

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 6, 12, 10, 30, 0, 0, time.UTC)

	tasks := []domain.TaskWithCompletion{
		// Completed, can never be overdue.
		{Task: domain.Task{ID: "t1", ScheduledTime: "06:00"}, IsCompletedToday: true},
		// 09:00 + 60m deadline passed at 10:30.
		{Task: domain.Task{ID: "t2", ScheduledTime: "09:00", ReminderOffset: 60}},
		// Still in the future.
		{Task: domain.Task{ID: "t3", ScheduledTime: "18:00", ReminderOffset: 30}},
	}

	stats := ComputeStats(tasks, now)

	if stats.TotalTasks != 3 {
		t.Errorf("TotalTasks = %d, want 3", stats.TotalTasks)
	}
	if stats.CompletedToday != 1 {
		t.Errorf("CompletedToday = %d, want 1", stats.CompletedToday)
	}
	if stats.CompletionRate != 33 {
		t.Errorf("CompletionRate = %d, want 33", stats.CompletionRate)
	}
	if stats.OverdueCount != 1 {
		t.Errorf("OverdueCount = %d, want 1", stats.OverdueCount)
	}
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0 (stub)", stats.CurrentStreak)
	}
}

func TestComputeStatsEmptyInput(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	if stats.CompletionRate != 0 {
		t.Errorf("CompletionRate with no tasks = %d, want 0", stats.CompletionRate)
	}
	if stats.TotalTasks != 0 || stats.CompletedToday != 0 || stats.OverdueCount != 0 {
		t.Errorf("unexpected non-zero stats: %+v", stats)
	}
}

func TestComputeStatsRounding(t *testing.T) {
	tasks := []domain.TaskWithCompletion{
		{Task: domain.Task{ID: "t1", ScheduledTime: "23:00"}, IsCompletedToday: true},
		{Task: domain.Task{ID: "t2", ScheduledTime: "23:00"}, IsCompletedToday: true},
		{Task: domain.Task{ID: "t3", ScheduledTime: "23:00"}},
	}
	stats := ComputeStats(tasks, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	if stats.CompletionRate != 67 {
		t.Errorf("CompletionRate = %d, want 67 (2/3 rounded)", stats.CompletionRate)
	}
}
