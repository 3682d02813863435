package reconcile

import (
	"math"
	"time"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/pkg/schedule"
)

// ComputeStats reduces an enriched task list into the day's aggregates.
// CurrentStreak is a stub and stays zero.
func ComputeStats(tasks []domain.TaskWithCompletion, now time.Time) domain.TaskStats {
	stats := domain.TaskStats{TotalTasks: len(tasks)}
	for _, task := range tasks {
		if task.IsCompletedToday {
			stats.CompletedToday++
		}
		if schedule.IsOverdue(task.ScheduledTime, task.ReminderOffset, task.IsCompletedToday, now) {
			stats.OverdueCount++
		}
	}
	if stats.TotalTasks > 0 {
		stats.CompletionRate = int(math.Round(100 * float64(stats.CompletedToday) / float64(stats.TotalTasks)))
	}
	return stats
}
