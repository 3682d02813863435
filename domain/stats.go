package domain

// TaskStats aggregates the current day's completion picture across a user's
// active tasks. CurrentStreak is reserved for day-over-day streak tracking and
// is always zero for now.
type TaskStats struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedToday int `json:"completedToday"`
	CompletionRate int `json:"completionRate"` // 0-100, rounded
	CurrentStreak  int `json:"currentStreak"`
	OverdueCount   int `json:"overdueCount"`
}
