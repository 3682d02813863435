package history

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/dailydo/backend/pkg/schedule"
	"github.com/dailydo/backend/repository"
)

// Window selects how far back completion history reaches.
type Window string

const (
	WindowAll   Window = "all"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

// WeeklyStats is the trailing-7-day completion rollup.
type WeeklyStats struct {
	TotalCompleted int    `json:"totalCompleted"`
	OnTimeCount    int    `json:"onTimeCount"`
	LateCount      int    `json:"lateCount"`
	BestDay        string `json:"bestDay"`
	WorstDay       string `json:"worstDay"`
}

type UseCase struct {
	completions repository.CompletionRepository
	logger      *zap.Logger
	clock       func() time.Time
}

func New(completions repository.CompletionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		completions: completions,
		logger:      logger,
		clock:       time.Now,
	}
}

// WithClock overrides the time source.
func (uc *UseCase) WithClock(clock func() time.Time) *UseCase {
	if clock != nil {
		uc.clock = clock
	}
	return uc
}

// ListCompletions returns the user's completion history for the window,
// newest first, with task titles attached.
func (uc *UseCase) ListCompletions(ctx context.Context, userID string, window Window) ([]repository.CompletionRecord, error) {
	var since time.Time
	now := uc.clock()
	switch window {
	case WindowWeek:
		since = now.AddDate(0, 0, -7)
	case WindowMonth:
		since = now.AddDate(0, 0, -30)
	}
	return uc.completions.ListSince(ctx, userID, since)
}

// Weekly aggregates the trailing seven days of completions: totals, on-time
// versus late split, and the best and worst day by completion count.
func (uc *UseCase) Weekly(ctx context.Context, userID string) (*WeeklyStats, error) {
	now := uc.clock()
	records, err := uc.completions.ListSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	stats := &WeeklyStats{
		TotalCompleted: len(records),
		BestDay:        "N/A",
		WorstDay:       "N/A",
	}

	dayCounts := make(map[string]int)
	for _, record := range records {
		if record.CompletedOnTime {
			stats.OnTimeCount++
		} else {
			stats.LateCount++
		}
		dayCounts[schedule.DateOf(record.CompletedAt)]++
	}

	if len(dayCounts) > 0 {
		type dayCount struct {
			day   string
			count int
		}
		days := make([]dayCount, 0, len(dayCounts))
		for day, count := range dayCounts {
			days = append(days, dayCount{day: day, count: count})
		}
		sort.Slice(days, func(i, j int) bool {
			if days[i].count != days[j].count {
				return days[i].count > days[j].count
			}
			return days[i].day < days[j].day
		})
		stats.BestDay = days[0].day
		stats.WorstDay = days[len(days)-1].day
	}

	return stats, nil
}
