package history

import (
	"context"
	"testing"
	"time"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/repository"
)

type fakeCompletionRepo struct {
	records   []repository.CompletionRecord
	lastSince time.Time
}

func (r *fakeCompletionRepo) ListForDate(context.Context, string, string) ([]domain.TaskCompletion, error) {
	return nil, nil
}

func (r *fakeCompletionRepo) ListSince(_ context.Context, _ string, since time.Time) ([]repository.CompletionRecord, error) {
	r.lastSince = since
	var out []repository.CompletionRecord
	for _, rec := range r.records {
		if since.IsZero() || !rec.CompletedAt.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeCompletionRepo) Create(context.Context, *domain.TaskCompletion) (*domain.TaskCompletion, error) {
	return nil, nil
}

func (r *fakeCompletionRepo) Delete(context.Context, string) error { return nil }

func record(taskID string, completedAt time.Time, onTime bool) repository.CompletionRecord {
	return repository.CompletionRecord{
		TaskCompletion: domain.TaskCompletion{
			ID:              "c-" + taskID,
			TaskID:          taskID,
			CompletedAt:     completedAt,
			CompletedOnTime: onTime,
		},
		TaskTitle: "Task " + taskID,
	}
}

func TestListCompletionsWindows(t *testing.T) {
	now := time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC)
	repo := &fakeCompletionRepo{
		records: []repository.CompletionRecord{
			record("recent", now.AddDate(0, 0, -1), true),
			record("old", now.AddDate(0, 0, -10), true),
			record("ancient", now.AddDate(0, 0, -40), false),
		},
	}
	uc := New(repo, nil).WithClock(func() time.Time { return now })

	t.Run("week", func(t *testing.T) {
		records, err := uc.ListCompletions(context.Background(), "u1", WindowWeek)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 1 || records[0].TaskID != "recent" {
			t.Errorf("expected only the recent record, got %+v", records)
		}
		if want := now.AddDate(0, 0, -7); !repo.lastSince.Equal(want) {
			t.Errorf("since = %v, want %v", repo.lastSince, want)
		}
	})

	t.Run("month", func(t *testing.T) {
		records, err := uc.ListCompletions(context.Background(), "u1", WindowMonth)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records in month window, got %d", len(records))
		}
	})

	t.Run("all", func(t *testing.T) {
		records, err := uc.ListCompletions(context.Background(), "u1", WindowAll)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected full history, got %d", len(records))
		}
		if !repo.lastSince.IsZero() {
			t.Errorf("all window should pass a zero since, got %v", repo.lastSince)
		}
	})
}

func TestWeeklyStats(t *testing.T) {
	now := time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	repo := &fakeCompletionRepo{
		records: []repository.CompletionRecord{
			record("a", monday, true),
			record("b", monday.Add(time.Hour), true),
			record("c", tuesday, false),
		},
	}
	uc := New(repo, nil).WithClock(func() time.Time { return now })

	stats, err := uc.Weekly(context.Background(), "u1")
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}

	if stats.TotalCompleted != 3 {
		t.Errorf("TotalCompleted = %d, want 3", stats.TotalCompleted)
	}
	if stats.OnTimeCount != 2 || stats.LateCount != 1 {
		t.Errorf("on-time/late = %d/%d, want 2/1", stats.OnTimeCount, stats.LateCount)
	}
	if stats.BestDay != "2025-06-09" {
		t.Errorf("BestDay = %s, want 2025-06-09", stats.BestDay)
	}
	if stats.WorstDay != "2025-06-10" {
		t.Errorf("WorstDay = %s, want 2025-06-10", stats.WorstDay)
	}
}

func TestWeeklyStatsEmpty(t *testing.T) {
	uc := New(&fakeCompletionRepo{}, nil)
	stats, err := uc.Weekly(context.Background(), "u1")
	if err != nil {
		t.Fatalf("weekly: %v", err)
	}
	if stats.BestDay != "N/A" || stats.WorstDay != "N/A" || stats.TotalCompleted != 0 {
		t.Errorf("unexpected empty-week stats: %+v", stats)
	}
}
