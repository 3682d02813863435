package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/repository"
)

type fakeTaskRepo struct {
	mu      sync.Mutex
	tasks   map[string]domain.Task
	nextID  int
	listErr error
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *fakeTaskRepo) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

func (r *fakeTaskRepo) ListActive(_ context.Context, userID string) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []domain.Task
	for _, task := range r.tasks {
		if task.IsActive && (userID == "" || task.UserID == userID) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime < out[j].ScheduledTime })
	return out, nil
}

func (r *fakeTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == "" {
		r.nextID++
		task.ID = fmt.Sprintf("task-%d", r.nextID)
	}
	task.IsActive = true
	r.tasks[task.ID] = *task
	return task, nil
}

func (r *fakeTaskRepo) Patch(_ context.Context, id string, patch repository.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.ScheduledTime != nil {
		task.ScheduledTime = *patch.ScheduledTime
	}
	if patch.ReminderOffset != nil {
		task.ReminderOffset = *patch.ReminderOffset
	}
	if patch.IsActive != nil {
		task.IsActive = *patch.IsActive
	}
	r.tasks[id] = task
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

type fakeCompletionRepo struct {
	mu          sync.Mutex
	completions map[string]domain.TaskCompletion
	nextID      int
}

func newFakeCompletionRepo() *fakeCompletionRepo {
	return &fakeCompletionRepo{completions: make(map[string]domain.TaskCompletion)}
}

func (r *fakeCompletionRepo) ListForDate(_ context.Context, _ string, date string) ([]domain.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TaskCompletion
	for _, c := range r.completions {
		if c.ScheduledFor == date {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCompletionRepo) ListSince(context.Context, string, time.Time) ([]repository.CompletionRecord, error) {
	return nil, nil
}

func (r *fakeCompletionRepo) Create(_ context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	completion.ID = fmt.Sprintf("comp-%d", r.nextID)
	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now()
	}
	r.completions[completion.ID] = *completion
	return completion, nil
}

func (r *fakeCompletionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.completions[id]; !ok {
		return domain.ErrCompletionNotFound
	}
	delete(r.completions, id)
	return nil
}

func (r *fakeCompletionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completions)
}

type recordingScheduler struct {
	mu        sync.Mutex
	scheduled [][]domain.TaskWithCompletion
	cancelled []string
}

func (s *recordingScheduler) ScheduleAll(_ context.Context, _ string, tasks []domain.TaskWithCompletion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, tasks)
	return nil
}

func (s *recordingScheduler) CancelTask(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, taskID)
	return nil
}

func testClock() time.Time {
	return time.Date(2025, 6, 12, 10, 30, 0, 0, time.UTC)
}

func newTestEngine(t *testing.T) (*Engine, *fakeTaskRepo, *fakeCompletionRepo, *recordingScheduler) {
	t.Helper()
	tasks := newFakeTaskRepo()
	completions := newFakeCompletionRepo()
	scheduler := &recordingScheduler{}
	engine := NewEngine("u1", tasks, completions, scheduler, nil).WithClock(testClock)
	return engine, tasks, completions, scheduler
}

func seedTask(t *testing.T, repo *fakeTaskRepo, id, scheduledTime string, offset int) {
	t.Helper()
	_, err := repo.Create(context.Background(), &domain.Task{
		ID:             id,
		UserID:         "u1",
		Title:          "Task " + id,
		ScheduledTime:  scheduledTime,
		ReminderOffset: offset,
		RepeatType:     domain.RepeatDaily,
	})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}
}

func TestRefreshBuildsSnapshotAndSchedulesReminders(t *testing.T) {
	engine, tasks, completions, scheduler := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "09:00", 60) // overdue at 10:30
	seedTask(t, tasks, "t2", "11:00", 0)
	seedTask(t, tasks, "t3", "18:00", 0)
	if _, err := completions.Create(ctx, &domain.TaskCompletion{TaskID: "t2", ScheduledFor: "2025-06-12"}); err != nil {
		t.Fatalf("seed completion: %v", err)
	}

	snap, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if len(snap.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(snap.Tasks))
	}
	// ListActive orders by scheduled_time.
	if snap.Tasks[0].ID != "t1" || snap.Tasks[1].ID != "t2" || snap.Tasks[2].ID != "t3" {
		t.Errorf("unexpected order: %s %s %s", snap.Tasks[0].ID, snap.Tasks[1].ID, snap.Tasks[2].ID)
	}
	if !snap.Tasks[1].IsCompletedToday {
		t.Error("t2 should be completed today")
	}

	want := domain.TaskStats{TotalTasks: 3, CompletedToday: 1, CompletionRate: 33, OverdueCount: 1}
	if snap.Stats != want {
		t.Errorf("stats = %+v, want %+v", snap.Stats, want)
	}
	if snap.Version == 0 {
		t.Error("snapshot version not set")
	}

	if len(scheduler.scheduled) != 1 {
		t.Fatalf("expected 1 ScheduleAll call, got %d", len(scheduler.scheduled))
	}
}

func TestRefreshFailureKeepsPriorSnapshot(t *testing.T) {
	engine, tasks, _, _ := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "09:00", 0)
	first, err := engine.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	tasks.listErr = errors.New("connection refused")
	got, err := engine.Refresh(ctx)
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if got.Version != first.Version || len(got.Tasks) != 1 {
		t.Errorf("failed refresh must return the prior snapshot, got %+v", got)
	}
	if snap := engine.Snapshot(); snap.Version != first.Version {
		t.Errorf("stored snapshot changed after failure: %+v", snap)
	}
}

func TestToggleCompletionInsertsExactlyOneRow(t *testing.T) {
	engine, tasks, completions, _ := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "11:00", 0)
	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := engine.ToggleCompletion(ctx, "t1", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if completions.count() != 1 {
		t.Fatalf("expected 1 completion row, got %d", completions.count())
	}

	snap := engine.Snapshot()
	if !snap.Tasks[0].IsCompletedToday {
		t.Error("task should reflect completion after refetch")
	}
	// Completed before the 11:00 deadline.
	var stored domain.TaskCompletion
	for _, c := range completions.completions {
		stored = c
	}
	if !stored.CompletedOnTime {
		t.Error("completion at 10:30 for an 11:00 task should be on time")
	}
	if stored.ScheduledFor != "2025-06-12" {
		t.Errorf("scheduled_for = %s, want 2025-06-12", stored.ScheduledFor)
	}

	// Completing again must not create a duplicate row.
	if err := engine.ToggleCompletion(ctx, "t1", true); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if completions.count() != 1 {
		t.Errorf("expected still 1 completion row, got %d", completions.count())
	}
}

func TestToggleCompletionUnmark(t *testing.T) {
	engine, tasks, completions, _ := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "09:00", 0)
	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := engine.ToggleCompletion(ctx, "t1", true); err != nil {
		t.Fatalf("toggle complete: %v", err)
	}

	if err := engine.ToggleCompletion(ctx, "t1", false); err != nil {
		t.Fatalf("toggle incomplete: %v", err)
	}
	if completions.count() != 0 {
		t.Errorf("expected completion row removed, got %d", completions.count())
	}
	if engine.Snapshot().Tasks[0].IsCompletedToday {
		t.Error("task should no longer be completed")
	}

	// Unmarking with no tracked completion is a silent no-op.
	if err := engine.ToggleCompletion(ctx, "t1", false); err != nil {
		t.Fatalf("no-op unmark: %v", err)
	}
}

func TestToggleCompletionUnknownTask(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	if err := engine.ToggleCompletion(context.Background(), "ghost", true); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestAddTaskTagsOwnerAndRefetches(t *testing.T) {
	engine, tasks, _, _ := newTestEngine(t)
	ctx := context.Background()

	task := &domain.Task{Title: "Stretch", ScheduledTime: "07:00"}
	if err := engine.AddTask(ctx, task); err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.UserID != "u1" {
		t.Errorf("owner = %q, want u1", task.UserID)
	}

	snap := engine.Snapshot()
	if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Stretch" {
		t.Errorf("snapshot not refreshed after add: %+v", snap.Tasks)
	}
	if len(tasks.tasks) != 1 {
		t.Errorf("expected 1 stored task, got %d", len(tasks.tasks))
	}
}

func TestDeleteTaskCancelsPendingReminder(t *testing.T) {
	engine, tasks, _, scheduler := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "09:00", 0)
	if _, err := engine.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := engine.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(scheduler.cancelled) != 1 || scheduler.cancelled[0] != "t1" {
		t.Errorf("expected reminder cancellation for t1, got %v", scheduler.cancelled)
	}
	if len(engine.Snapshot().Tasks) != 0 {
		t.Error("snapshot should be empty after delete")
	}
}

func TestUpdateTaskAppliesPatch(t *testing.T) {
	engine, tasks, _, _ := newTestEngine(t)
	ctx := context.Background()

	seedTask(t, tasks, "t1", "09:00", 0)
	newTime := "14:00"
	if err := engine.UpdateTask(ctx, "t1", repository.TaskPatch{ScheduledTime: &newTime}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := engine.Snapshot().Tasks[0].ScheduledTime; got != "14:00" {
		t.Errorf("scheduled_time = %s, want 14:00", got)
	}
}

func TestRecomputeStatsTracksClock(t *testing.T) {
	tasks := newFakeTaskRepo()
	completions := newFakeCompletionRepo()
	engine := NewEngine("u1", tasks, completions, nil, nil)

	now := testClock()
	engine.WithClock(func() time.Time { return now })

	seedTask(t, tasks, "t1", "10:00", 60) // deadline 11:00
	if _, err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if engine.Stats().OverdueCount != 0 {
		t.Fatal("task should not be overdue at 10:30")
	}

	now = now.Add(45 * time.Minute) // 11:15
	stats := engine.RecomputeStats()
	if stats.OverdueCount != 1 {
		t.Errorf("OverdueCount after clock advance = %d, want 1", stats.OverdueCount)
	}
}
