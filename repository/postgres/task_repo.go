package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, user_id, title, scheduled_time, repeat_type, repeat_days, category, priority, reminder_offset, is_active, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) ListActive(ctx context.Context, userID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE is_active = TRUE
	  AND ($1 = '' OR user_id::text = $1)
	ORDER BY scheduled_time ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Category == "" {
		task.Category = domain.DefaultCategory
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.RepeatType == "" {
		task.RepeatType = domain.RepeatOnce
	}
	task.IsActive = true

	const query = `
	INSERT INTO tasks (id, user_id, title, scheduled_time, repeat_type, repeat_days, category, priority, reminder_offset, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		nullString(task.UserID),
		task.Title,
		task.ScheduledTime,
		string(task.RepeatType),
		marshalDays(task.RepeatDays),
		task.Category,
		string(task.Priority),
		task.ReminderOffset,
		task.IsActive,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Patch(ctx context.Context, id string, patch repository.TaskPatch) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.ScheduledTime != nil {
		add("scheduled_time", *patch.ScheduledTime)
	}
	if patch.RepeatType != nil {
		add("repeat_type", string(*patch.RepeatType))
	}
	if patch.RepeatDays != nil {
		add("repeat_days", marshalDays(*patch.RepeatDays))
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Priority != nil {
		add("priority", string(*patch.Priority))
	}
	if patch.ReminderOffset != nil {
		add("reminder_offset", *patch.ReminderOffset)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $1`, strings.Join(sets, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		userID     *string
		repeatDays []byte
	)

	if err := row.Scan(
		&task.ID,
		&userID,
		&task.Title,
		&task.ScheduledTime,
		&task.RepeatType,
		&repeatDays,
		&task.Category,
		&task.Priority,
		&task.ReminderOffset,
		&task.IsActive,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	if userID != nil {
		task.UserID = *userID
	}
	if len(repeatDays) > 0 {
		_ = json.Unmarshal(repeatDays, &task.RepeatDays)
	}

	return &task, nil
}
