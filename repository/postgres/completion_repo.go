package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dailydo/backend/domain"
	"github.com/dailydo/backend/repository"
)

type completionRepository struct {
	pool *pgxpool.Pool
}

// NewCompletionRepository returns a Postgres-backed CompletionRepository.
func NewCompletionRepository(pool *pgxpool.Pool) repository.CompletionRepository {
	return &completionRepository{pool: pool}
}

func (r *completionRepository) ListForDate(ctx context.Context, userID, date string) ([]domain.TaskCompletion, error) {
	const query = `
	SELECT c.id, c.task_id, c.completed_at, c.scheduled_for::text, c.completed_on_time, COALESCE(c.notes, '')
	FROM task_completions c
	JOIN tasks t ON t.id = c.task_id
	WHERE c.scheduled_for = $1::date
	  AND ($2 = '' OR t.user_id::text = $2)
	`
	rows, err := r.pool.Query(ctx, query, date, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []domain.TaskCompletion
	for rows.Next() {
		var c domain.TaskCompletion
		if err := rows.Scan(&c.ID, &c.TaskID, &c.CompletedAt, &c.ScheduledFor, &c.CompletedOnTime, &c.Notes); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (r *completionRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]repository.CompletionRecord, error) {
	const query = `
	SELECT c.id, c.task_id, c.completed_at, c.scheduled_for::text, c.completed_on_time, COALESCE(c.notes, ''), t.title
	FROM task_completions c
	JOIN tasks t ON t.id = c.task_id
	WHERE ($1 = '' OR t.user_id::text = $1)
	  AND ($2::timestamptz IS NULL OR c.completed_at >= $2)
	ORDER BY c.completed_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, nullTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []repository.CompletionRecord
	for rows.Next() {
		var rec repository.CompletionRecord
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.CompletedAt, &rec.ScheduledFor, &rec.CompletedOnTime, &rec.Notes, &rec.TaskTitle); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *completionRepository) Create(ctx context.Context, completion *domain.TaskCompletion) (*domain.TaskCompletion, error) {
	if completion == nil || completion.TaskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if completion.ID == "" {
		completion.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO task_completions (id, task_id, scheduled_for, completed_on_time, notes)
	VALUES ($1, $2, $3::date, $4, NULLIF($5, ''))
	RETURNING completed_at
	`

	if err := r.pool.QueryRow(ctx, query,
		completion.ID,
		completion.TaskID,
		completion.ScheduledFor,
		completion.CompletedOnTime,
		completion.Notes,
	).Scan(&completion.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return completion, nil
}

func (r *completionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM task_completions WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompletionNotFound
	}
	return nil
}
