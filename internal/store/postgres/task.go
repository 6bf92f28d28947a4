package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcollab/quickcollab/internal/domain"
)

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{pool: pool}
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tasks (id, title, description, status, board_id, due_date, tags, assigned_to, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Title, t.Description, t.Status, t.BoardID,
		t.DueDate, t.Tags, t.AssignedTo, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return wrapErr("taskRepo.Create", err)
	}

	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var t domain.Task

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, status, board_id, due_date, tags, assigned_to, created_at, updated_at
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.BoardID,
		&t.DueDate, &t.Tags, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, wrapErr("taskRepo.GetByID", err)
	}

	return &t, nil
}

func (r *TaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, description, status, board_id, due_date, tags, assigned_to, created_at, updated_at
		 FROM tasks WHERE board_id = $1
		 ORDER BY created_at
		 LIMIT 1000`,
		boardID,
	)
	if err != nil {
		return nil, wrapErr("taskRepo.ListByBoard", err)
	}
	defer rows.Close()

	return scanTasks(rows, "taskRepo.ListByBoard")
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2, status = $3,
		        due_date = $4, tags = $5, assigned_to = $6, updated_at = $7
		 WHERE id = $8`,
		t.Title, t.Description, t.Status,
		t.DueDate, t.Tags, t.AssignedTo, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return wrapErr("taskRepo.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return wrapErr("taskRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("taskRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanTasks(rows pgx.Rows, caller string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Status, &t.BoardID,
			&t.DueDate, &t.Tags, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return tasks, nil
}
