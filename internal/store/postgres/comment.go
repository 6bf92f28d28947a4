package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcollab/quickcollab/internal/domain"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, content, task_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Content, c.TaskID, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return wrapErr("commentRepo.Create", err)
	}

	return nil
}

func (r *CommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var c domain.Comment

	err := r.pool.QueryRow(ctx,
		`SELECT id, content, task_id, user_id, created_at
		 FROM comments WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Content, &c.TaskID, &c.UserID, &c.CreatedAt)
	if err != nil {
		return nil, wrapErr("commentRepo.GetByID", err)
	}

	return &c, nil
}

func (r *CommentRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, content, task_id, user_id, created_at
		 FROM comments WHERE task_id = $1
		 ORDER BY created_at
		 LIMIT 1000`,
		taskID,
	)
	if err != nil {
		return nil, wrapErr("commentRepo.ListByTask", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.TaskID, &c.UserID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("commentRepo.ListByTask: scan: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("commentRepo.ListByTask: rows: %w", err)
	}

	return comments, nil
}
