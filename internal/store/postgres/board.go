package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// BoardRepo persists boards with the collaborator list stored as a jsonb
// column. The list is small and always read and written as a whole, which
// keeps membership updates a single-row operation.
type BoardRepo struct {
	pool *pgxpool.Pool
}

func NewBoardRepo(pool *pgxpool.Pool) *BoardRepo {
	return &BoardRepo{pool: pool}
}

func (r *BoardRepo) Create(ctx context.Context, b *domain.Board) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO boards (id, title, owner_id, collaborators, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.Title, b.OwnerID, b.Collaborators, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return wrapErr("boardRepo.Create", err)
	}

	return nil
}

func (r *BoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var b domain.Board

	err := r.pool.QueryRow(ctx,
		`SELECT id, title, owner_id, collaborators, created_at, updated_at
		 FROM boards WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.Title, &b.OwnerID, &b.Collaborators, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, wrapErr("boardRepo.GetByID", err)
	}

	return &b, nil
}

func (r *BoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, owner_id, collaborators, created_at, updated_at
		 FROM boards
		 WHERE owner_id = $1
		    OR EXISTS (
		        SELECT 1 FROM jsonb_array_elements(collaborators) c
		        WHERE c->>'userId' = $1::text
		    )
		 ORDER BY created_at
		 LIMIT 1000`,
		userID,
	)
	if err != nil {
		return nil, wrapErr("boardRepo.ListByUser", err)
	}
	defer rows.Close()

	return scanBoards(rows, "boardRepo.ListByUser")
}

func (r *BoardRepo) Update(ctx context.Context, b *domain.Board) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE boards SET title = $1, collaborators = $2, updated_at = $3
		 WHERE id = $4`,
		b.Title, b.Collaborators, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return wrapErr("boardRepo.Update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Update: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *BoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return wrapErr("boardRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("boardRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}

func scanBoards(rows pgx.Rows, caller string) ([]*domain.Board, error) {
	var boards []*domain.Board
	for rows.Next() {
		var b domain.Board
		if err := rows.Scan(
			&b.ID, &b.Title, &b.OwnerID, &b.Collaborators, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", caller, err)
		}
		boards = append(boards, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", caller, err)
	}

	return boards, nil
}
