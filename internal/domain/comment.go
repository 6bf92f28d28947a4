package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Comment is immutable once created; there is no update or delete operation.
type Comment struct {
	ID        uuid.UUID
	Content   string
	TaskID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

type CommentRepository interface {
	Create(ctx context.Context, c *Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*Comment, error)
}
