package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// Valid reports whether s is one of the three known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      TaskStatus
	BoardID     uuid.UUID // immutable after creation
	DueDate     *time.Time
	Tags        []string
	AssignedTo  *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}
