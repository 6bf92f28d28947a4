package v1

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Boards() domain.BoardRepository
	Tasks() domain.TaskRepository
	Comments() domain.CommentRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Token(userID uuid.UUID) (string, error)
}

// Mutator abstracts the mutation coordinator for handler testing. All writes
// that must reach connected clients go through it; the REST layer never
// touches the repositories directly for mutations. *realtime.Coordinator
// satisfies this interface.
type Mutator interface {
	CreateBoard(ctx context.Context, actor uuid.UUID, title string) (*realtime.BoardView, error)
	CreateTask(ctx context.Context, actor uuid.UUID, in realtime.CreateTaskInput) (*realtime.TaskView, error)
	UpdateTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	EditTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	AssignTask(ctx context.Context, actor, taskID uuid.UUID, assignee *uuid.UUID) (*realtime.TaskView, error)
	DeleteTask(ctx context.Context, actor, taskID uuid.UUID) error
	CreateComment(ctx context.Context, actor uuid.UUID, in realtime.CreateCommentInput) (*realtime.CommentView, error)
	InviteCollaborator(ctx context.Context, actor, boardID uuid.UUID, email string) (*domain.Collaborator, error)
}
