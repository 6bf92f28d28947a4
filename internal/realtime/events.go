package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// Outbound event names. Each successful mutation emits one or more of these
// to its target rooms.
const (
	EventTaskCreated       = "taskCreated"
	EventTaskUpdated       = "taskUpdated"
	EventTaskEdited        = "taskEdited"
	EventTaskDeleted       = "taskDeleted"
	EventTaskAssigned      = "taskAssigned"
	EventCommentAdded      = "commentAdded"
	EventInviteSent        = "inviteSent"
	EventCollaboratorAdded = "collaboratorAdded"
)

// Broadcast is one (room, event, payload) instruction emitted by the
// coordinator after a successful mutation.
type Broadcast struct {
	Room    string
	Event   string
	Payload any
}

// TaskView is the wire form of a task: the just-persisted state with the
// assignee resolved to a display summary.
type TaskView struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status"`
	BoardID     uuid.UUID         `json:"boardId"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
	Tags        []string          `json:"tags"`
	AssignedTo  *domain.Summary   `json:"assignedTo,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// CommentView is the wire form of a comment with the author resolved.
type CommentView struct {
	ID        uuid.UUID      `json:"id"`
	Content   string         `json:"content"`
	TaskID    uuid.UUID      `json:"taskId"`
	User      domain.Summary `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
}

// BoardView is the wire form of a board.
type BoardView struct {
	ID            uuid.UUID             `json:"id"`
	Title         string                `json:"title"`
	Owner         domain.Summary        `json:"owner"`
	Collaborators []domain.Collaborator `json:"collaborators"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// TaskDeletedView carries the bare id of a deleted task.
type TaskDeletedView struct {
	ID uuid.UUID `json:"id"`
}

// CollaboratorAddedView is broadcast to the board room after an invite.
type CollaboratorAddedView struct {
	BoardID      uuid.UUID           `json:"boardId"`
	Collaborator domain.Collaborator `json:"collaborator"`
}

// InviteView is delivered to the invited user's room.
type InviteView struct {
	BoardID      uuid.UUID           `json:"boardId"`
	BoardTitle   string              `json:"boardTitle"`
	InvitedBy    domain.Summary      `json:"invitedBy"`
	Collaborator domain.Collaborator `json:"collaborator"`
}

func NewTaskView(t *domain.Task, assignee *domain.Summary) *TaskView {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return &TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		BoardID:     t.BoardID,
		DueDate:     t.DueDate,
		Tags:        tags,
		AssignedTo:  assignee,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewCommentView(c *domain.Comment, author domain.Summary) *CommentView {
	return &CommentView{
		ID:        c.ID,
		Content:   c.Content,
		TaskID:    c.TaskID,
		User:      author,
		CreatedAt: c.CreatedAt,
	}
}

func NewBoardView(b *domain.Board, owner domain.Summary) *BoardView {
	collabs := b.Collaborators
	if collabs == nil {
		collabs = []domain.Collaborator{}
	}
	return &BoardView{
		ID:            b.ID,
		Title:         b.Title,
		Owner:         owner,
		Collaborators: collabs,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
