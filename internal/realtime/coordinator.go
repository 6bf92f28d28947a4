package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// Transient store failures are retried a bounded number of times before the
// mutation is surfaced as failed. Only idempotent reads and single-document
// writes go through the retry path, never a sequence of dependent writes.
const (
	storeAttempts   = 3
	storeRetryDelay = 50 * time.Millisecond
)

// Coordinator is the mutation state machine: it validates an intent, applies
// it through the repository gateway, resolves reference fields to display
// summaries, and hands the resulting broadcast instructions to the
// dispatcher before returning. A failed mutation emits nothing.
type Coordinator struct {
	users      domain.UserRepository
	boards     domain.BoardRepository
	tasks      domain.TaskRepository
	comments   domain.CommentRepository
	dispatcher *Dispatcher
	taskLocks  *keyedMutex
	boardLocks *keyedMutex
}

func NewCoordinator(users domain.UserRepository, boards domain.BoardRepository, tasks domain.TaskRepository, comments domain.CommentRepository, dispatcher *Dispatcher) *Coordinator {
	return &Coordinator{
		users:      users,
		boards:     boards,
		tasks:      tasks,
		comments:   comments,
		dispatcher: dispatcher,
		taskLocks:  newKeyedMutex(),
		boardLocks: newKeyedMutex(),
	}
}

// CreateTaskInput is the validated intent to create a task.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	BoardID     uuid.UUID
	DueDate     *time.Time
	Tags        []string
	AssignedTo  *uuid.UUID
}

// TaskPatch holds partial-update fields. A nil field keeps the previous
// value; a non-nil field overwrites it even when the supplied value is empty,
// so an explicit empty tag list clears the tags. Clearing the nullable
// AssignedTo and DueDate fields goes through AssignTask and is not expressible
// here.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	DueDate     *time.Time
	Tags        *[]string
	AssignedTo  *uuid.UUID
}

// CreateCommentInput is the validated intent to add a comment.
type CreateCommentInput struct {
	Content string
	TaskID  uuid.UUID
}

// CreateBoard creates a board owned by the actor. The owner becomes the first
// collaborator with the Owner role. No rooms exist for a brand-new board, so
// nothing is broadcast.
func (c *Coordinator) CreateBoard(ctx context.Context, actor uuid.UUID, title string) (*BoardView, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.Invalidf("title", "must not be empty")
	}

	owner, err := c.getUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("coordinator.CreateBoard: %w", err)
	}

	now := time.Now()
	board := &domain.Board{
		ID:      uuid.New(),
		Title:   title,
		OwnerID: owner.ID,
		Collaborators: []domain.Collaborator{
			{UserID: owner.ID, Email: owner.Email, Role: domain.RoleOwner},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.retry(ctx, func() error { return c.boards.Create(ctx, board) }); err != nil {
		return nil, fmt.Errorf("coordinator.CreateBoard: %w", err)
	}

	return NewBoardView(board, owner.Summary()), nil
}

// CreateTask validates and persists a new task, then broadcasts taskCreated
// to the board room and, when the task is assigned, taskAssigned to the
// assignee's user room.
func (c *Coordinator) CreateTask(ctx context.Context, actor uuid.UUID, in CreateTaskInput) (*TaskView, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.Invalidf("title", "must not be empty")
	}
	if in.BoardID == uuid.Nil {
		return nil, domain.Invalidf("boardId", "must be set")
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusToDo
	}
	if !status.Valid() {
		return nil, domain.Invalidf("status", "unknown status %q", string(in.Status))
	}

	board, err := c.getBoard(ctx, in.BoardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Invalidf("boardId", "board %s not found", in.BoardID)
		}
		return nil, fmt.Errorf("coordinator.CreateTask: %w", err)
	}
	if !board.IsMember(actor) {
		return nil, fmt.Errorf("coordinator.CreateTask: user %s is not a member of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}
	if in.AssignedTo != nil && !board.IsMember(*in.AssignedTo) {
		return nil, domain.Invalidf("assignedTo", "user %s is not a collaborator of board %s", *in.AssignedTo, board.ID)
	}

	now := time.Now()
	task := &domain.Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		BoardID:     in.BoardID,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
		AssignedTo:  in.AssignedTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.retry(ctx, func() error { return c.tasks.Create(ctx, task) }); err != nil {
		return nil, fmt.Errorf("coordinator.CreateTask: %w", err)
	}

	view, err := c.taskView(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("coordinator.CreateTask: %w", err)
	}

	broadcasts := []Broadcast{{Room: BoardRoom(task.BoardID), Event: EventTaskCreated, Payload: view}}
	if task.AssignedTo != nil {
		broadcasts = append(broadcasts, Broadcast{Room: UserRoom(*task.AssignedTo), Event: EventTaskAssigned, Payload: view})
	}
	c.dispatcher.Dispatch(ctx, broadcasts)

	return view, nil
}

// UpdateTask applies a partial update and broadcasts taskUpdated.
func (c *Coordinator) UpdateTask(ctx context.Context, actor uuid.UUID, taskID uuid.UUID, patch TaskPatch) (*TaskView, error) {
	return c.patchTask(ctx, actor, taskID, patch, EventTaskUpdated)
}

// EditTask applies a partial update and broadcasts taskEdited. It shares the
// exact validation and persistence path with UpdateTask; only the emitted
// event name differs, matching the two client-side editing surfaces.
func (c *Coordinator) EditTask(ctx context.Context, actor uuid.UUID, taskID uuid.UUID, patch TaskPatch) (*TaskView, error) {
	return c.patchTask(ctx, actor, taskID, patch, EventTaskEdited)
}

func (c *Coordinator) patchTask(ctx context.Context, actor uuid.UUID, taskID uuid.UUID, patch TaskPatch, event string) (*TaskView, error) {
	unlock := c.taskLocks.Lock(taskID)
	defer unlock()

	task, err := c.getTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.patchTask: %w", err)
	}

	board, err := c.getBoard(ctx, task.BoardID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.patchTask: board: %w", err)
	}
	if !board.IsMember(actor) {
		return nil, fmt.Errorf("coordinator.patchTask: user %s is not a member of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}

	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, domain.Invalidf("title", "must not be empty")
		}
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, domain.Invalidf("status", "unknown status %q", string(*patch.Status))
		}
		task.Status = *patch.Status
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Tags != nil {
		task.Tags = *patch.Tags
	}
	if patch.AssignedTo != nil {
		if !board.IsMember(*patch.AssignedTo) {
			return nil, domain.Invalidf("assignedTo", "user %s is not a collaborator of board %s", *patch.AssignedTo, board.ID)
		}
		task.AssignedTo = patch.AssignedTo
	}
	task.UpdatedAt = time.Now()

	if err := c.retry(ctx, func() error { return c.tasks.Update(ctx, task) }); err != nil {
		return nil, fmt.Errorf("coordinator.patchTask: %w", err)
	}

	view, err := c.taskView(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("coordinator.patchTask: %w", err)
	}

	broadcasts := []Broadcast{{Room: BoardRoom(task.BoardID), Event: event, Payload: view}}
	if task.AssignedTo != nil {
		broadcasts = append(broadcasts, Broadcast{Room: UserRoom(*task.AssignedTo), Event: EventTaskAssigned, Payload: view})
	}
	c.dispatcher.Dispatch(ctx, broadcasts)

	return view, nil
}

// AssignTask sets or clears a task's assignee. A non-nil assignee must be the
// board owner or a listed collaborator. Broadcasts taskAssigned to the board
// room, and to the assignee's user room when set.
func (c *Coordinator) AssignTask(ctx context.Context, actor uuid.UUID, taskID uuid.UUID, assignee *uuid.UUID) (*TaskView, error) {
	unlock := c.taskLocks.Lock(taskID)
	defer unlock()

	task, err := c.getTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.AssignTask: %w", err)
	}

	board, err := c.getBoard(ctx, task.BoardID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.AssignTask: board: %w", err)
	}
	if !board.IsMember(actor) {
		return nil, fmt.Errorf("coordinator.AssignTask: user %s is not a member of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}
	if assignee != nil && !board.IsMember(*assignee) {
		return nil, domain.Invalidf("assignedTo", "user %s is not a collaborator of board %s", *assignee, board.ID)
	}

	task.AssignedTo = assignee
	task.UpdatedAt = time.Now()

	if err := c.retry(ctx, func() error { return c.tasks.Update(ctx, task) }); err != nil {
		return nil, fmt.Errorf("coordinator.AssignTask: %w", err)
	}

	view, err := c.taskView(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("coordinator.AssignTask: %w", err)
	}

	broadcasts := []Broadcast{{Room: BoardRoom(task.BoardID), Event: EventTaskAssigned, Payload: view}}
	if assignee != nil {
		broadcasts = append(broadcasts, Broadcast{Room: UserRoom(*assignee), Event: EventTaskAssigned, Payload: view})
	}
	c.dispatcher.Dispatch(ctx, broadcasts)

	return view, nil
}

// DeleteTask removes a task and broadcasts taskDeleted with the bare id.
// Deleting an already-deleted task reports ErrNotFound, never a silent
// success.
func (c *Coordinator) DeleteTask(ctx context.Context, actor uuid.UUID, taskID uuid.UUID) error {
	unlock := c.taskLocks.Lock(taskID)
	defer unlock()

	task, err := c.getTask(ctx, taskID)
	if err != nil {
		return fmt.Errorf("coordinator.DeleteTask: %w", err)
	}

	board, err := c.getBoard(ctx, task.BoardID)
	if err != nil {
		return fmt.Errorf("coordinator.DeleteTask: board: %w", err)
	}
	if !board.IsMember(actor) {
		return fmt.Errorf("coordinator.DeleteTask: user %s is not a member of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}

	if err := c.retry(ctx, func() error { return c.tasks.Delete(ctx, taskID) }); err != nil {
		return fmt.Errorf("coordinator.DeleteTask: %w", err)
	}

	c.dispatcher.Broadcast(ctx, BoardRoom(task.BoardID), EventTaskDeleted, &TaskDeletedView{ID: taskID})

	return nil
}

// CreateComment validates and persists a comment, then broadcasts
// commentAdded to the task's room with the author resolved.
func (c *Coordinator) CreateComment(ctx context.Context, actor uuid.UUID, in CreateCommentInput) (*CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, domain.Invalidf("content", "must not be empty")
	}

	task, err := c.getTask(ctx, in.TaskID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.CreateComment: %w", err)
	}

	board, err := c.getBoard(ctx, task.BoardID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.CreateComment: board: %w", err)
	}
	if !board.IsMember(actor) {
		return nil, fmt.Errorf("coordinator.CreateComment: user %s is not a member of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}

	author, err := c.getUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("coordinator.CreateComment: author: %w", err)
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		Content:   content,
		TaskID:    task.ID,
		UserID:    author.ID,
		CreatedAt: time.Now(),
	}

	if err := c.retry(ctx, func() error { return c.comments.Create(ctx, comment) }); err != nil {
		return nil, fmt.Errorf("coordinator.CreateComment: %w", err)
	}

	view := NewCommentView(comment, author.Summary())
	c.dispatcher.Broadcast(ctx, TaskRoom(task.ID), EventCommentAdded, view)

	return view, nil
}

// InviteCollaborator adds the user registered under email to the board's
// collaborator list. Only the board owner may invite. Broadcasts inviteSent
// to the invited user's room and collaboratorAdded to the board room.
func (c *Coordinator) InviteCollaborator(ctx context.Context, actor uuid.UUID, boardID uuid.UUID, email string) (*domain.Collaborator, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.Invalidf("email", "must not be empty")
	}

	unlock := c.boardLocks.Lock(boardID)
	defer unlock()

	board, err := c.getBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: %w", err)
	}
	if board.OwnerID != actor {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: user %s is not the owner of board %s: %w", actor, board.ID, domain.ErrForbidden)
	}

	invitee, err := c.retryUser(ctx, func() (*domain.User, error) { return c.users.GetByEmail(ctx, email) })
	if err != nil {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: invitee: %w", err)
	}

	collab := domain.Collaborator{UserID: invitee.ID, Email: invitee.Email, Role: domain.RoleMember}
	if err := board.AddCollaborator(collab); err != nil {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: %w", err)
	}
	board.UpdatedAt = time.Now()

	if err := c.retry(ctx, func() error { return c.boards.Update(ctx, board) }); err != nil {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: %w", err)
	}

	inviter, err := c.getUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("coordinator.InviteCollaborator: inviter: %w", err)
	}

	c.dispatcher.Dispatch(ctx, []Broadcast{
		{
			Room:  UserRoom(invitee.ID),
			Event: EventInviteSent,
			Payload: &InviteView{
				BoardID:      board.ID,
				BoardTitle:   board.Title,
				InvitedBy:    inviter.Summary(),
				Collaborator: collab,
			},
		},
		{
			Room:    BoardRoom(board.ID),
			Event:   EventCollaboratorAdded,
			Payload: &CollaboratorAddedView{BoardID: board.ID, Collaborator: collab},
		},
	})

	return &collab, nil
}

// taskView resolves the task's assignee to a display summary. The view always
// reflects the just-persisted state, never a stale copy.
func (c *Coordinator) taskView(ctx context.Context, task *domain.Task) (*TaskView, error) {
	var assignee *domain.Summary
	if task.AssignedTo != nil {
		u, err := c.getUser(ctx, *task.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("resolve assignee: %w", err)
		}
		s := u.Summary()
		assignee = &s
	}
	return NewTaskView(task, assignee), nil
}

func (c *Coordinator) getUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return c.retryUser(ctx, func() (*domain.User, error) { return c.users.GetByID(ctx, id) })
}

func (c *Coordinator) getBoard(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	var board *domain.Board
	err := c.retry(ctx, func() error {
		var err error
		board, err = c.boards.GetByID(ctx, id)
		return err
	})
	return board, err
}

func (c *Coordinator) getTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task *domain.Task
	err := c.retry(ctx, func() error {
		var err error
		task, err = c.tasks.GetByID(ctx, id)
		return err
	})
	return task, err
}

func (c *Coordinator) retryUser(ctx context.Context, fn func() (*domain.User, error)) (*domain.User, error) {
	var user *domain.User
	err := c.retry(ctx, func() error {
		var err error
		user, err = fn()
		return err
	})
	return user, err
}

// retry runs fn, retrying up to storeAttempts times with a brief pause when
// the store reports a transient failure. Any other error, a cancelled
// context, or exhausted attempts surfaces immediately.
func (c *Coordinator) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < storeAttempts; attempt++ {
		if err = fn(); err == nil || !errors.Is(err, domain.ErrUnavailable) {
			return err
		}
		if attempt == storeAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry: %w", ctx.Err())
		case <-time.After(storeRetryDelay):
		}
	}
	return err
}
