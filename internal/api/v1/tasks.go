package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/server/middleware"
)

type CreateTaskInput struct {
	Body struct {
		BoardID     uuid.UUID  `json:"boardId" doc:"Board ID"`
		Title       string     `json:"title" minLength:"1" maxLength:"500" doc:"Task title"`
		Description string     `json:"description,omitempty" doc:"Task description"`
		Status      string     `json:"status,omitempty" doc:"Initial status (defaults to To Do)"`
		DueDate     *time.Time `json:"dueDate,omitempty" doc:"Due date"`
		Tags        []string   `json:"tags,omitempty" doc:"Tags"`
		AssignedTo  *uuid.UUID `json:"assignedTo,omitempty" doc:"Assignee user ID"`
	}
}

type CreateTaskOutput struct {
	Body *realtime.TaskView
}

type ListTasksInput struct {
	BoardID uuid.UUID `query:"board_id" required:"true" doc:"Board ID"`
}

type ListTasksOutput struct {
	Body []*realtime.TaskView
}

type GetTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

type GetTaskOutput struct {
	Body *realtime.TaskView
}

// taskPatchBody is shared by the PATCH and PUT surfaces. Absent fields keep
// their previous value. Clearing the assignee or due date goes through the
// assign endpoint.
type taskPatchBody struct {
	Title       *string    `json:"title,omitempty" maxLength:"500" doc:"Task title"`
	Description *string    `json:"description,omitempty" doc:"Task description"`
	Status      *string    `json:"status,omitempty" doc:"Task status"`
	DueDate     *time.Time `json:"dueDate,omitempty" doc:"Due date"`
	Tags        *[]string  `json:"tags,omitempty" doc:"Tags (empty list clears)"`
	AssignedTo  *uuid.UUID `json:"assignedTo,omitempty" doc:"Assignee user ID"`
}

func (b taskPatchBody) patch() realtime.TaskPatch {
	p := realtime.TaskPatch{
		Title:       b.Title,
		Description: b.Description,
		DueDate:     b.DueDate,
		Tags:        b.Tags,
		AssignedTo:  b.AssignedTo,
	}
	if b.Status != nil {
		status := domain.TaskStatus(*b.Status)
		p.Status = &status
	}
	return p
}

type UpdateTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body taskPatchBody
}

type UpdateTaskOutput struct {
	Body *realtime.TaskView
}

type AssignTaskInput struct {
	ID   uuid.UUID `path:"id" doc:"Task ID"`
	Body struct {
		AssignedTo *uuid.UUID `json:"assignedTo" nullable:"true" doc:"Assignee user ID (null unassigns)"`
	}
}

type AssignTaskOutput struct {
	Body *realtime.TaskView
}

type DeleteTaskInput struct {
	ID uuid.UUID `path:"id" doc:"Task ID"`
}

func RegisterTaskRoutes(api huma.API, store DataStore, mut Mutator) {
	huma.Register(api, huma.Operation{
		OperationID: "create-task",
		Method:      http.MethodPost,
		Path:        "/tasks",
		Summary:     "Create a new task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *CreateTaskInput) (*CreateTaskOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.CreateTask(ctx, actor, realtime.CreateTaskInput{
			Title:       input.Body.Title,
			Description: input.Body.Description,
			Status:      domain.TaskStatus(input.Body.Status),
			BoardID:     input.Body.BoardID,
			DueDate:     input.Body.DueDate,
			Tags:        input.Body.Tags,
			AssignedTo:  input.Body.AssignedTo,
		})
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		return &CreateTaskOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks on a board",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *ListTasksInput) (*ListTasksOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		board, err := store.Boards().GetByID(ctx, input.BoardID)
		if err != nil {
			return nil, mapDomainError(err, "board")
		}
		if !board.IsMember(actor) {
			return nil, huma.Error403Forbidden("not a member of this board")
		}

		tasks, err := store.Tasks().ListByBoard(ctx, input.BoardID)
		if err != nil {
			return nil, mapDomainError(err, "tasks")
		}

		views := make([]*realtime.TaskView, 0, len(tasks))
		for _, t := range tasks {
			view, err := taskView(ctx, store, t)
			if err != nil {
				return nil, mapDomainError(err, "task")
			}
			views = append(views, view)
		}

		return &ListTasksOutput{Body: views}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get a task by ID",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *GetTaskInput) (*GetTaskOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		task, err := store.Tasks().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		board, err := store.Boards().GetByID(ctx, task.BoardID)
		if err != nil {
			return nil, mapDomainError(err, "board")
		}
		if !board.IsMember(actor) {
			return nil, huma.Error403Forbidden("not a member of this board")
		}

		view, err := taskView(ctx, store, task)
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		return &GetTaskOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-task",
		Method:      http.MethodPatch,
		Path:        "/tasks/{id}",
		Summary:     "Apply a partial update to a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.UpdateTask(ctx, actor, input.ID, input.Body.patch())
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		return &UpdateTaskOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-task",
		Method:      http.MethodPut,
		Path:        "/tasks/{id}",
		Summary:     "Edit a task from the detail view",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *UpdateTaskInput) (*UpdateTaskOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.EditTask(ctx, actor, input.ID, input.Body.patch())
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		return &UpdateTaskOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/assign",
		Summary:     "Assign or unassign a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *AssignTaskInput) (*AssignTaskOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.AssignTask(ctx, actor, input.ID, input.Body.AssignedTo)
		if err != nil {
			return nil, mapDomainError(err, "task")
		}

		return &AssignTaskOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-task",
		Method:      http.MethodDelete,
		Path:        "/tasks/{id}",
		Summary:     "Delete a task",
		Tags:        []string{"Tasks"},
	}, func(ctx context.Context, input *DeleteTaskInput) (*struct{}, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		if err := mut.DeleteTask(ctx, actor, input.ID); err != nil {
			return nil, mapDomainError(err, "task")
		}

		return nil, nil
	})
}

func taskView(ctx context.Context, store DataStore, t *domain.Task) (*realtime.TaskView, error) {
	var assignee *domain.Summary
	if t.AssignedTo != nil {
		u, err := store.Users().GetByID(ctx, *t.AssignedTo)
		if err != nil {
			return nil, err
		}
		s := u.Summary()
		assignee = &s
	}
	return realtime.NewTaskView(t, assignee), nil
}
