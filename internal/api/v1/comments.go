package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/server/middleware"
)

type CreateCommentInput struct {
	TaskID uuid.UUID `path:"taskId" doc:"Task ID"`
	Body   struct {
		Content string `json:"content" minLength:"1" maxLength:"2000" doc:"Comment text"`
	}
}

type CreateCommentOutput struct {
	Body *realtime.CommentView
}

type ListCommentsInput struct {
	TaskID uuid.UUID `path:"taskId" doc:"Task ID"`
}

type ListCommentsOutput struct {
	Body []*realtime.CommentView
}

func RegisterCommentRoutes(api huma.API, store DataStore, mut Mutator) {
	huma.Register(api, huma.Operation{
		OperationID: "create-comment",
		Method:      http.MethodPost,
		Path:        "/tasks/{taskId}/comments",
		Summary:     "Add a comment to a task",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *CreateCommentInput) (*CreateCommentOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.CreateComment(ctx, actor, realtime.CreateCommentInput{
			Content: input.Body.Content,
			TaskID:  input.TaskID,
		})
		if err != nil {
			return nil, mapDomainError(err, "comment")
		}

		return &CreateCommentOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-comments",
		Method:      http.MethodGet,
		Path:        "/tasks/{taskId}/comments",
		Summary:     "List comments on a task",
		Tags:        []string{"Comments"},
	}, func(ctx context.Context, input *ListCommentsInput) (*ListCommentsOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		task, err := store.Tasks().GetByID(ctx, input.TaskID)
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

		comments, err := store.Comments().ListByTask(ctx, input.TaskID)
		if err != nil {
			return nil, mapDomainError(err, "comments")
		}

		views := make([]*realtime.CommentView, 0, len(comments))
		for _, c := range comments {
			author, err := store.Users().GetByID(ctx, c.UserID)
			if err != nil {
				return nil, mapDomainError(err, "comment")
			}
			views = append(views, realtime.NewCommentView(c, author.Summary()))
		}

		return &ListCommentsOutput{Body: views}, nil
	})
}
