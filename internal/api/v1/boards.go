package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/server/middleware"
)

type CreateBoardInput struct {
	Body struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Board title"`
	}
}

type CreateBoardOutput struct {
	Body *realtime.BoardView
}

type ListBoardsOutput struct {
	Body []*realtime.BoardView
}

type GetBoardInput struct {
	ID uuid.UUID `path:"id" doc:"Board ID"`
}

type GetBoardOutput struct {
	Body *realtime.BoardView
}

type InviteCollaboratorInput struct {
	ID   uuid.UUID `path:"id" doc:"Board ID"`
	Body struct {
		Email string `json:"email" minLength:"3" maxLength:"255" doc:"Email of the user to invite"`
	}
}

type InviteCollaboratorOutput struct {
	Body *domain.Collaborator
}

func RegisterBoardRoutes(api huma.API, store DataStore, mut Mutator) {
	huma.Register(api, huma.Operation{
		OperationID: "create-board",
		Method:      http.MethodPost,
		Path:        "/boards",
		Summary:     "Create a new board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *CreateBoardInput) (*CreateBoardOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		view, err := mut.CreateBoard(ctx, actor, input.Body.Title)
		if err != nil {
			return nil, mapDomainError(err, "board")
		}

		return &CreateBoardOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/boards",
		Summary:     "List boards the user owns or collaborates on",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, _ *struct{}) (*ListBoardsOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		boards, err := store.Boards().ListByUser(ctx, actor)
		if err != nil {
			return nil, mapDomainError(err, "boards")
		}

		views := make([]*realtime.BoardView, 0, len(boards))
		for _, b := range boards {
			view, err := boardView(ctx, store, b)
			if err != nil {
				return nil, mapDomainError(err, "board")
			}
			views = append(views, view)
		}

		return &ListBoardsOutput{Body: views}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/boards/{id}",
		Summary:     "Get a board by ID",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *GetBoardInput) (*GetBoardOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		board, err := store.Boards().GetByID(ctx, input.ID)
		if err != nil {
			return nil, mapDomainError(err, "board")
		}
		if !board.IsMember(actor) {
			return nil, huma.Error403Forbidden("not a member of this board")
		}

		view, err := boardView(ctx, store, board)
		if err != nil {
			return nil, mapDomainError(err, "board")
		}

		return &GetBoardOutput{Body: view}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "invite-collaborator",
		Method:      http.MethodPost,
		Path:        "/boards/{id}/invite",
		Summary:     "Invite a registered user to the board",
		Tags:        []string{"Boards"},
	}, func(ctx context.Context, input *InviteCollaboratorInput) (*InviteCollaboratorOutput, error) {
		actor, ok := middleware.UserIDFromContext(ctx)
		if !ok {
			return nil, huma.Error401Unauthorized("authentication required")
		}

		collab, err := mut.InviteCollaborator(ctx, actor, input.ID, input.Body.Email)
		if err != nil {
			return nil, mapDomainError(err, "collaborator")
		}

		return &InviteCollaboratorOutput{Body: collab}, nil
	})
}

func boardView(ctx context.Context, store DataStore, b *domain.Board) (*realtime.BoardView, error) {
	owner, err := store.Users().GetByID(ctx, b.OwnerID)
	if err != nil {
		return nil, err
	}
	return realtime.NewBoardView(b, owner.Summary()), nil
}
