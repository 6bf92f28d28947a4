package v1_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
	"github.com/quickcollab/quickcollab/internal/server/middleware"
)

// ---------------------------------------------------------------------------
// Context helpers — inject the authenticated user into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID uuid.UUID) context.Context {
	return context.WithValue(context.Background(), middleware.ContextKeyUserID, userID)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users    domain.UserRepository
	boards   domain.BoardRepository
	tasks    domain.TaskRepository
	comments domain.CommentRepository
}

func (m *mockDataStore) Users() domain.UserRepository       { return m.users }
func (m *mockDataStore) Boards() domain.BoardRepository     { return m.boards }
func (m *mockDataStore) Tasks() domain.TaskRepository       { return m.tasks }
func (m *mockDataStore) Comments() domain.CommentRepository { return m.comments }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	createFunc     func(ctx context.Context, u *domain.User) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.createFunc(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFunc(ctx, email)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock BoardRepository
// ---------------------------------------------------------------------------

type mockBoardRepo struct {
	createFunc     func(ctx context.Context, b *domain.Board) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Board, error)
	listByUserFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error)
	updateFunc     func(ctx context.Context, b *domain.Board) error
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBoardRepo) Create(ctx context.Context, b *domain.Board) error {
	return m.createFunc(ctx, b)
}

func (m *mockBoardRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockBoardRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockBoardRepo) Update(ctx context.Context, b *domain.Board) error {
	return m.updateFunc(ctx, b)
}

func (m *mockBoardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock TaskRepository
// ---------------------------------------------------------------------------

type mockTaskRepo struct {
	createFunc      func(ctx context.Context, t *domain.Task) error
	getByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	listByBoardFunc func(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error)
	updateFunc      func(ctx context.Context, t *domain.Task) error
	deleteFunc      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return m.createFunc(ctx, t)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockTaskRepo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	return m.listByBoardFunc(ctx, boardID)
}

func (m *mockTaskRepo) Update(ctx context.Context, t *domain.Task) error {
	return m.updateFunc(ctx, t)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock CommentRepository
// ---------------------------------------------------------------------------

type mockCommentRepo struct {
	createFunc     func(ctx context.Context, c *domain.Comment) error
	getByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	listByTaskFunc func(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, c *domain.Comment) error {
	return m.createFunc(ctx, c)
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCommentRepo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	return m.listByTaskFunc(ctx, taskID)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFunc    func(ctx context.Context, email, password string) (*domain.User, string, error)
	tokenFunc    func(userID uuid.UUID) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return m.registerFunc(ctx, email, password, name)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return m.loginFunc(ctx, email, password)
}

func (m *mockAuthService) Token(userID uuid.UUID) (string, error) {
	return m.tokenFunc(userID)
}

// ---------------------------------------------------------------------------
// Mock Mutator
// ---------------------------------------------------------------------------

type mockMutator struct {
	createBoardFunc        func(ctx context.Context, actor uuid.UUID, title string) (*realtime.BoardView, error)
	createTaskFunc         func(ctx context.Context, actor uuid.UUID, in realtime.CreateTaskInput) (*realtime.TaskView, error)
	updateTaskFunc         func(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	editTaskFunc           func(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error)
	assignTaskFunc         func(ctx context.Context, actor, taskID uuid.UUID, assignee *uuid.UUID) (*realtime.TaskView, error)
	deleteTaskFunc         func(ctx context.Context, actor, taskID uuid.UUID) error
	createCommentFunc      func(ctx context.Context, actor uuid.UUID, in realtime.CreateCommentInput) (*realtime.CommentView, error)
	inviteCollaboratorFunc func(ctx context.Context, actor, boardID uuid.UUID, email string) (*domain.Collaborator, error)
}

func (m *mockMutator) CreateBoard(ctx context.Context, actor uuid.UUID, title string) (*realtime.BoardView, error) {
	return m.createBoardFunc(ctx, actor, title)
}

func (m *mockMutator) CreateTask(ctx context.Context, actor uuid.UUID, in realtime.CreateTaskInput) (*realtime.TaskView, error) {
	return m.createTaskFunc(ctx, actor, in)
}

func (m *mockMutator) UpdateTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error) {
	return m.updateTaskFunc(ctx, actor, taskID, patch)
}

func (m *mockMutator) EditTask(ctx context.Context, actor, taskID uuid.UUID, patch realtime.TaskPatch) (*realtime.TaskView, error) {
	return m.editTaskFunc(ctx, actor, taskID, patch)
}

func (m *mockMutator) AssignTask(ctx context.Context, actor, taskID uuid.UUID, assignee *uuid.UUID) (*realtime.TaskView, error) {
	return m.assignTaskFunc(ctx, actor, taskID, assignee)
}

func (m *mockMutator) DeleteTask(ctx context.Context, actor, taskID uuid.UUID) error {
	return m.deleteTaskFunc(ctx, actor, taskID)
}

func (m *mockMutator) CreateComment(ctx context.Context, actor uuid.UUID, in realtime.CreateCommentInput) (*realtime.CommentView, error) {
	return m.createCommentFunc(ctx, actor, in)
}

func (m *mockMutator) InviteCollaborator(ctx context.Context, actor, boardID uuid.UUID, email string) (*domain.Collaborator, error) {
	return m.inviteCollaboratorFunc(ctx, actor, boardID, email)
}
