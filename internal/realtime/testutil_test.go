package realtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quickcollab/quickcollab/internal/domain"
	"github.com/quickcollab/quickcollab/internal/realtime"
)

// ---------------------------------------------------------------------------
// In-memory repositories — linearizable-per-document fakes
// ---------------------------------------------------------------------------

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("memUserRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("memUserRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("memUserRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

type memBoardRepo struct {
	mu     sync.Mutex
	boards map[uuid.UUID]*domain.Board
}

func newMemBoardRepo() *memBoardRepo {
	return &memBoardRepo{boards: make(map[uuid.UUID]*domain.Board)}
}

func copyBoard(b *domain.Board) *domain.Board {
	cp := *b
	cp.Collaborators = append([]domain.Collaborator(nil), b.Collaborators...)
	return &cp
}

func (r *memBoardRepo) Create(_ context.Context, b *domain.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boards[b.ID] = copyBoard(b)
	return nil
}

func (r *memBoardRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boards[id]
	if !ok {
		return nil, fmt.Errorf("memBoardRepo.GetByID: %w", domain.ErrNotFound)
	}
	return copyBoard(b), nil
}

func (r *memBoardRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Board, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Board
	for _, b := range r.boards {
		if b.IsMember(userID) {
			out = append(out, copyBoard(b))
		}
	}
	return out, nil
}

func (r *memBoardRepo) Update(_ context.Context, b *domain.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[b.ID]; !ok {
		return fmt.Errorf("memBoardRepo.Update: %w", domain.ErrNotFound)
	}
	r.boards[b.ID] = copyBoard(b)
	return nil
}

func (r *memBoardRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.boards[id]; !ok {
		return fmt.Errorf("memBoardRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.boards, id)
	return nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[uuid.UUID]*domain.Task)}
}

func copyTask(t *domain.Task) *domain.Task {
	cp := *t
	cp.Tags = append([]string(nil), t.Tags...)
	return &cp
}

func (r *memTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *memTaskRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("memTaskRepo.GetByID: %w", domain.ErrNotFound)
	}
	return copyTask(t), nil
}

func (r *memTaskRepo) ListByBoard(_ context.Context, boardID uuid.UUID) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.BoardID == boardID {
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (r *memTaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return fmt.Errorf("memTaskRepo.Update: %w", domain.ErrNotFound)
	}
	r.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *memTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("memTaskRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*domain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{comments: make(map[uuid.UUID]*domain.Comment)}
}

func (r *memCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *memCommentRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("memCommentRepo.GetByID: %w", domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *memCommentRepo) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.TaskID == taskID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// flakyTaskRepo fails the first failures calls of every method with a
// transient store error, then delegates.
type flakyTaskRepo struct {
	domain.TaskRepository
	mu       sync.Mutex
	failures int
}

func (r *flakyTaskRepo) trip(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return fmt.Errorf("flakyTaskRepo.%s: %w", op, domain.ErrUnavailable)
	}
	return nil
}

func (r *flakyTaskRepo) Create(ctx context.Context, t *domain.Task) error {
	if err := r.trip("Create"); err != nil {
		return err
	}
	return r.TaskRepository.Create(ctx, t)
}

func (r *flakyTaskRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if err := r.trip("GetByID"); err != nil {
		return nil, err
	}
	return r.TaskRepository.GetByID(ctx, id)
}

// ---------------------------------------------------------------------------
// Mirror recorder
// ---------------------------------------------------------------------------

type recordingMirror struct {
	mu       sync.Mutex
	channels []string
	payloads [][]byte
	err      error
}

func (m *recordingMirror) Publish(_ context.Context, channel string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.channels = append(m.channels, channel)
	m.payloads = append(m.payloads, append([]byte(nil), payload...))
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

// fixture wires a full core: in-memory repos, registry, dispatcher and
// coordinator, seeded with one board whose owner and one collaborator exist.
type fixture struct {
	users       *memUserRepo
	boards      *memBoardRepo
	tasks       *memTaskRepo
	comments    *memCommentRepo
	registry    *realtime.Registry
	dispatcher  *realtime.Dispatcher
	coordinator *realtime.Coordinator

	owner  *domain.User
	collab *domain.User
	board  *domain.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    newMemUserRepo(),
		boards:   newMemBoardRepo(),
		tasks:    newMemTaskRepo(),
		comments: newMemCommentRepo(),
		registry: realtime.NewRegistry(),
	}
	f.dispatcher = realtime.NewDispatcher(f.registry, nil)
	f.coordinator = realtime.NewCoordinator(f.users, f.boards, f.tasks, f.comments, f.dispatcher)

	ctx := context.Background()
	now := time.Now()

	f.owner = &domain.User{ID: uuid.New(), Email: "owner@example.com", Name: "Owner", CreatedAt: now}
	f.collab = &domain.User{ID: uuid.New(), Email: "collab@example.com", Name: "Collab", CreatedAt: now}
	require.NoError(t, f.users.Create(ctx, f.owner))
	require.NoError(t, f.users.Create(ctx, f.collab))

	f.board = &domain.Board{
		ID:      uuid.New(),
		Title:   "Launch",
		OwnerID: f.owner.ID,
		Collaborators: []domain.Collaborator{
			{UserID: f.owner.ID, Email: f.owner.Email, Role: domain.RoleOwner},
			{UserID: f.collab.ID, Email: f.collab.Email, Role: domain.RoleMember},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.boards.Create(ctx, f.board))

	return f
}

// connect opens a session subscribed to the given rooms.
func (f *fixture) connect(t *testing.T, rooms ...string) *realtime.Session {
	t.Helper()

	sess := realtime.NewSession(f.registry, 16)
	t.Cleanup(sess.Close)
	for _, room := range rooms {
		require.NoError(t, sess.Join(room))
	}
	return sess
}

// seedTask persists a task on the fixture board directly through the repo.
func (f *fixture) seedTask(t *testing.T, assignee *uuid.UUID) *domain.Task {
	t.Helper()

	now := time.Now()
	task := &domain.Task{
		ID:         uuid.New(),
		Title:      "Seeded",
		Status:     domain.TaskStatusToDo,
		BoardID:    f.board.ID,
		Tags:       []string{"seed"},
		AssignedTo: assignee,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

// drain returns every envelope currently queued on the session.
func drain(s *realtime.Session) []realtime.Envelope {
	var out []realtime.Envelope
	for {
		select {
		case env, ok := <-s.Outbound():
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}
