package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quickcollab/quickcollab/internal/domain"
)

type Store struct {
	pool     *pgxpool.Pool
	users    *UserRepo
	boards   *BoardRepo
	tasks    *TaskRepo
	comments *CommentRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:     pool,
		users:    NewUserRepo(pool),
		boards:   NewBoardRepo(pool),
		tasks:    NewTaskRepo(pool),
		comments: NewCommentRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Boards() domain.BoardRepository     { return s.boards }
func (s *Store) Tasks() domain.TaskRepository       { return s.tasks }
func (s *Store) Comments() domain.CommentRepository { return s.comments }

// wrapErr translates driver-level failures into domain sentinels so callers
// can branch on errors.Is without importing pgx. Timeouts and connection
// failures map to ErrUnavailable, which the mutation coordinator retries.
func wrapErr(caller string, err error) error {
	var pgErr *pgconn.PgError

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", caller, domain.ErrNotFound)
	case errors.Is(err, context.DeadlineExceeded), pgconn.Timeout(err):
		return fmt.Errorf("%s: %w", caller, domain.ErrUnavailable)
	case errors.As(err, &pgErr) && pgErr.Code == "23505":
		return fmt.Errorf("%s: %w", caller, domain.ErrConflict)
	}

	return fmt.Errorf("%s: %w", caller, err)
}
