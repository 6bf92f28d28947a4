package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type CollaboratorRole string

const (
	RoleOwner  CollaboratorRole = "Owner"
	RoleMember CollaboratorRole = "Member"
)

// Collaborator is one entry in a board's collaborator list. Email is a
// snapshot taken at invite time, not a live reference.
type Collaborator struct {
	UserID uuid.UUID        `json:"userId"`
	Email  string           `json:"email"`
	Role   CollaboratorRole `json:"role"`
}

type Board struct {
	ID            uuid.UUID
	Title         string
	OwnerID       uuid.UUID
	Collaborators []Collaborator
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsMember reports whether userID is the board owner or a listed collaborator.
func (b *Board) IsMember(userID uuid.UUID) bool {
	if b.OwnerID == userID {
		return true
	}
	for _, c := range b.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// HasCollaborator reports whether userID appears in the collaborator list.
func (b *Board) HasCollaborator(userID uuid.UUID) bool {
	for _, c := range b.Collaborators {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// AddCollaborator appends a collaborator, preserving the no-duplicates
// invariant. The board owner cannot be added a second time.
func (b *Board) AddCollaborator(c Collaborator) error {
	if c.UserID == b.OwnerID || b.HasCollaborator(c.UserID) {
		return fmt.Errorf("board: collaborator %s: %w", c.UserID, ErrConflict)
	}
	b.Collaborators = append(b.Collaborators, c)
	return nil
}

type BoardRepository interface {
	Create(ctx context.Context, b *Board) error
	GetByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Board, error)
	Update(ctx context.Context, b *Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}
