// Package remote defines the capability the client core needs from the note
// service. Transports live in the rest and rpc subpackages; both return
// domain.ErrNotFound for missing users and notes and normalize their wire
// shapes into domain types before returning.
package remote

import (
	"context"

	"noteapp/internal/domain"
)

type UserClient interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
}

type NoteClient interface {
	GetNotesByUser(ctx context.Context, userID string) ([]domain.Note, error)
	CreateNote(ctx context.Context, req domain.CreateNoteRequest) (*domain.Note, error)
	UpdateNote(ctx context.Context, id string, req domain.UpdateNoteRequest) (*domain.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

type Client interface {
	UserClient
	NoteClient
}
