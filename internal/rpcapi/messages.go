package rpcapi

import "noteapp/internal/domain"

type GetUserByEmailRequest struct {
	Email string `json:"email"`
}

type CreateUserRequest = domain.CreateUserRequest

type UserResponse struct {
	User domain.User `json:"user"`
}

type ListNotesRequest struct {
	UserID string `json:"user_id"`
}

type ListNotesResponse struct {
	Notes []domain.Note `json:"notes"`
}

type CreateNoteRequest = domain.CreateNoteRequest

type UpdateNoteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type NoteResponse struct {
	Note domain.Note `json:"note"`
}

type DeleteNoteRequest struct {
	ID string `json:"id"`
}

type DeleteNoteResponse struct{}
