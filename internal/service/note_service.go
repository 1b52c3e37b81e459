package service

import (
	"context"

	"noteapp/internal/domain"
	"noteapp/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type NoteService struct {
	repo     repository.NoteRepository
	validate *validator.Validate
}

func NewNoteService(repo repository.NoteRepository) *NoteService {
	return &NoteService{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *NoteService) Create(ctx context.Context, req *domain.CreateNoteRequest) (*domain.Note, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}

	note := &domain.Note{
		ID:      uuid.New().String(),
		UserID:  req.UserID,
		Title:   domain.NormalizeTitle(req.Title),
		Content: req.Content,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *NoteService) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

func (s *NoteService) Update(ctx context.Context, noteID string, req *domain.UpdateNoteRequest) (*domain.Note, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}

	note, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	note.Title = domain.NormalizeTitle(req.Title)
	note.Content = req.Content

	if err := s.repo.Update(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, noteID string) error {
	return s.repo.Delete(ctx, noteID)
}
