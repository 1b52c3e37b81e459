package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"noteapp/internal/domain"
	"noteapp/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type UserService struct {
	userRepo repository.UserRepository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		userRepo: userRepo,
		validate: validator.New(),
		logger:   logger.With("service", "user"),
	}
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if email == "" {
		return nil, &ValidationError{Err: errors.New("email is required")}
	}
	return s.userRepo.FindByEmail(ctx, email)
}

// GetOrCreate returns the user registered under req.Email, creating it first
// when the email is unknown. When a concurrent call creates the same email
// first, the user it stored is returned.
func (s *UserService) GetOrCreate(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Err: err}
	}

	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
		s.logger.Debug("user created concurrently", "email", req.Email)
		return s.userRepo.FindByEmail(ctx, req.Email)
	}

	s.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}
