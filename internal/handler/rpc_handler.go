package handler

import (
	"context"
	"errors"
	"log/slog"

	"noteapp/internal/domain"
	"noteapp/internal/rpcapi"
	"noteapp/internal/service"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RPCServer serves rpcapi.UserServiceServer and rpcapi.NoteServiceServer on
// top of the same services as the REST handlers.
type RPCServer struct {
	users  *service.UserService
	notes  *service.NoteService
	logger *slog.Logger
}

func NewRPCServer(users *service.UserService, notes *service.NoteService, logger *slog.Logger) *RPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCServer{users: users, notes: notes, logger: logger.With("handler", "rpc")}
}

func (s *RPCServer) GetUserByEmail(ctx context.Context, req *rpcapi.GetUserByEmailRequest) (*rpcapi.UserResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.status(err)
	}
	return &rpcapi.UserResponse{User: *user}, nil
}

func (s *RPCServer) CreateUser(ctx context.Context, req *rpcapi.CreateUserRequest) (*rpcapi.UserResponse, error) {
	user, err := s.users.GetOrCreate(ctx, req)
	if err != nil {
		return nil, s.status(err)
	}
	return &rpcapi.UserResponse{User: *user}, nil
}

func (s *RPCServer) ListNotes(ctx context.Context, req *rpcapi.ListNotesRequest) (*rpcapi.ListNotesResponse, error) {
	notes, err := s.notes.ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, s.status(err)
	}
	out := make([]domain.Note, 0, len(notes))
	for _, n := range notes {
		out = append(out, *n)
	}
	return &rpcapi.ListNotesResponse{Notes: out}, nil
}

func (s *RPCServer) CreateNote(ctx context.Context, req *rpcapi.CreateNoteRequest) (*rpcapi.NoteResponse, error) {
	note, err := s.notes.Create(ctx, req)
	if err != nil {
		return nil, s.status(err)
	}
	return &rpcapi.NoteResponse{Note: *note}, nil
}

func (s *RPCServer) UpdateNote(ctx context.Context, req *rpcapi.UpdateNoteRequest) (*rpcapi.NoteResponse, error) {
	note, err := s.notes.Update(ctx, req.ID, &domain.UpdateNoteRequest{Title: req.Title, Content: req.Content})
	if err != nil {
		return nil, s.status(err)
	}
	return &rpcapi.NoteResponse{Note: *note}, nil
}

func (s *RPCServer) DeleteNote(ctx context.Context, req *rpcapi.DeleteNoteRequest) (*rpcapi.DeleteNoteResponse, error) {
	if err := s.notes.Delete(ctx, req.ID); err != nil {
		return nil, s.status(err)
	}
	return &rpcapi.DeleteNoteResponse{}, nil
}

func (s *RPCServer) status(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error("rpc call failed", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}
