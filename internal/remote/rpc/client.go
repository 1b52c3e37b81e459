// Package rpc is the gRPC transport of remote.Client.
package rpc

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"noteapp/internal/domain"
	"noteapp/internal/rpcapi"
)

type Client struct {
	conn   grpc.ClientConnInterface
	closer func() error
	log    *slog.Logger
}

// Dial connects to the note service at addr without transport security.
func Dial(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create rpc client for %s: %w", addr, err)
	}
	c := NewClient(conn, logger)
	c.closer = conn.Close
	return c, nil
}

// NewClient wraps an existing connection. The caller keeps ownership of conn.
func NewClient(conn grpc.ClientConnInterface, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{conn: conn, log: logger.With("adapter", "rpc")}
}

func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	resp, err := rpcapi.Invoke[rpcapi.UserResponse](ctx, c.conn, rpcapi.UserServiceName, "GetUserByEmail",
		&rpcapi.GetUserByEmailRequest{Email: email})
	if err != nil {
		return nil, c.wrap("get user by email", err)
	}
	return &resp.User, nil
}

func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	resp, err := rpcapi.Invoke[rpcapi.UserResponse](ctx, c.conn, rpcapi.UserServiceName, "CreateUser", &req)
	if err != nil {
		return nil, c.wrap("create user", err)
	}
	return &resp.User, nil
}

func (c *Client) GetNotesByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	resp, err := rpcapi.Invoke[rpcapi.ListNotesResponse](ctx, c.conn, rpcapi.NoteServiceName, "ListNotes",
		&rpcapi.ListNotesRequest{UserID: userID})
	if err != nil {
		return nil, c.wrap("list notes", err)
	}
	notes := make([]domain.Note, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		notes = append(notes, n.Normalized())
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, req domain.CreateNoteRequest) (*domain.Note, error) {
	resp, err := rpcapi.Invoke[rpcapi.NoteResponse](ctx, c.conn, rpcapi.NoteServiceName, "CreateNote", &req)
	if err != nil {
		return nil, c.wrap("create note", err)
	}
	note := resp.Note.Normalized()
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, req domain.UpdateNoteRequest) (*domain.Note, error) {
	resp, err := rpcapi.Invoke[rpcapi.NoteResponse](ctx, c.conn, rpcapi.NoteServiceName, "UpdateNote",
		&rpcapi.UpdateNoteRequest{ID: id, Title: req.Title, Content: req.Content})
	if err != nil {
		return nil, c.wrap("update note", err)
	}
	note := resp.Note.Normalized()
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	_, err := rpcapi.Invoke[rpcapi.DeleteNoteResponse](ctx, c.conn, rpcapi.NoteServiceName, "DeleteNote",
		&rpcapi.DeleteNoteRequest{ID: id})
	if err != nil {
		return c.wrap("delete note", err)
	}
	return nil
}

func (c *Client) wrap(op string, err error) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("rpc: %s: %w", op, domain.ErrNotFound)
	}
	c.log.Debug("rpc call failed", "op", op, "error", err)
	return fmt.Errorf("rpc: %s: %w", op, err)
}
