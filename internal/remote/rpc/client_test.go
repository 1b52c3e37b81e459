package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"noteapp/internal/domain"
	"noteapp/internal/handler"
	"noteapp/internal/repository"
	"noteapp/internal/rpcapi"
	"noteapp/internal/service"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := repository.NewMemoryStore()
	impl := handler.NewRPCServer(
		service.NewUserService(store.Users(), nil),
		service.NewNoteService(store.Notes()),
		nil,
	)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpcapi.RegisterUserServiceServer(srv, impl)
	rpcapi.RegisterNoteServiceServer(srv, impl)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	c, err := Dial("passthrough:///bufnet", nil,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_Users(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := c.CreateUser(ctx, domain.CreateUserRequest{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	again, err := c.CreateUser(ctx, domain.CreateUserRequest{Email: "ada@example.com", Name: "Other"})
	require.NoError(t, err)
	assert.Equal(t, created, again)

	fetched, err := c.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestClient_InvalidUser(t *testing.T) {
	c := newTestClient(t)

	_, err := c.CreateUser(context.Background(), domain.CreateUserRequest{Email: "nope"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestClient_NoteLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	first, err := c.CreateNote(ctx, domain.CreateNoteRequest{UserID: "u1", Title: "Untitled"})
	require.NoError(t, err)
	second, err := c.CreateNote(ctx, domain.CreateNoteRequest{UserID: "u1", Title: "second"})
	require.NoError(t, err)

	updated, err := c.UpdateNote(ctx, first.ID, domain.UpdateNoteRequest{Title: "first", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, domain.Note{ID: first.ID, UserID: "u1", Title: "first", Content: "body"}, *updated)

	notes, err := c.GetNotesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Note{*updated, *second}, notes)

	require.NoError(t, c.DeleteNote(ctx, first.ID))
	assert.ErrorIs(t, c.DeleteNote(ctx, first.ID), domain.ErrNotFound)

	notes, err = c.GetNotesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Note{*second}, notes)
}
