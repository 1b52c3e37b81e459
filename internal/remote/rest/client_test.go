package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapp/internal/domain"
	"noteapp/internal/handler"
	"noteapp/internal/repository"
	"noteapp/internal/service"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := repository.NewMemoryStore()
	router := handler.NewRouter(
		service.NewUserService(store.Users(), nil),
		service.NewNoteService(store.Notes()),
		nil,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second, nil)
}

func TestClient_Users(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetUserByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := c.CreateUser(ctx, domain.CreateUserRequest{Email: "ada@example.com", Name: "Ada", AvatarURL: "https://example.com/a.png"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	fetched, err := c.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestClient_NoteLifecycle(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateNote(ctx, domain.CreateNoteRequest{UserID: "u1", Title: "Untitled"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", created.Title)

	updated, err := c.UpdateNote(ctx, created.ID, domain.UpdateNoteRequest{Title: "", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", updated.Title)
	assert.Equal(t, "body", updated.Content)

	notes, err := c.GetNotesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Note{*updated}, notes)

	require.NoError(t, c.DeleteNote(ctx, created.ID))
	assert.ErrorIs(t, c.DeleteNote(ctx, created.ID), domain.ErrNotFound)

	_, err = c.UpdateNote(ctx, created.ID, domain.UpdateNoteRequest{Title: "t"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	notes, err = c.GetNotesByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"error":"Failed to list notes"}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.GetNotesByUser(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "Failed to list notes")
}

func TestClient_NormalizesTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"1","user_id":"u1","title":"","content":"x"}]}`))
	}))
	defer srv.Close()
	c := NewClient(srv.URL, time.Second, nil)

	notes, err := c.GetNotesByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Untitled", notes[0].Title)
}

func TestClient_HonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)
	c := NewClient(srv.URL, time.Second, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.DeleteNote(ctx, "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
