// Package rest is the HTTP transport of remote.Client.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"noteapp/internal/domain"
	"noteapp/pkg/response"
)

const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient returns a client of the note service rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "rest"),
	}
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodPost, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetNotesByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	var notes []domain.Note
	if err := c.do(ctx, http.MethodGet, "/notes/user/"+url.PathEscape(userID), nil, &notes); err != nil {
		return nil, err
	}
	for i := range notes {
		notes[i] = notes[i].Normalized()
	}
	return notes, nil
}

func (c *Client) CreateNote(ctx context.Context, req domain.CreateNoteRequest) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPost, "/notes", req, &note); err != nil {
		return nil, err
	}
	note = note.Normalized()
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id string, req domain.UpdateNoteRequest) (*domain.Note, error) {
	var note domain.Note
	if err := c.do(ctx, http.MethodPut, "/notes/"+url.PathEscape(id), req, &note); err != nil {
		return nil, err
	}
	note = note.Normalized()
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("rest: encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("rest: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.DebugContext(ctx, "rest request", slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("rest: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("rest: %s %s: %w", method, path, domain.ErrNotFound)
	}

	if err := response.Decode(resp.Body, out); err != nil {
		return fmt.Errorf("rest: %s %s: status %d: %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("rest: %s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return nil
}
