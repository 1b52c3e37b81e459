// Package remotetest provides an in-memory remote.Client for tests. It
// records every call and lets tests inject failures or block calls.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"noteapp/internal/domain"
)

// ErrUnavailable is the default injected transport failure.
var ErrUnavailable = errors.New("remote unavailable")

type Call struct {
	Method string
	ID     string
	Title  string
	Body   string
}

type Fake struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*domain.User
	notes  []domain.Note
	calls  []Call

	// Fail maps a method name to the error it returns.
	Fail map[string]error
	// Gate, when set for a method, blocks the call until the channel is closed.
	Gate map[string]chan struct{}
}

func New() *Fake {
	return &Fake{
		users: make(map[string]*domain.User),
		Fail:  make(map[string]error),
		Gate:  make(map[string]chan struct{}),
	}
}

func (f *Fake) SetFail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.Fail, method)
		return
	}
	f.Fail[method] = err
}

func (f *Fake) SetGate(method string, gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gate[method] = gate
}

func (f *Fake) begin(ctx context.Context, c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate := f.Gate[c.Method]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Fail[c.Method]
}

func (f *Fake) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

// Calls returns the calls made so far, optionally filtered by method.
func (f *Fake) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// SeedUser stores a user as if created earlier.
func (f *Fake) SeedUser(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.Email] = &u
}

// SeedNote stores a note as if created earlier and returns it with its id.
func (f *Fake) SeedNote(userID, title, content string) domain.Note {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.Note{ID: f.newID(), UserID: userID, Title: title, Content: content}
	f.notes = append(f.notes, n)
	return n
}

// Note returns the remote copy of a note.
func (f *Fake) Note(id string) (domain.Note, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Note{}, false
}

func (f *Fake) UserCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *Fake) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := f.begin(ctx, Call{Method: "GetUserByEmail", ID: email}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *Fake) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := f.begin(ctx, Call{Method: "CreateUser", ID: req.Email, Title: req.Name}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[req.Email]; ok {
		cp := *u
		return &cp, nil
	}
	u := &domain.User{ID: "user-" + f.newID(), Email: req.Email, Name: req.Name, AvatarURL: req.AvatarURL}
	f.users[req.Email] = u
	cp := *u
	return &cp, nil
}

func (f *Fake) GetNotesByUser(ctx context.Context, userID string) ([]domain.Note, error) {
	if err := f.begin(ctx, Call{Method: "GetNotesByUser", ID: userID}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Note
	for _, n := range f.notes {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *Fake) CreateNote(ctx context.Context, req domain.CreateNoteRequest) (*domain.Note, error) {
	if err := f.begin(ctx, Call{Method: "CreateNote", ID: req.UserID, Title: req.Title, Body: req.Content}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n := domain.Note{ID: f.newID(), UserID: req.UserID, Title: domain.NormalizeTitle(req.Title), Content: req.Content}
	f.notes = append(f.notes, n)
	return &n, nil
}

func (f *Fake) UpdateNote(ctx context.Context, id string, req domain.UpdateNoteRequest) (*domain.Note, error) {
	if err := f.begin(ctx, Call{Method: "UpdateNote", ID: id, Title: req.Title, Body: req.Content}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Title = domain.NormalizeTitle(req.Title)
			f.notes[i].Content = req.Content
			n := f.notes[i]
			return &n, nil
		}
	}
	return nil, fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
}

func (f *Fake) DeleteNote(ctx context.Context, id string) error {
	if err := f.begin(ctx, Call{Method: "DeleteNote", ID: id}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("note %s: %w", id, domain.ErrNotFound)
}
