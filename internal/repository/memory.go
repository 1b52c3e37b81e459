package repository

import (
	"context"
	"fmt"
	"sync"

	"noteapp/internal/domain"
)

// MemoryStore keeps users and notes in process memory. It backs the server
// when DB_DRIVER=memory and the handler tests.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	notes   map[string]domain.Note
	order   []string
	deleted map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]domain.User),
		notes:   make(map[string]domain.Note),
		deleted: make(map[string]bool),
	}
}

func (m *MemoryStore) Users() UserRepository { return memoryUsers{m} }
func (m *MemoryStore) Notes() NoteRepository { return memoryNotes{m} }

type memoryUsers struct{ *MemoryStore }

func (m memoryUsers) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return fmt.Errorf("user %s: %w", user.Email, domain.ErrAlreadyExists)
	}
	m.users[user.Email] = *user
	return nil
}

func (m memoryUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}
	return &u, nil
}

type memoryNotes struct{ *MemoryStore }

func (m memoryNotes) Create(ctx context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ID] = *note
	m.order = append(m.order, note.ID)
	return nil
}

func (m memoryNotes) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	if !ok || m.deleted[id] {
		return nil, fmt.Errorf("failed to find note %s: %w", id, domain.ErrNotFound)
	}
	return &n, nil
}

func (m memoryNotes) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var notes []*domain.Note
	for _, id := range m.order {
		n := m.notes[id]
		if n.UserID == userID && !m.deleted[id] {
			notes = append(notes, &n)
		}
	}
	return notes, nil
}

func (m memoryNotes) Update(ctx context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[note.ID]; !ok || m.deleted[note.ID] {
		return fmt.Errorf("failed to fetch existing note for update: %w", domain.ErrNotFound)
	}
	m.notes[note.ID] = *note
	return nil
}

func (m memoryNotes) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok || m.deleted[id] {
		return fmt.Errorf("failed to fetch note for delete: %w", domain.ErrNotFound)
	}
	m.deleted[id] = true
	return nil
}
