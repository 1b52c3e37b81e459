package repository

import (
	"context"
	"fmt"
	"slices"
	"time"

	"noteapp/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteDocument struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d noteDocument) note() *domain.Note {
	return &domain.Note{ID: d.ID, UserID: d.UserID, Title: d.Title, Content: d.Content}
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func noteDocID(id string) string {
	return fmt.Sprintf("note:%s", id)
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	now := time.Now().UTC()
	doc := noteDocument{
		ID:        note.ID,
		Type:      "note",
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := db.Put(ctx, noteDocID(note.ID), doc); err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	db := r.client.DB(r.dbName)

	var doc noteDocument
	if err := db.Get(ctx, noteDocID(id)).ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to find note %s: %w", id, notFound(err))
	}
	if doc.IsDeleted {
		return nil, fmt.Errorf("failed to find note %s: %w", id, domain.ErrNotFound)
	}

	return doc.note(), nil
}

// ListByUser returns the live notes of userID in creation order.
func (r *noteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"type":       "note",
			"user_id":    userID,
			"is_deleted": false,
		},
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var docs []noteDocument
	for rows.Next() {
		var doc noteDocument
		if err := rows.ScanDoc(&doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	slices.SortStableFunc(docs, func(a, b noteDocument) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	notes := make([]*domain.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, doc.note())
	}
	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(note.ID)

	var existingDoc map[string]interface{}
	if err := db.Get(ctx, docID).ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing note for update: %w", notFound(err))
	}
	if deleted, _ := existingDoc["is_deleted"].(bool); deleted {
		return fmt.Errorf("failed to fetch existing note for update: %w", domain.ErrNotFound)
	}

	existingDoc["title"] = note.Title
	existingDoc["content"] = note.Content
	existingDoc["updated_at"] = time.Now().UTC()

	if _, err := db.Put(ctx, docID, existingDoc); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

// Delete marks the note deleted. Deleting a missing or already deleted note
// returns domain.ErrNotFound.
func (r *noteRepository) Delete(ctx context.Context, id string) error {
	db := r.client.DB(r.dbName)
	docID := noteDocID(id)

	var existingDoc map[string]interface{}
	if err := db.Get(ctx, docID).ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch note for delete: %w", notFound(err))
	}
	if deleted, _ := existingDoc["is_deleted"].(bool); deleted {
		return fmt.Errorf("failed to fetch note for delete: %w", domain.ErrNotFound)
	}

	existingDoc["is_deleted"] = true
	existingDoc["updated_at"] = time.Now().UTC()

	if _, err := db.Put(ctx, docID, existingDoc); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
