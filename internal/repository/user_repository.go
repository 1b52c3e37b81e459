package repository

import (
	"context"
	"fmt"
	"net/http"

	"noteapp/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userDocument struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"profile_pic"`
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

// Create stores user under a document id derived from its email, so CouchDB
// itself rejects a second user for the same email with a conflict.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	docID := userDocID(user.Email)
	doc := userDocument{
		ID:        user.ID,
		Type:      "user",
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
	if _, err := db.Put(ctx, docID, doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return fmt.Errorf("user %s: %w", user.Email, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func userDocID(email string) string {
	return "user:" + email
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"type":  "user",
			"email": email,
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("user %s: %w", email, domain.ErrNotFound)
	}

	var doc userDocument
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &domain.User{ID: doc.ID, Email: doc.Email, Name: doc.Name, AvatarURL: doc.AvatarURL}, nil
}

// notFound maps CouchDB's 404 to domain.ErrNotFound.
func notFound(err error) error {
	if kivik.HTTPStatus(err) == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return err
}
