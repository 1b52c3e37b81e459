package domain

import (
	"fmt"
	"unicode/utf8"
)

// DefaultTitle is stored in place of an empty title.
const DefaultTitle = "Untitled"

// MaxTitleLength is the longest title, in characters, the note service accepts.
const MaxTitleLength = 200

type Note struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type CreateNoteRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content"`
}

// NormalizeTitle maps the empty title to DefaultTitle. Applying it twice
// yields the same result.
func NormalizeTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title
}

// ValidateTitle rejects titles the note service would refuse to store.
func ValidateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: %d characters, at most %d allowed", ErrTitleTooLong, n, MaxTitleLength)
	}
	return nil
}

// Normalized returns a copy of n whose title has been normalized.
func (n Note) Normalized() Note {
	n.Title = NormalizeTitle(n.Title)
	return n
}
