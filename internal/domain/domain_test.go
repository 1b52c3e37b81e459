package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "empty becomes default", title: "", want: DefaultTitle},
		{name: "default stays default", title: DefaultTitle, want: DefaultTitle},
		{name: "regular title untouched", title: "Groceries", want: "Groceries"},
		{name: "whitespace is a title", title: " ", want: " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTitle(tt.title)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeTitle(got))
		})
	}
}

func TestNote_Normalized(t *testing.T) {
	n := Note{ID: "1", UserID: "u1", Title: "", Content: "milk"}

	got := n.Normalized()

	assert.Equal(t, DefaultTitle, got.Title)
	assert.Equal(t, "milk", got.Content)
	assert.Equal(t, "", n.Title, "receiver must not be mutated")
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle(""))
	assert.NoError(t, ValidateTitle(strings.Repeat("a", MaxTitleLength)))
	assert.NoError(t, ValidateTitle(strings.Repeat("é", MaxTitleLength)), "length counts characters, not bytes")
	assert.ErrorIs(t, ValidateTitle(strings.Repeat("a", MaxTitleLength+1)), ErrTitleTooLong)
}

func TestOpError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewOpError(ErrDelete, "7", cause)

	assert.ErrorIs(t, err, ErrDelete)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSave)
	assert.Equal(t, "failed to delete note (note 7): connection refused", err.Error())

	noID := NewOpError(ErrLoad, "", cause)
	assert.Equal(t, "failed to load notes: connection refused", noID.Error())
}

func TestClaim_CreateUserRequest(t *testing.T) {
	c := Claim{Email: "ada@x.com", Name: "Ada", AvatarURL: "https://x.com/a.png"}

	req := c.CreateUserRequest()

	assert.Equal(t, CreateUserRequest{Email: "ada@x.com", Name: "Ada", AvatarURL: "https://x.com/a.png"}, req)
}
