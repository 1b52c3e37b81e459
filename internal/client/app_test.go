package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapp/internal/domain"
	"noteapp/internal/remote/remotetest"
	"noteapp/internal/storage"
	"noteapp/pkg/jwt"
)

const testInterval = 20 * time.Millisecond

func newTestApp(t *testing.T, fake *remotetest.Fake, opts Options) (*App, *storage.KeyStore) {
	t.Helper()
	ks, err := storage.Open(storage.InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { ks.Close() })

	if opts.DebounceInterval == 0 {
		opts.DebounceInterval = testInterval
	}
	app := New(fake, ks, nil, opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		app.Close(ctx)
	})
	return app, ks
}

func TestApp_LoginLoadsNotes(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com", Name: "A"})
	first := fake.SeedNote("u1", "first", "")
	fake.SeedNote("u1", "second", "")
	fake.SeedNote("u2", "foreign", "")
	app, _ := newTestApp(t, fake, Options{})

	user, err := app.Login(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	assert.Len(t, app.Notes(), 2)
	selected, ok := app.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, selected.ID)
}

func TestApp_AddEditScenario(t *testing.T) {
	fake := remotetest.New()
	app, _ := newTestApp(t, fake, Options{})

	user, err := app.Login(context.Background(), domain.Claim{Email: "new@x.com", Name: "New"})
	require.NoError(t, err)
	assert.Empty(t, app.Notes())

	note, err := app.AddNote(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Note{ID: note.ID, UserID: user.ID, Title: "Untitled"}, note)

	note.Content = "hello"
	require.NoError(t, app.SaveNote(note))

	selected, ok := app.Selected()
	require.True(t, ok)
	assert.Equal(t, "hello", selected.Content)

	require.Eventually(t, func() bool {
		remote, ok := fake.Note(note.ID)
		return ok && remote.Content == "hello"
	}, time.Second, 5*time.Millisecond)
	assert.Len(t, fake.Calls("UpdateNote"), 1)
}

func TestApp_LogoutClearsEverything(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com"})
	fake.SeedNote("u1", "n", "")
	app, ks := newTestApp(t, fake, Options{})

	_, err := app.Login(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)
	require.Len(t, app.Notes(), 1)

	app.Logout()

	_, ok := app.User()
	assert.False(t, ok)
	assert.Empty(t, app.Notes())
	_, ok = app.Selected()
	assert.False(t, ok)
	_, err = ks.Get("session/email")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	_, err = app.AddNote(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}

func TestApp_LogoutBeforeLoadKeepsCollectionEmpty(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com"})
	fake.SeedNote("u1", "n", "")
	app, _ := newTestApp(t, fake, Options{})

	// Same steps as Login, with a logout between resolution and load.
	user, err := app.session.ResolveFromClaim(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)
	app.Logout()

	err = app.load(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrSuperseded)
	assert.Empty(t, fake.Calls("GetNotesByUser"))
	assert.Empty(t, app.Notes())

	_, err = app.AddNote(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
	assert.ErrorIs(t, app.SaveNote(domain.Note{ID: "x"}), domain.ErrNoActiveSession)
}

func TestApp_LoadForReplacedUserIsRefused(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com"})
	fake.SeedUser(domain.User{ID: "u2", Email: "b@x.com"})
	fake.SeedNote("u2", "theirs", "")
	app, _ := newTestApp(t, fake, Options{})

	first, err := app.session.ResolveFromClaim(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)
	_, err = app.Login(context.Background(), domain.Claim{Email: "b@x.com"})
	require.NoError(t, err)

	assert.ErrorIs(t, app.load(context.Background(), first), domain.ErrSuperseded)
	require.Len(t, app.Notes(), 1)
	assert.Equal(t, "u2", app.Notes()[0].UserID)
}

func TestApp_SaveRejectsOverlongTitle(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com"})
	n := fake.SeedNote("u1", "short", "")
	app, _ := newTestApp(t, fake, Options{})
	_, err := app.Login(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)

	err = app.SaveNote(domain.Note{ID: n.ID, Title: strings.Repeat("t", domain.MaxTitleLength+1)})
	assert.ErrorIs(t, err, domain.ErrSave)
	assert.ErrorIs(t, err, domain.ErrTitleTooLong)

	selected, ok := app.Selected()
	require.True(t, ok)
	assert.Equal(t, "short", selected.Title)
	time.Sleep(3 * testInterval)
	assert.Empty(t, fake.Calls("UpdateNote"))
}

func TestApp_Restore(t *testing.T) {
	fake := remotetest.New()
	fake.SeedUser(domain.User{ID: "u1", Email: "a@x.com"})
	fake.SeedNote("u1", "n", "")
	app, ks := newTestApp(t, fake, Options{})
	require.NoError(t, ks.Set("session/email", "a@x.com"))

	user, ok, err := app.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
	assert.Len(t, app.Notes(), 1)
}

func TestApp_RestoreWithoutSession(t *testing.T) {
	app, _ := newTestApp(t, remotetest.New(), Options{})

	_, ok, err := app.Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApp_LoadFailureKeepsUser(t *testing.T) {
	fake := remotetest.New()
	fake.SetFail("GetNotesByUser", remotetest.ErrUnavailable)
	app, _ := newTestApp(t, fake, Options{})

	user, err := app.Login(context.Background(), domain.Claim{Email: "a@x.com"})

	assert.ErrorIs(t, err, domain.ErrLoad)
	assert.NotEmpty(t, user.ID)
	active, ok := app.User()
	require.True(t, ok)
	assert.Equal(t, user.ID, active.ID)
	assert.Empty(t, app.Notes())
}

func TestApp_LoginWithToken(t *testing.T) {
	token, err := jwt.GenerateToken("ada@x.com", "Ada", "https://x.com/ada.png", time.Hour, "provider-secret")
	require.NoError(t, err)

	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr bool
	}{
		{name: "decoded without secret", token: token},
		{name: "verified with secret", secret: "provider-secret", token: token},
		{name: "wrong secret", secret: "other", token: token, wantErr: true},
		{name: "garbage", token: "garbage", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := remotetest.New()
			app, _ := newTestApp(t, fake, Options{IdentitySecret: tt.secret})

			user, err := app.LoginWithToken(context.Background(), tt.token)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrSession)
				assert.Empty(t, fake.Calls(""))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada@x.com", user.Email)
			assert.Equal(t, "Ada", user.Name)
			assert.Equal(t, "https://x.com/ada.png", user.AvatarURL)
		})
	}
}

func TestApp_SaveErrorHandler(t *testing.T) {
	fake := remotetest.New()
	errs := make(chan error, 1)
	app, _ := newTestApp(t, fake, Options{OnSaveError: func(noteID string, err error) { errs <- err }})

	_, err := app.Login(context.Background(), domain.Claim{Email: "a@x.com"})
	require.NoError(t, err)
	note, err := app.AddNote(context.Background())
	require.NoError(t, err)

	fake.SetFail("UpdateNote", remotetest.ErrUnavailable)
	note.Title = "changed"
	require.NoError(t, app.SaveNote(note))

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, domain.ErrSave)
	case <-time.After(time.Second):
		t.Fatal("save error was not reported")
	}
}
