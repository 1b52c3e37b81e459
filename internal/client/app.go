// Package client is the surface a presentation layer drives: it wires the
// session resolver to the note collection and exposes their intents.
package client

import (
	"context"
	"log/slog"
	"time"

	"noteapp/internal/domain"
	"noteapp/internal/notes"
	"noteapp/internal/remote"
	"noteapp/internal/session"
	"noteapp/pkg/jwt"
)

type Options struct {
	// IdentitySecret, when set, is used to verify ID tokens. Otherwise tokens
	// are only decoded.
	IdentitySecret   string
	DebounceInterval time.Duration
	RequestTimeout   time.Duration
	// OnSaveError receives failed debounced saves. Defaults to logging.
	OnSaveError notes.ErrorHandler
}

type App struct {
	session *session.Resolver
	notes   *notes.Store
	secret  string
	logger  *slog.Logger
}

func New(rc remote.Client, keys session.KeyStore, logger *slog.Logger, opts Options) *App {
	if logger == nil {
		logger = slog.Default()
	}

	var storeOpts []notes.Option
	if opts.DebounceInterval > 0 {
		storeOpts = append(storeOpts, notes.WithDebounceInterval(opts.DebounceInterval))
	}
	if opts.RequestTimeout > 0 {
		storeOpts = append(storeOpts, notes.WithRequestTimeout(opts.RequestTimeout))
	}
	if opts.OnSaveError != nil {
		storeOpts = append(storeOpts, notes.WithSaveErrorHandler(opts.OnSaveError))
	}

	a := &App{
		secret: opts.IdentitySecret,
		logger: logger.With("component", "client"),
	}
	storeOpts = append(storeOpts, notes.WithActiveUser(func(userID string) bool {
		return a.session.Active(userID)
	}))
	a.notes = notes.NewStore(rc, logger, storeOpts...)
	a.session = session.NewResolver(rc, keys, logger, session.WithLogoutHook(a.notes.Clear))
	return a
}

// Login resolves claim to a user and loads that user's notes. A load failure
// keeps the user signed in and is returned alongside the user.
func (a *App) Login(ctx context.Context, claim domain.Claim) (domain.User, error) {
	user, err := a.session.ResolveFromClaim(ctx, claim)
	if err != nil {
		return domain.User{}, err
	}
	return user, a.load(ctx, user)
}

func (a *App) LoginWithToken(ctx context.Context, idToken string) (domain.User, error) {
	claim, err := a.claimFromToken(idToken)
	if err != nil {
		return domain.User{}, domain.NewOpError(domain.ErrSession, "", err)
	}
	return a.Login(ctx, claim)
}

// Restore resumes the persisted session, if any, and loads its notes.
func (a *App) Restore(ctx context.Context) (domain.User, bool, error) {
	user, ok, err := a.session.Restore(ctx)
	if err != nil || !ok {
		return domain.User{}, false, err
	}
	return user, true, a.load(ctx, user)
}

// load fills the note collection for user. It is refused when a logout or a
// newer login replaced user after it was resolved.
func (a *App) load(ctx context.Context, user domain.User) error {
	return a.notes.Load(ctx, user.ID)
}

func (a *App) Logout() {
	a.session.Logout()
}

func (a *App) User() (domain.User, bool) {
	return a.session.User()
}

func (a *App) Notes() []domain.Note {
	return a.notes.Notes()
}

func (a *App) Selected() (domain.Note, bool) {
	return a.notes.Selected()
}

func (a *App) AddNote(ctx context.Context) (domain.Note, error) {
	return a.notes.AddNote(ctx)
}

func (a *App) SaveNote(note domain.Note) error {
	return a.notes.SaveNote(note)
}

func (a *App) DeleteNote(ctx context.Context, id string) error {
	return a.notes.DeleteNote(ctx, id)
}

func (a *App) Select(id string) {
	a.notes.Select(id)
}

// Close sends every pending save and waits for them to finish.
func (a *App) Close(ctx context.Context) error {
	return a.notes.Close(ctx)
}

func (a *App) claimFromToken(idToken string) (domain.Claim, error) {
	var (
		claims *jwt.Claims
		err    error
	)
	if a.secret != "" {
		claims, err = jwt.ValidateToken(idToken, a.secret)
	} else {
		claims, err = jwt.DecodeToken(idToken)
	}
	if err != nil {
		return domain.Claim{}, err
	}
	return domain.Claim{Email: claims.Email, Name: claims.Name, AvatarURL: claims.Picture}, nil
}
