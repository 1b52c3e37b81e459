// Package session turns identity claims into the active user of the client
// and remembers the signed-in email across restarts.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"

	"noteapp/internal/domain"
	"noteapp/internal/remote"
	"noteapp/internal/storage"
)

// EmailKey is the key store entry holding the last signed-in email.
const EmailKey = "session/email"

// KeyStore persists the session key. Get returns storage.ErrKeyNotFound for
// missing keys.
type KeyStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

type Option func(*Resolver)

// WithLogoutHook registers fn to run whenever the session ends, either by
// Logout or by a failed resolution that drops the active user.
func WithLogoutHook(fn func()) Option {
	return func(r *Resolver) { r.onLogout = fn }
}

// Resolver owns the active user. Only one resolution runs at a time: starting
// a new one, or logging out, cancels the one in flight and discards its result.
type Resolver struct {
	remote   remote.UserClient
	keys     KeyStore
	validate *validator.Validate
	logger   *slog.Logger
	onLogout func()

	mu     sync.Mutex
	user   *domain.User
	gen    uint64
	cancel context.CancelFunc
}

func NewResolver(client remote.UserClient, keys KeyStore, logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		remote:   client,
		keys:     keys,
		validate: validator.New(),
		logger:   logger.With("component", "session"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveFromClaim gets or creates the user behind claim and makes it the
// active user.
func (r *Resolver) ResolveFromClaim(ctx context.Context, claim domain.Claim) (domain.User, error) {
	if err := r.validate.Struct(claim); err != nil {
		return domain.User{}, domain.NewOpError(domain.ErrSession, "", err)
	}

	ctx, gen, done := r.begin(ctx)
	defer done()

	user, err := r.remote.GetUserByEmail(ctx, claim.Email)
	if errors.Is(err, domain.ErrNotFound) {
		r.logger.Info("creating user on first login", "email", claim.Email)
		user, err = r.remote.CreateUser(ctx, claim.CreateUserRequest())
	}
	if err != nil {
		return domain.User{}, r.fail(gen, claim.Email, err)
	}
	return r.commit(gen, user)
}

// ResolveFromPersistedEmail looks up an existing user by email without ever
// creating one. Any failure clears the persisted email.
func (r *Resolver) ResolveFromPersistedEmail(ctx context.Context, email string) (domain.User, error) {
	ctx, gen, done := r.begin(ctx)
	defer done()

	if email == "" {
		return domain.User{}, r.fail(gen, email, errors.New("empty persisted email"))
	}

	user, err := r.remote.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, r.fail(gen, email, err)
	}
	return r.commit(gen, user)
}

// Restore resumes the session stored by an earlier run. It reports false
// when no email was persisted.
func (r *Resolver) Restore(ctx context.Context) (domain.User, bool, error) {
	email, err := r.keys.Get(EmailKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, domain.NewOpError(domain.ErrSession, "", err)
	}

	user, err := r.ResolveFromPersistedEmail(ctx, email)
	if err != nil {
		return domain.User{}, false, err
	}
	return user, true, nil
}

// Logout ends the session, forgets the persisted email and runs the logout hook.
func (r *Resolver) Logout() {
	r.mu.Lock()
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.user = nil
	if err := r.keys.Delete(EmailKey); err != nil {
		r.logger.Warn("failed to clear persisted session", "error", err)
	}
	r.mu.Unlock()

	r.logger.Info("logged out")
	if r.onLogout != nil {
		r.onLogout()
	}
}

func (r *Resolver) User() (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.user == nil {
		return domain.User{}, false
	}
	return *r.user, true
}

// Active reports whether userID is the user of the current session.
func (r *Resolver) Active(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user != nil && r.user.ID == userID
}

func (r *Resolver) begin(ctx context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.gen++
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	gen := r.gen
	r.mu.Unlock()

	return ctx, gen, func() {
		r.mu.Lock()
		if r.gen == gen {
			r.cancel = nil
		}
		r.mu.Unlock()
		cancel()
	}
}

func (r *Resolver) commit(gen uint64, user *domain.User) (domain.User, error) {
	if user == nil || user.ID == "" {
		return domain.User{}, r.fail(gen, "", errors.New("remote returned a user without id"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		return domain.User{}, domain.NewOpError(domain.ErrSession, "", domain.ErrSuperseded)
	}

	u := *user
	r.user = &u
	if err := r.keys.Set(EmailKey, u.Email); err != nil {
		r.logger.Warn("failed to persist session", "email", u.Email, "error", err)
	}

	r.logger.Info("session resolved", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// fail leaves the session unauthenticated unless a newer resolution or a
// logout already took over.
func (r *Resolver) fail(gen uint64, email string, cause error) error {
	r.mu.Lock()
	if r.gen != gen {
		r.mu.Unlock()
		return domain.NewOpError(domain.ErrSession, "", domain.ErrSuperseded)
	}
	hadUser := r.user != nil
	r.user = nil
	if err := r.keys.Delete(EmailKey); err != nil {
		r.logger.Warn("failed to clear persisted session", "error", err)
	}
	r.mu.Unlock()

	r.logger.Error("session resolution failed", "email", email, "error", cause)
	if hadUser && r.onLogout != nil {
		r.onLogout()
	}
	return domain.NewOpError(domain.ErrSession, "", cause)
}
