// Package notes owns the client-side note collection of the active user.
//
// The Store applies every intent (add, save, delete, select) to its local
// collection synchronously and reconciles with the remote note service:
// creations are exposed only once the remote assigned an id, edits are sent
// through a per-note Debouncer, and failed deletions are rolled back.
package notes

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"noteapp/internal/domain"
	"noteapp/internal/remote"
)

type options struct {
	interval    time.Duration
	timeout     time.Duration
	onSaveError ErrorHandler
	isActive    func(userID string) bool
}

type Option func(*options)

func WithDebounceInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithRequestTimeout bounds each debounced update call.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func WithSaveErrorHandler(h ErrorHandler) Option {
	return func(o *options) { o.onSaveError = h }
}

// WithActiveUser makes Load refuse a user for which fn reports false, so a
// load racing a logout never reinstalls the logged-out user.
func WithActiveUser(fn func(userID string) bool) Option {
	return func(o *options) { o.isActive = fn }
}

type Store struct {
	remote    remote.NoteClient
	debouncer *Debouncer
	isActive  func(userID string) bool
	logger    *slog.Logger

	mu       sync.RWMutex
	userID   string
	epoch    uint64
	notes    []domain.Note
	selected string
}

func NewStore(client remote.NoteClient, logger *slog.Logger, opts ...Option) *Store {
	o := options{interval: DefaultDebounceInterval, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notes")

	s := &Store{
		remote:   client,
		isActive: o.isActive,
		logger:   logger,
	}
	s.debouncer = NewDebouncer(o.interval, o.timeout, s.sendUpdate, o.onSaveError, logger)
	return s
}

func (s *Store) sendUpdate(ctx context.Context, note domain.Note) error {
	_, err := s.remote.UpdateNote(ctx, note.ID, domain.UpdateNoteRequest{
		Title:   note.Title,
		Content: note.Content,
	})
	return err
}

// Load replaces the collection with the notes of userID and makes userID the
// active user. On failure the collection is left empty.
func (s *Store) Load(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrNoActiveSession
	}

	s.mu.Lock()
	if s.isActive != nil && !s.isActive(userID) {
		s.mu.Unlock()
		return domain.NewOpError(domain.ErrLoad, "", domain.ErrSuperseded)
	}
	s.epoch++
	epoch := s.epoch
	s.userID = userID
	s.notes = nil
	s.selected = ""
	s.mu.Unlock()

	fetched, err := s.remote.GetNotesByUser(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return domain.NewOpError(domain.ErrLoad, "", domain.ErrSuperseded)
	}
	if err != nil {
		s.logger.Error("failed to load notes", "user_id", userID, "error", err)
		return domain.NewOpError(domain.ErrLoad, "", err)
	}

	notes := make([]domain.Note, 0, len(fetched))
	for _, n := range fetched {
		if n.UserID == "" {
			n.UserID = userID
		}
		if n.UserID != userID || n.ID == "" || indexOf(notes, n.ID) >= 0 {
			s.logger.Warn("skipping foreign or malformed note", "note_id", n.ID, "user_id", n.UserID)
			continue
		}
		notes = append(notes, n.Normalized())
	}
	s.notes = notes
	s.selected = s.firstIDLocked()

	s.logger.Debug("notes loaded", "user_id", userID, "count", len(notes))
	return nil
}

// Clear forgets the active user and its notes. Saves still waiting for their
// timer are sent right away; completions of calls started before Clear are
// discarded.
func (s *Store) Clear() {
	s.mu.Lock()
	s.epoch++
	s.userID = ""
	s.notes = nil
	s.selected = ""
	s.mu.Unlock()

	s.debouncer.Flush()
}

// AddNote creates an untitled note remotely and, once it has an id, appends
// it to the collection and selects it.
func (s *Store) AddNote(ctx context.Context) (domain.Note, error) {
	s.mu.RLock()
	userID, epoch := s.userID, s.epoch
	s.mu.RUnlock()

	if userID == "" {
		return domain.Note{}, domain.ErrNoActiveSession
	}

	created, err := s.remote.CreateNote(ctx, domain.CreateNoteRequest{
		UserID:  userID,
		Title:   domain.DefaultTitle,
		Content: "",
	})
	if err != nil {
		return domain.Note{}, domain.NewOpError(domain.ErrCreate, "", err)
	}
	if created == nil || created.ID == "" {
		return domain.Note{}, domain.NewOpError(domain.ErrCreate, "", errors.New("remote returned a note without id"))
	}

	note := created.Normalized()
	if note.UserID == "" {
		note.UserID = userID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Warn("note created for a session that ended", "note_id", note.ID)
		return domain.Note{}, domain.NewOpError(domain.ErrCreate, note.ID, domain.ErrSuperseded)
	}

	if i := indexOf(s.notes, note.ID); i >= 0 {
		s.notes[i] = note
	} else {
		s.notes = append(s.notes, note)
	}
	s.selected = note.ID

	return note, nil
}

// SaveNote applies an edit locally and schedules its remote update. The
// title is normalized here, so callers may pass the raw editor value.
// Unknown ids are ignored. A title longer than domain.MaxTitleLength is
// rejected before anything changes.
func (s *Store) SaveNote(note domain.Note) error {
	if err := domain.ValidateTitle(note.Title); err != nil {
		return domain.NewOpError(domain.ErrSave, note.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userID == "" {
		return domain.ErrNoActiveSession
	}

	i := indexOf(s.notes, note.ID)
	if i < 0 {
		s.logger.Debug("save of unknown note ignored", "note_id", note.ID)
		return nil
	}

	updated := s.notes[i]
	updated.Title = domain.NormalizeTitle(note.Title)
	updated.Content = note.Content
	s.notes[i] = updated

	s.debouncer.Schedule(updated)
	return nil
}

// DeleteNote removes a note locally, cancels its pending save and deletes it
// remotely. If the remote delete fails the note is put back where it was.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return domain.ErrNoActiveSession
	}

	idx := indexOf(s.notes, id)
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	removed := s.notes[idx]
	wasSelected := s.selected == id
	s.notes = slices.Delete(s.notes, idx, idx+1)
	if wasSelected {
		s.selected = s.firstIDLocked()
	}
	autoSelected := s.selected
	_, hadPending := s.debouncer.Cancel(id)
	epoch := s.epoch
	s.mu.Unlock()

	err := s.remote.DeleteNote(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("note already gone remotely", "note_id", id)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		s.logger.Error("delete failed after session ended, not restoring", "note_id", id, "error", err)
		return domain.NewOpError(domain.ErrDelete, id, err)
	}
	if indexOf(s.notes, id) >= 0 {
		return domain.NewOpError(domain.ErrDelete, id, err)
	}

	pos := min(idx, len(s.notes))
	s.notes = slices.Insert(s.notes, pos, removed)
	if wasSelected && s.selected == autoSelected {
		s.selected = id
	} else if s.selected == "" {
		s.selected = s.firstIDLocked()
	}
	if hadPending {
		s.debouncer.Schedule(removed)
	}

	s.logger.Warn("delete failed, note restored", "note_id", id, "index", pos, "error", err)
	return domain.NewOpError(domain.ErrDelete, id, err)
}

// Select points the selection at id if the note exists.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.notes, id) >= 0 {
		s.selected = id
	}
}

func (s *Store) Notes() []domain.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

func (s *Store) Selected() (domain.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.notes, s.selected); i >= 0 {
		return s.notes[i], true
	}
	return domain.Note{}, false
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Close sends pending saves and waits for in-flight ones.
func (s *Store) Close(ctx context.Context) error {
	s.debouncer.Flush()
	return s.debouncer.Wait(ctx)
}

func indexOf(notes []domain.Note, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(notes, func(n domain.Note) bool { return n.ID == id })
}

func (s *Store) firstIDLocked() string {
	if len(s.notes) == 0 {
		return ""
	}
	return s.notes[0].ID
}
