package notes

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"noteapp/internal/domain"
)

// DefaultDebounceInterval is the quiet period after the last edit of a note
// before its state is sent to the remote.
const DefaultDebounceInterval = 500 * time.Millisecond

// SendFunc persists the latest state of a note remotely.
type SendFunc func(ctx context.Context, note domain.Note) error

// ErrorHandler receives failures of debounced saves. The error unwraps to
// domain.ErrSave.
type ErrorHandler func(noteID string, err error)

type pendingSave struct {
	note  domain.Note
	timer *time.Timer
	seq   uint64
	// deferred is set when the timer expired while an earlier save of the
	// same note was still in flight.
	deferred bool
}

// Debouncer collapses rapid edits of a note into one trailing-edge remote
// update. Every note has its own timer; at most one update per note is in
// flight at a time.
type Debouncer struct {
	interval time.Duration
	timeout  time.Duration
	send     SendFunc
	onError  ErrorHandler
	logger   *slog.Logger

	mu       sync.Mutex
	seq      uint64
	pending  map[string]*pendingSave
	inflight map[string]bool
	idle     chan struct{}
}

func NewDebouncer(interval, timeout time.Duration, send SendFunc, onError ErrorHandler, logger *slog.Logger) *Debouncer {
	if interval <= 0 {
		interval = DefaultDebounceInterval
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Debouncer{
		interval: interval,
		timeout:  timeout,
		send:     send,
		onError:  onError,
		logger:   logger,
		pending:  make(map[string]*pendingSave),
		inflight: make(map[string]bool),
	}
	if d.onError == nil {
		d.onError = func(noteID string, err error) {
			d.logger.Error("debounced save failed", "note_id", noteID, "error", err)
		}
	}
	return d
}

// Schedule records note as the latest state for its id and re-arms the
// note's timer.
func (d *Debouncer) Schedule(note domain.Note) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	id := note.ID

	p, ok := d.pending[id]
	if ok {
		p.timer.Stop()
	} else {
		p = &pendingSave{}
		d.pending[id] = p
	}
	p.note = note
	p.seq = seq
	p.deferred = false
	p.timer = time.AfterFunc(d.interval, func() { d.fire(id, seq) })
}

// Cancel drops the pending save of id and returns the state it would have sent.
func (d *Debouncer) Cancel(id string) (domain.Note, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[id]
	if !ok {
		return domain.Note{}, false
	}
	p.timer.Stop()
	delete(d.pending, id)
	return p.note, true
}

// Pending reports whether a save for id is waiting for its timer.
func (d *Debouncer) Pending(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[id]
	return ok
}

// Flush sends every pending save now instead of waiting for its timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, p := range d.pending {
		p.timer.Stop()
		if d.inflight[id] {
			p.deferred = true
			continue
		}
		delete(d.pending, id)
		d.markInflight(id)
		go d.dispatch(p.note)
	}
}

// Wait blocks until no save is in flight or ctx is done.
func (d *Debouncer) Wait(ctx context.Context) error {
	for {
		d.mu.Lock()
		if len(d.inflight) == 0 {
			d.mu.Unlock()
			return nil
		}
		idle := d.idle
		d.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Debouncer) fire(id string, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[id]
	if !ok || p.seq != seq {
		d.mu.Unlock()
		return
	}
	if d.inflight[id] {
		p.deferred = true
		d.mu.Unlock()
		return
	}
	delete(d.pending, id)
	d.markInflight(id)
	d.mu.Unlock()

	d.dispatch(p.note)
}

// dispatch sends note and then any save of the same id that expired
// meanwhile. The caller has marked the id in flight.
func (d *Debouncer) dispatch(note domain.Note) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.send(ctx, note)
		cancel()

		if err != nil {
			d.onError(note.ID, domain.NewOpError(domain.ErrSave, note.ID, err))
		} else {
			d.logger.Debug("note saved", "note_id", note.ID)
		}

		d.mu.Lock()
		next, ok := d.pending[note.ID]
		if ok && next.deferred {
			delete(d.pending, note.ID)
			d.mu.Unlock()
			note = next.note
			continue
		}
		d.clearInflight(note.ID)
		d.mu.Unlock()
		return
	}
}

func (d *Debouncer) markInflight(id string) {
	if len(d.inflight) == 0 {
		d.idle = make(chan struct{})
	}
	d.inflight[id] = true
}

func (d *Debouncer) clearInflight(id string) {
	delete(d.inflight, id)
	if len(d.inflight) == 0 {
		close(d.idle)
	}
}
