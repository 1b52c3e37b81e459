package notes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noteapp/internal/domain"
)

const testInterval = 20 * time.Millisecond

type recordingSender struct {
	mu       sync.Mutex
	sent     []domain.Note
	active   map[string]int
	maxSeen  int
	gate     chan struct{}
	started  chan string
	failWith error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{active: make(map[string]int), started: make(chan string, 16)}
}

func (r *recordingSender) send(ctx context.Context, note domain.Note) error {
	r.mu.Lock()
	r.active[note.ID]++
	if r.active[note.ID] > r.maxSeen {
		r.maxSeen = r.active[note.ID]
	}
	gate := r.gate
	r.mu.Unlock()

	r.started <- note.ID
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active[note.ID]--
	r.sent = append(r.sent, note)
	return r.failWith
}

func (r *recordingSender) Sent() []domain.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Note(nil), r.sent...)
}

func TestDebouncer_CollapsesRapidEdits(t *testing.T) {
	rec := newRecordingSender()
	d := NewDebouncer(testInterval, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1", Title: "G"})
	d.Schedule(domain.Note{ID: "1", Title: "Gr"})
	d.Schedule(domain.Note{ID: "1", Title: "Groceries", Content: "milk"})

	require.Eventually(t, func() bool { return len(rec.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * testInterval)

	sent := rec.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Groceries", sent[0].Title)
	assert.Equal(t, "milk", sent[0].Content)
}

func TestDebouncer_TrailingEdgeResetsTimer(t *testing.T) {
	rec := newRecordingSender()
	d := NewDebouncer(150*time.Millisecond, time.Second, rec.send, nil, nil)

	for i := 0; i < 5; i++ {
		d.Schedule(domain.Note{ID: "1", Content: string(rune('a' + i))})
		time.Sleep(10 * time.Millisecond)
	}
	assert.Empty(t, rec.Sent(), "nothing is sent while edits keep arriving")

	require.Eventually(t, func() bool { return len(rec.Sent()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "e", rec.Sent()[0].Content)
}

func TestDebouncer_NotesAreIndependent(t *testing.T) {
	rec := newRecordingSender()
	d := NewDebouncer(testInterval, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1", Title: "one"})
	d.Schedule(domain.Note{ID: "2", Title: "two"})

	require.Eventually(t, func() bool { return len(rec.Sent()) == 2 }, time.Second, 5*time.Millisecond)

	titles := []string{rec.Sent()[0].Title, rec.Sent()[1].Title}
	assert.ElementsMatch(t, []string{"one", "two"}, titles)
}

func TestDebouncer_Cancel(t *testing.T) {
	rec := newRecordingSender()
	d := NewDebouncer(testInterval, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1", Title: "draft"})
	require.True(t, d.Pending("1"))

	got, ok := d.Cancel("1")
	require.True(t, ok)
	assert.Equal(t, "draft", got.Title)
	assert.False(t, d.Pending("1"))

	_, ok = d.Cancel("1")
	assert.False(t, ok)

	time.Sleep(3 * testInterval)
	assert.Empty(t, rec.Sent())
}

func TestDebouncer_OneSaveInFlightPerNote(t *testing.T) {
	rec := newRecordingSender()
	rec.gate = make(chan struct{})
	d := NewDebouncer(testInterval, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1", Content: "v1"})
	select {
	case <-rec.started:
	case <-time.After(time.Second):
		t.Fatal("first save never started")
	}

	d.Schedule(domain.Note{ID: "1", Content: "v2"})
	time.Sleep(3 * testInterval)

	select {
	case <-rec.started:
		t.Fatal("second save started while the first was in flight")
	default:
	}

	close(rec.gate)
	require.Eventually(t, func() bool { return len(rec.Sent()) == 2 }, time.Second, 5*time.Millisecond)

	sent := rec.Sent()
	assert.Equal(t, "v1", sent[0].Content)
	assert.Equal(t, "v2", sent[1].Content)
	rec.mu.Lock()
	assert.Equal(t, 1, rec.maxSeen)
	rec.mu.Unlock()
}

func TestDebouncer_FlushAndWait(t *testing.T) {
	rec := newRecordingSender()
	d := NewDebouncer(time.Hour, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1", Title: "a"})
	d.Schedule(domain.Note{ID: "2", Title: "b"})
	d.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Wait(ctx))

	assert.Len(t, rec.Sent(), 2)
	assert.False(t, d.Pending("1"))
	assert.False(t, d.Pending("2"))
}

func TestDebouncer_WaitHonoursContext(t *testing.T) {
	rec := newRecordingSender()
	rec.gate = make(chan struct{})
	defer close(rec.gate)
	d := NewDebouncer(time.Hour, time.Second, rec.send, nil, nil)

	d.Schedule(domain.Note{ID: "1"})
	d.Flush()
	<-rec.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Wait(ctx), context.DeadlineExceeded)
}

func TestDebouncer_ReportsSaveErrors(t *testing.T) {
	rec := newRecordingSender()
	rec.failWith = errors.New("boom")

	var mu sync.Mutex
	var reported []error
	onError := func(noteID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "1", noteID)
		reported = append(reported, err)
	}
	d := NewDebouncer(testInterval, time.Second, rec.send, onError, nil)

	d.Schedule(domain.Note{ID: "1"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reported) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, reported[0], domain.ErrSave)
	assert.ErrorContains(t, reported[0], "boom")
}
