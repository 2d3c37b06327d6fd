package pending

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tlemaire/hymnbox/internal/connectivity"
	"github.com/tlemaire/hymnbox/internal/store"
)

// fakeSink records delivery attempts and fails the hymn ids listed in
// failing.
type fakeSink struct {
	mu      sync.Mutex
	calls   []string
	failing map[string]error
	block   chan struct{} // when set, deliveries wait on it
	entered chan struct{} // signaled when a delivery starts
}

func newFakeSink() *fakeSink {
	return &fakeSink{failing: make(map[string]error)}
}

func (f *fakeSink) attempt(kind, hymnID string) error {
	f.mu.Lock()
	f.calls = append(f.calls, kind+":"+hymnID)
	block := f.block
	entered := f.entered
	err := f.failing[hymnID]
	f.mu.Unlock()

	if entered != nil {
		select {
		case entered <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeSink) RecordPlay(hymnID string, _ time.Time) error { return f.attempt("play", hymnID) }
func (f *fakeSink) SetLike(hymnID string, _ bool) error         { return f.attempt("like", hymnID) }
func (f *fakeSink) AddToPlaylist(_, hymnID string) error        { return f.attempt("playlist", hymnID) }
func (f *fakeSink) Rate(hymnID string, _ int) error             { return f.attempt("rate", hymnID) }
func (f *fakeSink) Comment(hymnID, _ string) error              { return f.attempt("comment", hymnID) }

func (f *fakeSink) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestEngine(t *testing.T, online bool) (*Engine, *fakeSink, *connectivity.Monitor) {
	t.Helper()

	s, err := store.OpenPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	sink := newFakeSink()
	monitor := connectivity.NewMonitor(online)
	t.Cleanup(monitor.Close)

	e := NewEngine(Options{Store: s, Sink: sink, Monitor: monitor, Logger: log.New(io.Discard)})
	t.Cleanup(e.Close)
	return e, sink, monitor
}

func queueLen(t *testing.T, e *Engine) int {
	t.Helper()
	actions, err := e.Actions()
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	return len(actions)
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSync_DeliversInEnqueueOrder(t *testing.T) {
	e, sink, _ := newTestEngine(t, true)

	for _, id := range []string{"h-a", "h-b", "h-c"} {
		if err := e.Add(ActionPlayCount, PlayCountPayload{HymnID: id, Timestamp: time.Now()}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	waitFor(t, func() bool { return queueLen(t, e) == 0 })

	calls := sink.Calls()
	if len(calls) != 3 {
		t.Fatalf("calls = %v, want 3", calls)
	}
	want := []string{"play:h-a", "play:h-b", "play:h-c"}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, calls[i], want[i])
		}
	}
}

// An action that always fails is attempted exactly 5 times, then
// permanently dropped with exactly one error-list entry.
func TestSync_RetryBound(t *testing.T) {
	e, sink, _ := newTestEngine(t, false)

	sink.failing["h-bad"] = errors.New("boom")
	if err := e.Add(ActionRating, RatingPayload{HymnID: "h-bad", Rating: 3}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	monitorOnline(t, e)

	for i := 0; i < 10; i++ {
		e.Sync()
	}

	if got := len(sink.Calls()); got != 5 {
		t.Errorf("delivery attempts = %d, want exactly 5", got)
	}
	if got := queueLen(t, e); got != 0 {
		t.Errorf("queue length = %d, want 0 after drop", got)
	}
	if got := len(e.Errors()); got != 1 {
		t.Errorf("error list length = %d, want 1", got)
	}
}

// monitorOnline flips the engine's monitor online without relying on the
// auto-drain (the queue state is asserted explicitly by callers).
func monitorOnline(t *testing.T, e *Engine) {
	t.Helper()
	e.monitor.SetOnline(true)
	// Let the watcher's drain (if any) finish before the test drives
	// its own cycles.
	waitFor(t, func() bool { return !e.syncing.Load() })
}

func TestSync_OfflineNoop(t *testing.T) {
	e, sink, _ := newTestEngine(t, false)

	if err := e.Add(ActionLike, LikePayload{HymnID: "h1", Liked: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	e.Sync()

	if got := len(sink.Calls()); got != 0 {
		t.Errorf("calls = %d, want 0 while offline", got)
	}
	if got := queueLen(t, e); got != 1 {
		t.Errorf("queue length = %d, want 1 (kept)", got)
	}
}

func TestAutoDrain_OnReconnect(t *testing.T) {
	e, sink, monitor := newTestEngine(t, false)

	if err := e.Add(ActionLike, LikePayload{HymnID: "h1", Liked: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if got := len(sink.Calls()); got != 0 {
		t.Fatalf("calls = %d, want 0 before reconnect", got)
	}

	monitor.SetOnline(true)
	waitFor(t, func() bool { return queueLen(t, e) == 0 })

	if got := len(sink.Calls()); got != 1 {
		t.Errorf("calls = %d, want 1 after reconnect", got)
	}
}

func TestSync_Reentrancy(t *testing.T) {
	e, sink, _ := newTestEngine(t, true)

	sink.block = make(chan struct{})
	sink.entered = make(chan struct{}, 1)

	if err := e.Add(ActionComment, CommentPayload{HymnID: "h1", Comment: "amen"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Add triggered a fire-and-forget drain which is now blocked inside
	// the sink.
	<-sink.entered

	// A concurrent Sync must return immediately instead of starting a
	// second cycle.
	returned := make(chan struct{})
	go func() {
		e.Sync()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Sync blocked behind the in-flight cycle")
	}

	close(sink.block)
	waitFor(t, func() bool { return queueLen(t, e) == 0 })

	if got := len(sink.Calls()); got != 1 {
		t.Errorf("calls = %d, want 1 (single cycle)", got)
	}
}

// Offline client queues two likes; on reconnect one sink succeeds and
// the other fails five consecutive cycles. Final state: empty queue, one
// recorded drop.
func TestEndToEnd_TwoLikes(t *testing.T) {
	e, sink, _ := newTestEngine(t, false)

	sink.failing["h-bad"] = errors.New("status 500")

	for _, id := range []string{"h-ok", "h-bad"} {
		if err := e.Add(ActionLike, LikePayload{HymnID: id, Liked: true}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	monitorOnline(t, e)
	for i := 0; i < 5; i++ {
		e.Sync()
	}

	if got := queueLen(t, e); got != 0 {
		t.Errorf("queue length = %d, want 0", got)
	}
	if got := len(e.Errors()); got != 1 {
		t.Errorf("error list length = %d, want 1", got)
	}

	calls := sink.Calls()
	okCalls, badCalls := 0, 0
	for _, c := range calls {
		switch c {
		case "like:h-ok":
			okCalls++
		case "like:h-bad":
			badCalls++
		}
	}
	if okCalls != 1 {
		t.Errorf("h-ok deliveries = %d, want 1", okCalls)
	}
	if badCalls != 5 {
		t.Errorf("h-bad attempts = %d, want 5", badCalls)
	}
}

func TestRemoveAndClear(t *testing.T) {
	e, _, _ := newTestEngine(t, false)

	if err := e.Add(ActionLike, LikePayload{HymnID: "h1", Liked: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := e.Add(ActionRating, RatingPayload{HymnID: "h2", Rating: 4}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	actions, err := e.Actions()
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if err := e.Remove(actions[0].ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := queueLen(t, e); got != 1 {
		t.Errorf("queue length = %d, want 1 after Remove", got)
	}

	if err := e.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := queueLen(t, e); got != 0 {
		t.Errorf("queue length = %d, want 0 after Clear", got)
	}
}

func TestSync_RetriesSurviveRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := store.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	sink := newFakeSink()
	sink.failing["h1"] = errors.New("boom")
	monitor := connectivity.NewMonitor(true)
	e := NewEngine(Options{Store: s, Sink: sink, Monitor: monitor, Logger: log.New(io.Discard)})

	if err := e.Add(ActionLike, LikePayload{HymnID: "h1", Liked: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	waitFor(t, func() bool {
		actions, err := e.Actions()
		return err == nil && len(actions) == 1 && actions[0].Retries == 1
	})
	e.Close()
	monitor.Close()
	s.Close()

	// Restart: retry count persists
	s, err = store.OpenPath(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	actions, err := s.Actions()
	if err != nil {
		t.Fatalf("Actions failed: %v", err)
	}
	if len(actions) != 1 || actions[0].Retries != 1 {
		t.Errorf("persisted queue = %+v, want one entry with Retries=1", actions)
	}
}
