package pending

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tlemaire/hymnbox/internal/connectivity"
	"github.com/tlemaire/hymnbox/internal/errmsg"
	"github.com/tlemaire/hymnbox/internal/store"
)

const (
	// maxRetries is the delivery attempt cap; an action failing this
	// many times is permanently dropped.
	maxRetries = 5
	// maxErrors bounds the drop-message list, oldest first out.
	maxErrors = 50
)

// Engine owns the durable pending-action queue and drains it to the
// backend sinks whenever the client is online.
type Engine struct {
	store   *store.Store
	sink    Sink
	monitor *connectivity.Monitor
	logger  *log.Logger

	// queueMu serializes queue writes: Add waits for an in-progress
	// drain cycle, so the atomic end-of-cycle replace can never clobber
	// an entry appended mid-drain.
	queueMu sync.Mutex
	syncing atomic.Bool

	errMu  sync.Mutex
	errors []string

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Options configures an Engine.
type Options struct {
	Store   *store.Store
	Sink    Sink
	Monitor *connectivity.Monitor
	Logger  *log.Logger
}

// NewEngine creates the engine and starts the reconnect watcher, which
// triggers one drain per offline-to-online transition.
func NewEngine(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}

	e := &Engine{
		store:   opts.Store,
		sink:    opts.Sink,
		monitor: opts.Monitor,
		logger:  opts.Logger.With("component", "pending"),
		stop:    make(chan struct{}),
	}

	ch := e.monitor.Subscribe()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		for {
			select {
			case online, ok := <-ch:
				if !ok {
					return
				}
				// The monitor emits transitions only, so a true here
				// is exactly one offline-to-online edge.
				if online {
					e.Sync()
				}
			case <-e.stop:
				return
			}
		}
	}()

	return e
}

// Add appends an action to the durable queue. When online, a drain is
// triggered immediately, fire and forget.
func (e *Engine) Add(actionType ActionType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	action := store.PendingAction{
		ID:        uuid.New().String(),
		Type:      string(actionType),
		Payload:   string(body),
		CreatedAt: time.Now(),
	}

	e.queueMu.Lock()
	err = e.store.AppendAction(action)
	e.queueMu.Unlock()
	if err != nil {
		return fmt.Errorf("append action: %w", err)
	}

	if e.monitor.Online() {
		go e.Sync()
	}
	return nil
}

// Sync runs one drain cycle: every queued action is attempted once, in
// enqueue order. Successes are dropped; failures have their retry count
// bumped and survive until the cap, after which they are permanently
// dropped with a recorded message. No-op when offline, when the queue is
// empty, or when a cycle is already running.
func (e *Engine) Sync() {
	if !e.syncing.CompareAndSwap(false, true) {
		return
	}
	defer e.syncing.Store(false)

	if !e.monitor.Online() {
		return
	}

	e.queueMu.Lock()
	defer e.queueMu.Unlock()

	actions, err := e.store.Actions()
	if err != nil {
		e.logger.Error("load pending queue", "err", err)
		return
	}
	if len(actions) == 0 {
		return
	}

	e.logger.Info("draining pending actions", "count", len(actions))

	var surviving []store.PendingAction
	delivered := 0
	for _, action := range actions {
		err := e.deliver(action)
		if err == nil {
			delivered++
			continue
		}

		action.Retries++
		if action.Retries < maxRetries {
			surviving = append(surviving, action)
			continue
		}
		e.recordDrop(action, err)
	}

	if err := e.store.ReplaceActions(surviving); err != nil {
		e.logger.Error("persist surviving queue", "err", err)
		return
	}

	e.logger.Info("drain cycle finished",
		"delivered", delivered, "surviving", len(surviving), "dropped", len(actions)-delivered-len(surviving))
}

// ManualSync triggers a drain on user request. Same semantics as the
// automatic drain, including the online gate.
func (e *Engine) ManualSync() {
	e.Sync()
}

// deliver dispatches one action to its type-specific sink.
func (e *Engine) deliver(action store.PendingAction) error {
	switch ActionType(action.Type) {
	case ActionPlayCount:
		var p PlayCountPayload
		if err := json.Unmarshal([]byte(action.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return e.sink.RecordPlay(p.HymnID, p.Timestamp)
	case ActionLike:
		var p LikePayload
		if err := json.Unmarshal([]byte(action.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return e.sink.SetLike(p.HymnID, p.Liked)
	case ActionPlaylistAdd:
		var p PlaylistAddPayload
		if err := json.Unmarshal([]byte(action.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return e.sink.AddToPlaylist(p.PlaylistID, p.HymnID)
	case ActionRating:
		var p RatingPayload
		if err := json.Unmarshal([]byte(action.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return e.sink.Rate(p.HymnID, p.Rating)
	case ActionComment:
		var p CommentPayload
		if err := json.Unmarshal([]byte(action.Payload), &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return e.sink.Comment(p.HymnID, p.Comment)
	default:
		return fmt.Errorf("unknown action type %q", action.Type)
	}
}

func (e *Engine) recordDrop(action store.PendingAction, cause error) {
	msg := errmsg.FormatWith(errmsg.OpSyncDrain,
		fmt.Sprintf("%s %s after %d attempts", action.Type, action.ID, maxRetries), cause)

	e.errMu.Lock()
	e.errors = append(e.errors, msg)
	if len(e.errors) > maxErrors {
		e.errors = e.errors[len(e.errors)-maxErrors:]
	}
	e.errMu.Unlock()

	e.logger.Warn("pending action dropped", "type", action.Type, "id", action.ID, "err", cause)
}

// Errors returns the recorded drop messages, oldest first.
func (e *Engine) Errors() []string {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return append([]string(nil), e.errors...)
}

// Actions returns the current queue in enqueue order.
func (e *Engine) Actions() ([]store.PendingAction, error) {
	return e.store.Actions()
}

// Remove deletes one queued action without delivering it.
func (e *Engine) Remove(id string) error {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return e.store.DeleteAction(id)
}

// Clear empties the queue without delivering anything.
func (e *Engine) Clear() error {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return e.store.ClearActions()
}

// Close stops the reconnect watcher.
func (e *Engine) Close() {
	e.stopOnce.Do(func() { close(e.stop) })
	e.wg.Wait()
}
