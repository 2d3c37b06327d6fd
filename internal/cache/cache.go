// Package cache performs the actual byte fetch, storage and eviction of
// hymn audio. Requests are serviced by a background worker; every call
// gets its own reply channel, so concurrent downloads can never
// cross-resolve.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/tlemaire/hymnbox/internal/hymn"
)

// Collaborator is the contract the download manager programs against.
type Collaborator interface {
	// Download fetches the hymn audio and returns the local path.
	Download(ctx context.Context, h hymn.Hymn) (string, error)
	// Delete evicts one cached file. Missing files are not an error.
	Delete(ctx context.Context, hymnID string) error
	// Clear evicts the whole cache namespace.
	Clear(ctx context.Context) error
	// Estimate reports storage quota and usage for the cache location.
	Estimate() (Usage, error)
}

// Progress is an ephemeral snapshot of one in-flight transfer.
type Progress struct {
	HymnID      string
	Percent     int
	BytesLoaded int64
	BytesTotal  int64
	BytesPerSec float64
	ETA         time.Duration
}

// Usage reports storage quota and consumption.
type Usage struct {
	QuotaBytes     int64
	UsedBytes      int64
	AvailableBytes int64
}

type requestKind int

const (
	kindDownload requestKind = iota
	kindDelete
	kindClear
)

type request struct {
	kind   requestKind
	ctx    context.Context
	hymn   hymn.Hymn
	hymnID string
	reply  chan response
}

type response struct {
	path string
	err  error
}

// Worker is the background implementation of Collaborator. Fetches run
// concurrently up to a configured limit; eviction requests are handled
// inline by the request loop.
type Worker struct {
	dir        string
	client     *http.Client
	onProgress func(Progress)
	logger     *log.Logger

	requests chan request
	group    *errgroup.Group
	done     chan struct{}
}

// Verify Worker implements Collaborator at compile time.
var _ Collaborator = (*Worker)(nil)

// Options configures a Worker.
type Options struct {
	Dir           string // cache directory; created if missing
	MaxConcurrent int    // parallel fetches (default 3)
	OnProgress    func(Progress)
	Logger        *log.Logger
}

// NewWorker creates the cache worker and starts its request loop.
func NewWorker(opts Options) (*Worker, error) {
	if opts.Dir == "" {
		return nil, errors.New("cache: dir is required")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}

	g := &errgroup.Group{}
	g.SetLimit(opts.MaxConcurrent)

	w := &Worker{
		dir: opts.Dir,
		// Response-header timeout only: transfers themselves are not
		// bounded, large files may take arbitrarily long.
		client: &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second},
		},
		onProgress: opts.OnProgress,
		logger:     opts.Logger.With("component", "cache"),
		requests:   make(chan request),
		group:      g,
		done:       make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Worker) run() {
	for req := range w.requests {
		switch req.kind {
		case kindDownload:
			// Admission may block on the concurrency limit; do it off
			// the loop so eviction requests are not queued behind full
			// download slots.
			go func(req request) {
				w.group.Go(func() error {
					path, err := w.fetch(req.ctx, req.hymn)
					req.reply <- response{path: path, err: err}
					return nil
				})
			}(req)
		case kindDelete:
			req.reply <- response{err: w.evict(req.hymnID)}
		case kindClear:
			req.reply <- response{err: w.evictAll()}
		}
	}
	close(w.done)
}

// Download implements Collaborator.
func (w *Worker) Download(ctx context.Context, h hymn.Hymn) (string, error) {
	resp, err := w.submit(request{kind: kindDownload, ctx: ctx, hymn: h})
	if err != nil {
		return "", err
	}
	return resp.path, resp.err
}

// Delete implements Collaborator.
func (w *Worker) Delete(ctx context.Context, hymnID string) error {
	resp, err := w.submit(request{kind: kindDelete, ctx: ctx, hymnID: hymnID})
	if err != nil {
		return err
	}
	return resp.err
}

// Clear implements Collaborator.
func (w *Worker) Clear(ctx context.Context) error {
	resp, err := w.submit(request{kind: kindClear, ctx: ctx})
	if err != nil {
		return err
	}
	return resp.err
}

func (w *Worker) submit(req request) (response, error) {
	req.reply = make(chan response, 1)
	if req.ctx == nil {
		req.ctx = context.Background()
	}

	select {
	case w.requests <- req:
	case <-w.done:
		return response{}, errors.New("cache: worker closed")
	case <-req.ctx.Done():
		return response{}, req.ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-req.ctx.Done():
		return response{}, req.ctx.Err()
	}
}

func (w *Worker) evict(hymnID string) error {
	err := os.Remove(w.audioPath(hymnID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("evict %s: %w", hymnID, err)
	}
	return nil
}

func (w *Worker) evictAll() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(w.dir, entry.Name())); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
	}
	return nil
}

func (w *Worker) audioPath(hymnID string) string {
	return filepath.Join(w.dir, hymnID+".audio")
}

// Close stops accepting requests and waits for in-flight fetches.
func (w *Worker) Close() {
	close(w.requests)
	<-w.done
	_ = w.group.Wait()
}
