package cache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	hymnmodel "github.com/tlemaire/hymnbox/internal/hymn"
)

const progressInterval = 250 * time.Millisecond

// fetch streams the hymn audio to disk. The file is written to a temp
// path and renamed into place, so a partially transferred file is never
// visible under the final name.
func (w *Worker) fetch(ctx context.Context, h hymnmodel.Hymn) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.AudioURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = h.FileSize
	}

	finalPath := w.audioPath(h.ID)
	tmpPath := finalPath + ".part"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}

	counter := &progressWriter{
		worker:  w,
		hymnID:  h.ID,
		total:   total,
		started: time.Now(),
	}

	_, err = io.Copy(io.MultiWriter(f, counter), resp.Body)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("transfer: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("flush cache file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("commit cache file: %w", err)
	}

	counter.emit(true)
	w.logger.Info("cached hymn audio",
		"hymn", h.ID, "size", humanize.Bytes(uint64(counter.loaded)))
	return finalPath, nil
}

// progressWriter counts transferred bytes and emits throttled progress
// events with throughput and ETA.
type progressWriter struct {
	worker   *Worker
	hymnID   string
	total    int64
	loaded   int64
	started  time.Time
	lastEmit time.Time
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.loaded += int64(len(b))
	if time.Since(p.lastEmit) >= progressInterval {
		p.emit(false)
	}
	return len(b), nil
}

func (p *progressWriter) emit(final bool) {
	if p.worker.onProgress == nil {
		return
	}
	p.lastEmit = time.Now()

	prog := Progress{
		HymnID:      p.hymnID,
		BytesLoaded: p.loaded,
		BytesTotal:  p.total,
	}
	if final {
		prog.Percent = 100
		if prog.BytesTotal <= 0 {
			prog.BytesTotal = p.loaded
		}
	} else if p.total > 0 {
		prog.Percent = int(p.loaded * 100 / p.total)
	}

	elapsed := time.Since(p.started).Seconds()
	if elapsed > 0 {
		prog.BytesPerSec = float64(p.loaded) / elapsed
		if !final && p.total > p.loaded && prog.BytesPerSec > 0 {
			prog.ETA = time.Duration(float64(p.total-p.loaded)/prog.BytesPerSec) * time.Second
		}
	}

	p.worker.onProgress(prog)
}
