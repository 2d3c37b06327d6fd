package cache

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Estimate implements Collaborator. Quota is the capacity of the
// filesystem holding the cache directory; used bytes count only cached
// audio files. Capacity is advisory, nothing enforces it.
func (w *Worker) Estimate() (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(w.dir, &st); err != nil {
		return Usage{}, fmt.Errorf("statfs cache dir: %w", err)
	}

	used, err := w.usedBytes()
	if err != nil {
		return Usage{}, err
	}

	bsize := st.Bsize
	return Usage{
		QuotaBytes:     int64(st.Blocks) * bsize,
		UsedBytes:      used,
		AvailableBytes: int64(st.Bavail) * bsize,
	}, nil
}

func (w *Worker) usedBytes() (int64, error) {
	var total int64
	err := filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk cache dir: %w", err)
	}
	return total, nil
}
