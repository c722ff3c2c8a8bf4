package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// RotatingFile is an append-only log file that rotates by size. When a write
// would push the file past its limit, app.log becomes app.log.1, app.log.1
// becomes app.log.2, and so on; at most keep numbered files are retained.
//
// Safe for concurrent use.
type RotatingFile struct {
	mu    sync.Mutex
	path  string
	limit int64
	keep  int
	size  int64
	file  *os.File
}

// OpenRotatingFile opens (or creates) path for appending. maxSizeMB is
// clamped to at least 1 and maxFiles to at least 0; with 0 the file is simply
// truncated on rotation.
func OpenRotatingFile(path string, maxSizeMB, maxFiles int) (*RotatingFile, error) {
	if maxSizeMB < 1 {
		maxSizeMB = 1
	}
	if maxFiles < 0 {
		maxFiles = 0
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("log file: mkdir %s: %w", dir, err)
		}
	}
	r := &RotatingFile{path: path, limit: int64(maxSizeMB) << 20, keep: maxFiles}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("log file: open %s: %w", r.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("log file: stat %s: %w", r.path, err)
	}
	r.file, r.size = f, info.Size()
	return nil
}

// Write appends p, rotating first if p would not fit. A single write is
// never split across files.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return 0, os.ErrClosed
	}
	if r.size > 0 && r.size+int64(len(p)) > r.limit {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("log file: rotate: %w", err)
		}
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the current file. Further writes fail with os.ErrClosed.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate must be called with r.mu held.
func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	r.file = nil

	if r.keep == 0 {
		_ = os.Remove(r.path)
	} else {
		_ = os.Remove(r.numbered(r.keep))
		for n := r.keep - 1; n >= 1; n-- {
			_ = os.Rename(r.numbered(n), r.numbered(n+1))
		}
		_ = os.Rename(r.path, r.numbered(1))
	}
	return r.open()
}

func (r *RotatingFile) numbered(n int) string {
	return r.path + "." + strconv.Itoa(n)
}

var _ io.WriteCloser = (*RotatingFile)(nil)
