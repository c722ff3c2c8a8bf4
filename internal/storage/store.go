package storage

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// EmptyDocument is returned by Load when the primary file cannot be read.
const EmptyDocument = "{}"

const defaultFilePerm os.FileMode = 0o644

// testHookCrashBeforeRename is a test-only hook to simulate a crash in the
// window between flushing the staging file and renaming it.
var testHookCrashBeforeRename func()

// SetTestHookCrashBeforeRename sets the test hook for crash simulation.
// This is only for testing purposes.
func SetTestHookCrashBeforeRename(hook func()) {
	testHookCrashBeforeRename = hook
}

var (
	writeString = func(f *os.File, s string) (int, error) { return f.WriteString(s) }
	syncFile    = func(f *os.File) error { return f.Sync() }
	closeFile   = func(f *os.File) error { return f.Close() }
	renameFile  = atomicRename
)

// LoadState describes where the content returned by LoadState came from.
type LoadState int

const (
	// Loaded means the content was read from the primary file.
	Loaded LoadState = iota
	// Missing means the primary file does not exist (typically first run).
	Missing
	// Unreadable means the primary file exists but could not be read.
	Unreadable
)

func (s LoadState) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Missing:
		return "missing"
	case Unreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Store implements the durable save and load protocol. It holds no mutable
// state; the zero value is not usable, use New.
type Store struct {
	logger  *slog.Logger
	syncDir bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger receiving non-fatal diagnostics, such as a
// failed backup copy.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithDirSync controls whether the parent directory is flushed after the
// rename. Enabled by default.
func WithDirSync(enabled bool) Option {
	return func(s *Store) { s.syncDir = enabled }
}

// New returns a Store using slog.Default unless WithLogger is given.
func New(opts ...Option) *Store {
	s := &Store{syncDir: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Save replaces the content of path using the durable protocol and reports
// the outcome. It never panics or returns an error.
func Save(path, content string) Result { return New().Save(path, content) }

// Load returns the content of path, or EmptyDocument if it cannot be read.
func Load(path string) string { return New().Load(path) }

// Save replaces the content of path and reports the outcome as a Result.
// A failed backup copy is logged as a warning and does not fail the save.
func (s *Store) Save(path, content string) Result {
	if err := s.Write(path, content); err != nil {
		s.logger.Error("database save failed", "path", path, "error", err)
		return Failed(err)
	}
	return Succeeded("database saved: " + path)
}

// Write is Save for internal callers, returning a *StageError on failure.
func (s *Store) Write(path, content string) error {
	staging, backup, err := siblingPaths(path)
	if err != nil {
		return &StageError{Stage: StagePath, Path: path, Err: err}
	}

	perm := defaultFilePerm
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
		if err := copyFile(path, backup, perm); err != nil {
			s.logger.Warn("backup copy failed", "path", path, "backup", backup, "error", err)
		}
	}

	return s.commit(path, staging, content, perm)
}

// Restore promotes the backup of path back into the primary file. The
// backup itself is left untouched.
func (s *Store) Restore(path string) Result {
	staging, backup, err := siblingPaths(path)
	if err != nil {
		return Failed(&StageError{Stage: StagePath, Path: path, Err: err})
	}
	data, err := os.ReadFile(backup)
	if err != nil {
		return Failed(&StageError{Stage: StageReadBackup, Path: backup, Err: err})
	}
	if err := s.commit(path, staging, string(data), defaultFilePerm); err != nil {
		s.logger.Error("database restore failed", "path", path, "error", err)
		return Failed(err)
	}
	return Succeeded("database restored from backup: " + backup)
}

// Load returns the content of path, or EmptyDocument on any failure.
func (s *Store) Load(path string) string {
	content, _ := s.LoadState(path)
	return content
}

// LoadState is Load, additionally reporting whether the file was missing or
// present but unreadable. The latter is logged as a warning.
func (s *Store) LoadState(path string) (string, LoadState) {
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		return string(b), Loaded
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Debug("database not found, using empty document", "path", path)
		return EmptyDocument, Missing
	default:
		s.logger.Warn("database unreadable, using empty document", "path", path, "error", err)
		return EmptyDocument, Unreadable
	}
}

// commit writes content to staging, flushes it, and renames it over path.
// On failure the staging file is left in place for inspection.
func (s *Store) commit(path, staging, content string, perm os.FileMode) error {
	f, err := os.OpenFile(staging, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return &StageError{Stage: StageCreate, Path: staging, Err: err}
	}
	if _, err := writeString(f, content); err != nil {
		_ = f.Close()
		return &StageError{Stage: StageWrite, Path: staging, Err: err}
	}
	// Without this the rename may reach the disk before the data does.
	if err := syncFile(f); err != nil {
		_ = f.Close()
		return &StageError{Stage: StageSync, Path: staging, Err: err}
	}
	if err := closeFile(f); err != nil {
		return &StageError{Stage: StageClose, Path: staging, Err: err}
	}

	if testHookCrashBeforeRename != nil {
		testHookCrashBeforeRename()
	}

	if err := renameFile(staging, path); err != nil {
		return &StageError{Stage: StageRename, Path: staging, Err: err}
	}

	if s.syncDir {
		if err := syncDir(filepath.Dir(path)); err != nil {
			s.logger.Warn("directory sync failed", "path", path, "error", err)
		}
	}
	s.logger.Debug("database written", "path", path, "bytes", len(content))
	return nil
}

// copyFile copies src over dst and flushes dst.
func copyFile(src, dst string, perm os.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return syncFile(out)
}
