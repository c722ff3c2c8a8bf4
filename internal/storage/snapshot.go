package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SnapshotLayout is the time layout embedded in snapshot file names.
const SnapshotLayout = "2006-01-02_15-04"

// SnapshotName returns the file name of a snapshot taken at t.
func SnapshotName(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, t.Format(SnapshotLayout))
}

// Snapshot writes a full, timestamped copy of content into dir (created if
// absent) and returns its path. Two snapshots in the same minute share a
// name; the later one replaces the earlier, whose content moves to the
// snapshot's own backup sibling.
func (s *Store) Snapshot(dir, prefix, content string, t time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &StageError{Stage: StageMkdir, Path: dir, Err: err}
	}
	path := filepath.Join(dir, SnapshotName(prefix, t))
	if err := s.Write(path, content); err != nil {
		return "", err
	}
	s.logger.Info("snapshot written", "path", path)
	return path, nil
}
