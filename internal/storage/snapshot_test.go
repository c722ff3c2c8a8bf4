package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSnapshotName(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, time.March, 7, 9, 5, 59, 0, time.UTC)
	require.Equal(t, "backup_2024-03-07_09-05.json", SnapshotName("backup", at))
}

func TestSnapshot_CreatesDirectoryAndFile(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	dir := filepath.Join(t.TempDir(), "snapshots", "daily")
	at := time.Date(2024, time.December, 31, 23, 59, 0, 0, time.UTC)

	path, err := s.Snapshot(dir, "shop", `{"ledger":[]}`, at)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "shop_2024-12-31_23-59.json"), path)
	require.Equal(t, `{"ledger":[]}`, readFile(t, path))

	path2, err := s.Snapshot(dir, "shop", `{"ledger":[1]}`, at.Add(30*time.Second))
	require.NoError(t, err)
	require.Equal(t, path, path2)
	require.Equal(t, `{"ledger":[1]}`, readFile(t, path))
	require.Equal(t, `{"ledger":[]}`, readFile(t, BackupPath(path)))
}

func TestSnapshot_MkdirFailure(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.True(t, s.Save(blocker, "x").Success)

	_, err := s.Snapshot(filepath.Join(blocker, "sub"), "shop", "{}", time.Now())
	stage, ok := StageOf(err)
	require.True(t, ok)
	require.Equal(t, StageMkdir, stage)
}
