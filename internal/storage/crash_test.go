package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests swap package-level hooks and must not run in parallel.

func TestWrite_CrashBeforeRenameKeepsOldContent(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.True(t, s.Save(path, "C1").Success)

	SetTestHookCrashBeforeRename(func() { panic("simulated crash") })
	t.Cleanup(func() { SetTestHookCrashBeforeRename(nil) })

	func() {
		defer func() {
			require.Equal(t, "simulated crash", recover())
		}()
		_ = s.Write(path, "C2")
	}()

	require.Equal(t, "C1", readFile(t, path))
	require.Equal(t, "C2", readFile(t, StagingPath(path)), "flushed staging file is left for inspection")

	SetTestHookCrashBeforeRename(nil)
	require.True(t, s.Save(path, "C2").Success)
	require.Equal(t, "C2", readFile(t, path))
	require.Equal(t, "C1", readFile(t, BackupPath(path)))
}

func TestSave_SyncFailure(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	orig := syncFile
	t.Cleanup(func() { syncFile = orig })
	failing := errors.New("disk on fire")
	syncFile = func(f *os.File) error {
		if f.Name() == StagingPath(path) {
			return failing
		}
		return orig(f)
	}

	res := s.Save(path, "new")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageSync))
	require.Contains(t, res.Message, "disk on fire")
	require.Equal(t, "old", readFile(t, path))
	require.Equal(t, "old", readFile(t, BackupPath(path)))
	require.Equal(t, "new", readFile(t, StagingPath(path)))
}

func TestSave_InjectedRenameFailure(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	orig := renameFile
	t.Cleanup(func() { renameFile = orig })
	renameFile = func(string, string) error { return errors.New("EXDEV") }

	res := s.Save(path, "new")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageRename))
	require.Equal(t, "old", readFile(t, path))
}

func TestSave_WriteFailure(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	orig := writeString
	t.Cleanup(func() { writeString = orig })
	writeString = func(f *os.File, s string) (int, error) {
		n, _ := f.WriteString(s[:len(s)/2])
		return n, errors.New("no space left on device")
	}

	res := s.Save(path, "new content")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageWrite))
	require.Contains(t, res.Message, "no space left on device")
	require.Equal(t, "old", readFile(t, path))
	require.Equal(t, "old", readFile(t, BackupPath(path)))
}

func TestSave_CloseFailure(t *testing.T) {
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	orig := closeFile
	t.Cleanup(func() { closeFile = orig })
	closeFile = func(f *os.File) error {
		if err := f.Close(); err != nil {
			return err
		}
		if f.Name() == StagingPath(path) {
			return errors.New("deferred write error")
		}
		return nil
	}

	res := s.Save(path, "new")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageClose))
	require.Equal(t, "old", readFile(t, path))
	require.Equal(t, "new", readFile(t, StagingPath(path)))
}

func TestSave_DistinctStageMessages(t *testing.T) {
	msgs := map[string]bool{}
	for _, stage := range []Stage{StageCreate, StageWrite, StageSync, StageClose, StageRename} {
		msg := (&StageError{Stage: stage, Path: "db.tmp", Err: errors.New("x")}).Error()
		require.False(t, msgs[msg], "duplicate message %q", msg)
		msgs[msg] = true
	}
}
