package storage

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/shopdb/internal/logging"
)

func newTestStore(t *testing.T) (*Store, *logging.Buffer) {
	t.Helper()
	buf := logging.NewBuffer(slog.LevelDebug, 0)
	return New(WithLogger(slog.New(buf))), buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSaveLoad_Scenario(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")

	res := s.Save(path, `{"a":1}`)
	require.True(t, res.Success, res.Message)
	require.Contains(t, res.Message, path)
	require.Equal(t, `{"a":1}`, s.Load(path))

	_, err := os.Stat(BackupPath(path))
	require.True(t, os.IsNotExist(err), "fresh save must not create a backup")

	res = s.Save(path, `{"a":2}`)
	require.True(t, res.Success, res.Message)
	require.Equal(t, `{"a":1}`, readFile(t, filepath.Join(filepath.Dir(path), "db.bak")))
	require.Equal(t, `{"a":2}`, readFile(t, path))

	_, err = os.Stat(StagingPath(path))
	require.True(t, os.IsNotExist(err), "staging file must be consumed by the rename")
}

func TestSave_RoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	dir := t.TempDir()

	for name, content := range map[string]string{
		"ascii":     "hello",
		"multibyte": "{\"cliente\":\"João\",\"veículo\":\"Fiat Uno – Prata\",\"emoji\":\"🔧\"}",
		"newlines":  "line one\nline two\r\nline three\n",
		"large":     strings.Repeat("0123456789abcdef", 1<<14),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".json")
			res := s.Save(path, content)
			require.True(t, res.Success, res.Message)
			require.Equal(t, content, s.Load(path))
		})
	}
}

func TestSave_Idempotent(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")

	first := s.Save(path, `{"x":true}`)
	second := s.Save(path, `{"x":true}`)

	require.True(t, first.Success, first.Message)
	require.True(t, second.Success, second.Message)
	require.Equal(t, `{"x":true}`, readFile(t, path))
	require.Equal(t, `{"x":true}`, readFile(t, BackupPath(path)))
}

func TestSave_BackupFailureIsOnlyAWarning(t *testing.T) {
	t.Parallel()
	s, buf := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	// A directory where the backup should go makes the copy fail.
	require.NoError(t, os.Mkdir(BackupPath(path), 0o755))

	res := s.Save(path, "new")

	require.True(t, res.Success, res.Message)
	require.Equal(t, "new", readFile(t, path))
	warnings := buf.Warnings()
	require.Len(t, warnings, 1)
	require.Equal(t, "backup copy failed", warnings[0].Message)
	require.Equal(t, path, warnings[0].Attrs["path"])
}

func TestSave_CreateFailureLeavesPrimary(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, os.Mkdir(StagingPath(path), 0o755))

	res := s.Save(path, "new")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageCreate))
	require.Equal(t, "old", readFile(t, path))
}

func TestSave_RenameFailureLeavesStaging(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")
	// A non-empty directory cannot be replaced by a file.
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))

	res := s.Save(path, "new")

	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageRename))
	require.Equal(t, "new", readFile(t, StagingPath(path)))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestWrite_StageErrors(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	dir := t.TempDir()

	err := s.Write("", "x")
	require.ErrorIs(t, err, ErrEmptyPath)

	for _, name := range []string{"db.tmp", "db.bak", "db.BAK"} {
		err := s.Write(filepath.Join(dir, name), "x")
		require.ErrorIs(t, err, ErrReservedExtension, name)
		stage, ok := StageOf(err)
		require.True(t, ok)
		require.Equal(t, StagePath, stage)
	}

	err = s.Write(filepath.Join(dir, "missing", "db.json"), "x")
	var se *StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, StageCreate, se.Stage)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Fallback(t *testing.T) {
	t.Parallel()
	s, buf := newTestStore(t)
	dir := t.TempDir()

	content, state := s.LoadState(filepath.Join(dir, "absent.json"))
	require.Equal(t, EmptyDocument, content)
	require.Equal(t, Missing, state)
	require.Empty(t, buf.Warnings())

	// A directory exists but cannot be read as a file.
	content, state = s.LoadState(dir)
	require.Equal(t, EmptyDocument, content)
	require.Equal(t, Unreadable, state)
	require.Len(t, buf.Warnings(), 1)

	path := filepath.Join(dir, "db.json")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xfe raw"), 0o644))
	content, state = s.LoadState(path)
	require.Equal(t, "\xff\xfe raw", content)
	require.Equal(t, Loaded, state)
	require.Equal(t, "{}", s.Load(filepath.Join(dir, "nope")))
}

func TestLoadState_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "loaded", Loaded.String())
	require.Equal(t, "missing", Missing.String())
	require.Equal(t, "unreadable", Unreadable.String())
	require.Equal(t, "unknown", LoadState(42).String())
}

func TestRestore(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	path := filepath.Join(t.TempDir(), "db.json")

	res := s.Restore(path)
	require.False(t, res.Success)
	require.Contains(t, res.Message, string(StageReadBackup))

	require.True(t, s.Save(path, "good").Success)
	require.True(t, s.Save(path, "corrupt").Success)

	res = s.Restore(path)
	require.True(t, res.Success, res.Message)
	require.Equal(t, "good", readFile(t, path))
	require.Equal(t, "good", readFile(t, BackupPath(path)))
}

func TestPackageLevelSaveLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "db.json")
	require.True(t, Save(path, "[]").Success)
	require.Equal(t, "[]", Load(path))
}

func TestWithDirSyncDisabled(t *testing.T) {
	t.Parallel()
	s := New(WithDirSync(false), WithLogger(slog.New(logging.NewBuffer(slog.LevelDebug, 0))))
	path := filepath.Join(t.TempDir(), "db.json")
	require.True(t, s.Save(path, "ok").Success)
	require.Equal(t, "ok", s.Load(path))
}
