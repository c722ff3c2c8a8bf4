package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/shopdb/internal/config"
)

func newTestRegistry(env *Env) *Registry {
	r := NewRegistry()
	r.Register(NewHelpCommand(r))
	r.Register(NewVersionCommand("1.2.3"))
	r.Register(NewSaveCommand(env))
	r.Register(NewOrderCommand(env))
	return r
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t)
	r := newTestRegistry(env)

	require.Equal(t, []string{"help", "order", "save", "version"}, r.List())
	cmd, err := r.Get("save")
	require.NoError(t, err)
	require.Equal(t, "save", cmd.Name())
	_, err = r.Get("nope")
	require.EqualError(t, err, "command not found: nope")
}

func TestHelpCommand(t *testing.T) {
	t.Parallel()
	env, _ := newTestEnv(t)
	r := newTestRegistry(env)
	help, err := r.Get("help")
	require.NoError(t, err)

	out, _, err := execute(t, help)
	require.NoError(t, err)
	require.Contains(t, out, "Usage: shopdb <command>")
	require.Contains(t, out, "  save ")
	require.Contains(t, out, "Durably replace the database content")

	out, _, err = execute(t, help, "save")
	require.NoError(t, err)
	require.Contains(t, out, "Usage: save [-db path] [file|-]")
	require.Contains(t, out, "Flags:")
	require.Contains(t, out, "-db")

	out, _, err = execute(t, help, "version")
	require.NoError(t, err)
	require.NotContains(t, out, "Flags:")

	_, stderr, err := execute(t, help, "bogus")
	require.Error(t, err)
	require.Contains(t, stderr, "Unknown command: bogus")
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	out, _, err := execute(t, NewVersionCommand("1.2.3"))
	require.NoError(t, err)
	require.Equal(t, "shopdb version 1.2.3\n", out)

	_, _, err = execute(t, NewVersionCommand("1.2.3"), "extra")
	require.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	t.Setenv("SHOPDB_LOG_LEVEL", "")
	os.Unsetenv("SHOPDB_LOG_LEVEL")
	t.Setenv("SHOPDB_DATABASE", "")
	os.Unsetenv("SHOPDB_DATABASE")
	path := filepath.Join(t.TempDir(), "config")
	cfg := config.NewConfig()

	out, _, err := execute(t, NewConfigCommand(cfg, path), "snapshot.prefix")
	require.NoError(t, err)
	require.Equal(t, "snapshot.prefix: backup_shop\n", out)

	out, _, err = execute(t, NewConfigCommand(cfg, path), "snapshot.prefix", "oficina")
	require.NoError(t, err)
	require.Equal(t, "Set configuration: snapshot.prefix = oficina\n", out)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "snapshot.prefix oficina", string(data))

	out, _, err = execute(t, NewConfigCommand(cfg, path), "snapshot.prefix")
	require.NoError(t, err)
	require.Equal(t, "snapshot.prefix: oficina\n", out)

	out, _, err = execute(t, NewConfigCommand(cfg, path), "database.path")
	require.NoError(t, err)
	require.Equal(t, "database.path: \n", out)

	out, _, err = execute(t, NewConfigCommand(cfg, path), "nothing.here")
	require.NoError(t, err)
	require.Equal(t, "Configuration key 'nothing.here' not found\n", out)

	_, stderr, err := execute(t, NewConfigCommand(cfg, path), "nothing.here", "x")
	require.NoError(t, err)
	require.Contains(t, stderr, `"nothing.here" is not a known option`)

	out, _, err = execute(t, NewConfigCommand(cfg, path), "validate")
	require.NoError(t, err)
	require.Contains(t, out, "Configuration has 1 issue(s):")

	out, _, err = execute(t, NewConfigCommand(cfg, path), "-all")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Global configuration:\n  nothing.here: x\n  snapshot.prefix: oficina\n"), out)

	out, _, err = execute(t, NewConfigCommand(cfg, path), "schema")
	require.NoError(t, err)
	require.Contains(t, out, "Global Options:")

	_, _, err = execute(t, NewConfigCommand(cfg, path), "a", "b", "c")
	require.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "config")

	out, _, err := execute(t, NewInitCommand(path))
	require.NoError(t, err)
	require.Equal(t, "Initialized shopdb configuration at: "+path+"\n", out)

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Warnings)
	require.Equal(t, "backup_shop", cfg.Global[config.KeySnapshotPrefix])

	out, _, err = execute(t, NewInitCommand(path))
	require.NoError(t, err)
	require.Contains(t, out, "Configuration already exists")

	require.NoError(t, os.WriteFile(path, []byte("verbose true\n"), 0o644))
	_, _, err = execute(t, NewInitCommand(path), "-force")
	require.NoError(t, err)
	backup, err := os.ReadFile(filepath.Join(filepath.Dir(path), "config.bak"))
	require.NoError(t, err)
	require.Equal(t, "verbose true\n", string(backup))
}
