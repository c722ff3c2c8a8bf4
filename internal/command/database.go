package command

import (
	"flag"
	"fmt"
	"io"

	"github.com/joeycumines/shopdb/internal/config"
	"github.com/joeycumines/shopdb/internal/storage"
)

// dbCommand is embedded by commands operating on the database file.
type dbCommand struct {
	*BaseCommand
	env    *Env
	dbPath string
}

func newDBCommand(env *Env, name, description, usage string) dbCommand {
	return dbCommand{BaseCommand: NewBaseCommand(name, description, usage), env: env}
}

func (c *dbCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.dbPath, "db", "", "Database file (overrides database.path)")
}

func (c *dbCommand) path() (string, error) {
	p, err := c.env.DatabasePath(c.dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return p, nil
}

// SaveCommand replaces the database with new content.
type SaveCommand struct {
	dbCommand
}

// NewSaveCommand creates the save command.
func NewSaveCommand(env *Env) *SaveCommand {
	return &SaveCommand{newDBCommand(env, "save",
		"Durably replace the database content, keeping the previous version as a backup",
		"save [-db path] [file|-]")}
}

// Execute reads the new content from the named file, or stdin.
func (c *SaveCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path, err := c.path()
	if err != nil {
		return err
	}
	var input string
	if len(args) == 1 {
		input = args[0]
	}
	content, err := c.env.ReadInput(input)
	if err != nil {
		return err
	}
	return printResult(c.env.Store().Save(path, content), stdout)
}

// LoadCommand prints the database content.
type LoadCommand struct {
	dbCommand
	state bool
}

// NewLoadCommand creates the load command.
func NewLoadCommand(env *Env) *LoadCommand {
	return &LoadCommand{dbCommand: newDBCommand(env, "load",
		"Print the database content, or {} if it cannot be read",
		"load [-db path] [-state]")}
}

func (c *LoadCommand) SetupFlags(fs *flag.FlagSet) {
	c.dbCommand.SetupFlags(fs)
	fs.BoolVar(&c.state, "state", false, "Print loaded, missing or unreadable instead of the content")
}

// Execute prints the content, or its load state with -state.
func (c *LoadCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	path, err := c.path()
	if err != nil {
		return err
	}
	content, state := c.env.Store().LoadState(path)
	if c.state {
		_, _ = fmt.Fprintln(stdout, state)
		return nil
	}
	_, _ = io.WriteString(stdout, content)
	return nil
}

// RestoreCommand promotes the backup back into the database.
type RestoreCommand struct {
	dbCommand
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(env *Env) *RestoreCommand {
	return &RestoreCommand{newDBCommand(env, "restore",
		"Replace the database with its backup copy",
		"restore [-db path]")}
}

func (c *RestoreCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	path, err := c.path()
	if err != nil {
		return err
	}
	return printResult(c.env.Store().Restore(path), stdout)
}

// SnapshotCommand copies the database into a timestamped file.
type SnapshotCommand struct {
	dbCommand
	dir    string
	prefix string
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(env *Env) *SnapshotCommand {
	return &SnapshotCommand{dbCommand: newDBCommand(env, "snapshot",
		"Write a timestamped copy of the database",
		"snapshot [-db path] [-dir folder] [-prefix name]")}
}

func (c *SnapshotCommand) SetupFlags(fs *flag.FlagSet) {
	c.dbCommand.SetupFlags(fs)
	fs.StringVar(&c.dir, "dir", "", "Snapshot folder (overrides snapshot.dir)")
	fs.StringVar(&c.prefix, "prefix", "", "File name prefix (overrides snapshot.prefix)")
}

func (c *SnapshotCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	path, err := c.path()
	if err != nil {
		return err
	}
	dir := c.dir
	if dir == "" {
		dir = c.env.Schema.ResolvePath(c.env.Config, config.KeySnapshotDir)
	}
	prefix := c.prefix
	if prefix == "" {
		prefix = c.env.Schema.Resolve(c.env.Config, config.KeySnapshotPrefix)
	}

	store := c.env.Store()
	content, state := store.LoadState(path)
	if state != storage.Loaded {
		return fmt.Errorf("cannot snapshot %s: database %s", path, state)
	}
	out, err := store.Snapshot(dir, prefix, content, c.env.Now())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "snapshot saved to: %s\n", out)
	return nil
}
