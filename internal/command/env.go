package command

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/joeycumines/shopdb/internal/config"
	"github.com/joeycumines/shopdb/internal/logging"
	"github.com/joeycumines/shopdb/internal/storage"
)

// Env is the state shared by the database commands.
type Env struct {
	Config *config.Config
	Schema *config.ConfigSchema
	Logger *slog.Logger
	// Warnings captures warnings raised while a command runs, so they can
	// be echoed to the user after it returns.
	Warnings *logging.Buffer
	Stdin    io.Reader
	Now      func() time.Time
}

// NewEnv returns an Env with defaults for every field not set by the caller.
func NewEnv(cfg *config.Config, logger *slog.Logger, warnings *logging.Buffer) *Env {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if warnings == nil {
		warnings = logging.NewBuffer(slog.LevelWarn, 0)
	}
	if logger == nil {
		logger = slog.New(warnings)
	}
	return &Env{
		Config:   cfg,
		Schema:   config.DefaultSchema(),
		Logger:   logger,
		Warnings: warnings,
		Stdin:    os.Stdin,
		Now:      time.Now,
	}
}

// Store returns a storage.Store configured from the environment.
func (e *Env) Store() *storage.Store {
	return storage.New(
		storage.WithLogger(e.Logger),
		storage.WithDirSync(e.Schema.ResolveBool(e.Config, config.KeySyncDir)),
	)
}

// DatabasePath resolves the database location: the flag value if given,
// then database.path, then ~/.shopdb/database.json.
func (e *Env) DatabasePath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p := e.Schema.ResolvePath(e.Config, config.KeyDatabasePath); p != "" {
		return p, nil
	}
	return config.DefaultDatabasePath()
}

// ReadInput returns the content of path, or of stdin if path is "" or "-".
// An interactive stdin is rejected rather than waited on.
func (e *Env) ReadInput(path string) (string, error) {
	if path == "" || path == "-" {
		if isTerminal(e.Stdin) {
			return "", errors.New("no input: pass a file or pipe content to stdin")
		}
		b, err := io.ReadAll(e.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(b), nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// FlushWarnings prints captured warnings as "warning:" lines and clears
// them. Errors are left to the command's own error return.
func (e *Env) FlushWarnings(w io.Writer) {
	for _, entry := range e.Warnings.Warnings() {
		if entry.Level >= slog.LevelError {
			continue
		}
		_, _ = fmt.Fprintf(w, "warning: %s%s\n", entry.Message, formatAttrs(entry.Attrs))
	}
	e.Warnings.Reset()
}

func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%q", k, attrs[k])
	}
	return b.String()
}

// printResult writes r.Message to stdout, or returns it as an error.
func printResult(r storage.Result, stdout io.Writer) error {
	if !r.Success {
		return errors.New(r.Message)
	}
	_, _ = fmt.Fprintln(stdout, r.Message)
	return nil
}
