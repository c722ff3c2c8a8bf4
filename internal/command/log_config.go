package command

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joeycumines/shopdb/internal/config"
	"github.com/joeycumines/shopdb/internal/logging"
)

// LogSettings is the resolved logging configuration.
type LogSettings struct {
	Level     slog.Level
	File      string
	MaxSizeMB int
	MaxFiles  int
	Verbose   bool
}

// ResolveLogSettings reads the log.* and verbose options, env overrides
// included. A nil cfg yields the defaults.
func ResolveLogSettings(cfg *config.Config) (LogSettings, error) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	schema := config.DefaultSchema()

	level, err := logging.ParseLevel(schema.Resolve(cfg, config.KeyLogLevel))
	if err != nil {
		return LogSettings{}, err
	}
	ls := LogSettings{
		Level:     level,
		File:      schema.ResolvePath(cfg, config.KeyLogFile),
		MaxSizeMB: schema.ResolveInt(cfg, config.KeyLogMaxSizeMB),
		MaxFiles:  schema.ResolveInt(cfg, config.KeyLogMaxFiles),
		Verbose:   schema.ResolveBool(cfg, config.KeyVerbose),
	}
	if ls.MaxSizeMB <= 0 {
		ls.MaxSizeMB = 10
	}
	// Zero MaxFiles is valid: the file is truncated on rotation.
	if ls.MaxFiles < 0 {
		ls.MaxFiles = 5
	}
	return ls, nil
}

// NewLogger builds the process logger from ls. Records go to stderr only
// when verbose, to the rotating log file when one is configured, and always
// to the returned buffer at warn level and above. The returned closer is
// never nil.
func NewLogger(ls LogSettings, stderr io.Writer) (*slog.Logger, *logging.Buffer, io.Closer, error) {
	opts := logging.Options{Level: ls.Level, BufferSize: 100}
	if ls.Verbose {
		opts.Stderr = stderr
	}
	var closer io.Closer = nopCloser{}
	if ls.File != "" {
		f, err := logging.OpenRotatingFile(ls.File, ls.MaxSizeMB, ls.MaxFiles)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open log file %s: %w", ls.File, err)
		}
		opts.File = f
		closer = f
	}
	logger, buf := logging.New(opts)
	return logger, buf, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
