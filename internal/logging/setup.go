package logging

import (
	"io"
	"log/slog"
)

// Options configures New.
type Options struct {
	// Level is the minimum level written to Stderr and File.
	Level slog.Level
	// Stderr receives human-readable text records; nil disables it.
	Stderr io.Writer
	// File, when non-nil, receives JSON records.
	File io.Writer
	// BufferSize bounds the in-memory record buffer.
	BufferSize int
}

// New builds a logger writing to the configured sinks plus an in-memory
// Buffer that captures warnings and errors regardless of Level.
func New(opts Options) (*slog.Logger, *Buffer) {
	buf := NewBuffer(slog.LevelWarn, opts.BufferSize)
	handlers := []slog.Handler{buf}
	if opts.Stderr != nil {
		handlers = append(handlers, slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{Level: opts.Level}))
	}
	if opts.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.File, &slog.HandlerOptions{Level: opts.Level}))
	}
	return slog.New(Tee(handlers...)), buf
}
