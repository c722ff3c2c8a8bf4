package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Entry is a single record captured by a Buffer.
type Entry struct {
	Time    time.Time         `json:"time"`
	Level   slog.Level        `json:"level"`
	Message string            `json:"message"`
	Attrs   map[string]string `json:"attrs"`
}

// Buffer is an slog.Handler that keeps the most recent records in memory.
// Commands use it to echo warnings raised by the storage layer back to the
// user next to the operation result.
type Buffer struct {
	store *bufferStore
	level slog.Leveler
	attrs []slog.Attr
	group string
}

type bufferStore struct {
	mu      sync.RWMutex
	entries []Entry
	maxSize int
}

// NewBuffer returns a Buffer retaining up to maxEntries records at or above
// level. A non-positive maxEntries defaults to 1000.
func NewBuffer(level slog.Leveler, maxEntries int) *Buffer {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &Buffer{
		store: &bufferStore{entries: make([]Entry, 0, 16), maxSize: maxEntries},
		level: level,
	}
}

// Enabled implements slog.Handler.
func (b *Buffer) Enabled(_ context.Context, level slog.Level) bool {
	return level >= b.level.Level()
}

// Handle implements slog.Handler.
func (b *Buffer) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]string, record.NumAttrs()+len(b.attrs))
	for _, a := range b.attrs {
		attrs[a.Key] = a.Value.String()
	}
	record.Attrs(func(a slog.Attr) bool {
		attrs[b.key(a.Key)] = a.Value.String()
		return true
	})

	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.entries = append(b.store.entries, Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	if len(b.store.entries) > b.store.maxSize {
		b.store.entries = b.store.entries[len(b.store.entries)-b.store.maxSize:]
	}
	return nil
}

// WithAttrs implements slog.Handler. The returned handler shares storage
// with b.
func (b *Buffer) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *b
	c.attrs = make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	c.attrs = append(c.attrs, b.attrs...)
	for _, a := range attrs {
		c.attrs = append(c.attrs, slog.Attr{Key: b.key(a.Key), Value: a.Value})
	}
	return &c
}

// WithGroup implements slog.Handler. Group names prefix attribute keys.
func (b *Buffer) WithGroup(name string) slog.Handler {
	if name == "" {
		return b
	}
	c := *b
	c.group = b.key(name)
	return &c
}

func (b *Buffer) key(k string) string {
	if b.group == "" {
		return k
	}
	return b.group + "." + k
}

// Entries returns a copy of all retained records, oldest first.
func (b *Buffer) Entries() []Entry {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	out := make([]Entry, len(b.store.entries))
	copy(out, b.store.entries)
	return out
}

// Warnings returns retained records at level Warn or above.
func (b *Buffer) Warnings() []Entry {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	var out []Entry
	for _, e := range b.store.entries {
		if e.Level >= slog.LevelWarn {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all retained records.
func (b *Buffer) Reset() {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.entries = b.store.entries[:0]
}

var _ slog.Handler = (*Buffer)(nil)
