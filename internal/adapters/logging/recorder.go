// Package logging provides implementations of the ports.Logger interface.
// ConsoleLogger backs the CLI with text or JSON output on stderr;
// NopLogger and RecordingLogger serve library defaults and tests.
package logging

import (
	"context"
	"sync"

	"github.com/lightdash/lightdash-cli/internal/ports"
)

// NopLogger discards all messages.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger creates a new no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelInfo}
}

func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}
func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field)  {}
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field)  {}
func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns itself.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger { return l }

// Level returns the log level.
func (l *NopLogger) Level() ports.Level { return l.level }

// SetLevel sets the log level.
func (l *NopLogger) SetLevel(level ports.Level) { l.level = level }

// Entry is a single message captured by RecordingLogger.
type Entry struct {
	Level   ports.Level
	Message string
	Fields  []ports.Field
}

// Field returns the value of the named field and whether it was present.
func (e Entry) Field(key string) (any, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i].Value, true
		}
	}
	return nil, false
}

// RecordingLogger keeps every entry at or above its level in memory.
// Loggers derived with With share the parent's entry list.
type RecordingLogger struct {
	store  *entryStore
	fields []ports.Field
}

type entryStore struct {
	mu      sync.Mutex
	level   ports.Level
	entries []Entry
}

// NewRecordingLogger creates a recorder that captures every level.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{store: &entryStore{level: ports.LevelDebug}}
}

func (l *RecordingLogger) Debug(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelDebug, msg, fields)
}

func (l *RecordingLogger) Info(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelInfo, msg, fields)
}

func (l *RecordingLogger) Warn(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelWarn, msg, fields)
}

func (l *RecordingLogger) Error(_ context.Context, msg string, fields ...ports.Field) {
	l.record(ports.LevelError, msg, fields)
}

// With returns a recorder that adds fields to every entry.
func (l *RecordingLogger) With(fields ...ports.Field) ports.Logger {
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &RecordingLogger{store: l.store, fields: merged}
}

// Level returns the minimum recorded level.
func (l *RecordingLogger) Level() ports.Level {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.store.level
}

// SetLevel sets the minimum recorded level.
func (l *RecordingLogger) SetLevel(level ports.Level) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.level = level
}

// Entries returns a copy of the captured entries.
func (l *RecordingLogger) Entries() []Entry {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	out := make([]Entry, len(l.store.entries))
	copy(out, l.store.entries)
	return out
}

// EntriesAt returns the captured entries with exactly the given level.
func (l *RecordingLogger) EntriesAt(level ports.Level) []Entry {
	var out []Entry
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *RecordingLogger) record(level ports.Level, msg string, fields []ports.Field) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	if level < l.store.level {
		return
	}
	all := make([]ports.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.store.entries = append(l.store.entries, Entry{Level: level, Message: msg, Fields: all})
}

var (
	_ ports.Logger = (*NopLogger)(nil)
	_ ports.Logger = (*RecordingLogger)(nil)
)
