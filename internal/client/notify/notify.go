// Package notify delivers short user-facing messages (the console's
// equivalent of toasts).
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
}

// Console prints notifications as single lines. Errors are logged too.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	logger logging.Logger
}

func NewConsole(w io.Writer, logger logging.Logger) *Console {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Console{w: w, logger: logger}
}

func (c *Console) Success(ctx context.Context, msg string) { c.write(ctx, LevelSuccess, msg) }
func (c *Console) Info(ctx context.Context, msg string)    { c.write(ctx, LevelInfo, msg) }

func (c *Console) Error(ctx context.Context, msg string) {
	c.logger.Error(ctx, "notification", "message", msg)
	c.write(ctx, LevelError, msg)
}

func (c *Console) write(ctx context.Context, level Level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", level, msg); err != nil {
		c.logger.Error(ctx, "failed to write notification", "error", err)
	}
}

// Entry is one recorded notification.
type Entry struct {
	Level   Level
	Message string
}

// Recorder keeps notifications in memory. It backs tests and any caller
// that wants to inspect what was shown.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Success(ctx context.Context, msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(ctx context.Context, msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Info(ctx context.Context, msg string)    { r.add(LevelInfo, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Messages returns the recorded messages of one level.
func (r *Recorder) Messages(level Level) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
