// Package log provides the logging sink used by every other package in this module.
package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// LevelInterrupt sits between WARN and ERROR: interrupts are noteworthy but not themselves errors,
// the way the teacher reserves a custom level band via slog.Level arithmetic.
const LevelInterrupt = slog.Level(6)

// LogLevel is the process-wide minimum level, changeable at runtime the way the teacher's
// slog.LevelVar is.
var LogLevel = &slog.LevelVar{}

// Logger is the concrete logger every package in this module is built against. It wraps *slog.Logger
// and adds the Interrupt method the vm.Logger port requires.
type Logger struct {
	*slog.Logger
}

// Interrupt logs at LevelInterrupt.
func (l *Logger) Interrupt(msg string, args ...any) {
	l.Logger.Log(context.Background(), LevelInterrupt, msg, args...)
}

// New creates a Logger that writes to system.log (truncated) in dir, mirroring ERROR and INTERRUPT
// records to stdout. It satisfies vm.Logger.
func New(dir string) (*Logger, func() error, error) {
	path := dir + string(os.PathSeparator) + "system.log"

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log: opening %s: %w", path, err)
	}

	h := NewHandler(f)
	l := &Logger{Logger: slog.New(h)}

	return l, f.Close, nil
}

// NewFormattedLogger wraps an arbitrary writer, for tests and for the --quiet CLI mode where
// system.log isn't wanted.
func NewFormattedLogger(out io.Writer) *Logger {
	return &Logger{Logger: slog.New(NewHandler(out))}
}

// Handler implements slog.Handler, formatting each record as the single line:
//
//	YYYY-MM-DD HH:MM:SS [LEVEL] message key=value key=value...
//
// ERROR and INTERRUPT records are duplicated to os.Stdout.
type Handler struct {
	mut   *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{out: out, mut: new(sync.Mutex)}
}

// Enabled reports whether level is at or above the process-wide minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= LogLevel.Level()
}

func levelName(level slog.Level) string {
	switch {
	case level == LevelInterrupt:
		return "INTERRUPT"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Handle formats and writes one record.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	buf := bytes.NewBuffer(make([]byte, 0, 256))

	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fmt.Fprintf(buf, "%s [%s] %s", ts.Format("2006-01-02 15:04:05"), levelName(rec.Level), rec.Message)

	pairs := make([]string, 0, len(h.attrs)+rec.NumAttrs())

	for _, a := range h.attrs {
		pairs = append(pairs, formatAttr(a))
	}

	rec.Attrs(func(a slog.Attr) bool {
		pairs = append(pairs, formatAttr(a))
		return true
	})

	sort.Strings(pairs) // stable, deterministic ordering for a text log readers grep over

	for _, p := range pairs {
		fmt.Fprintf(buf, " %s", p)
	}

	fmt.Fprintln(buf)

	h.mut.Lock()
	defer h.mut.Unlock()

	if _, err := h.out.Write(buf.Bytes()); err != nil {
		return err
	}

	if rec.Level == slog.LevelError || rec.Level == LevelInterrupt {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}

	return nil
}

func formatAttr(a slog.Attr) string {
	return fmt.Sprintf("%s=%v", a.Key, a.Value.Resolve().Any())
}

// WithAttrs returns a new handler with attrs appended to the running set.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)

	return &Handler{out: h.out, mut: h.mut, attrs: merged}
}

// WithGroup is unsupported: records are flat key=value pairs, so a group just forwards its
// attributes ungrouped rather than nesting them.
func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}

// SetDefault installs l as slog's package-level default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
