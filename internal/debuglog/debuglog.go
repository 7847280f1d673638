// Package debuglog writes the plugin debug log: one line per entry in the form
// "[dd-mm-YYYY HH:MM:SS] :: message".
package debuglog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/VladKovDev/cryptocart/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "02-01-2006 15:04:05"

type Logger struct {
	enabled bool
	mu      sync.Mutex
	w       io.Writer
	now     func() time.Time
}

// New opens a rotating log file at cfg.Path.
func New(cfg config.DebugLogConfig) (*Logger, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("debug log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}
	return NewWriter(w, cfg.Enabled), nil
}

func NewWriter(w io.Writer, enabled bool) *Logger {
	return &Logger{
		enabled: enabled,
		w:       w,
		now:     time.Now,
	}
}

// Discard returns a Logger that never writes.
func Discard() *Logger {
	return NewWriter(io.Discard, false)
}

func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Add writes msg when debug logging is enabled.
func (l *Logger) Add(msg string) error {
	if !l.Enabled() {
		return nil
	}
	return l.write(msg)
}

// Force writes msg regardless of the enabled flag.
func (l *Logger) Force(msg string) error {
	if l == nil {
		return nil
	}
	return l.write(msg)
}

func (l *Logger) write(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] :: %s\n", l.now().UTC().Format(timeLayout), msg)
	if _, err := io.WriteString(l.w, line); err != nil {
		return fmt.Errorf("failed to write debug log: %w", err)
	}
	return nil
}

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
