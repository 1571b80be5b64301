// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/knit/internal/core/ports"
)

// messager is implemented by zerr errors, which can report their own message without the chain.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr}
	l.rebuild()
	return l
}

// SetOutput updates the logger's output destination, keeping the current mode.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// rebuild swaps the slog handler. Callers hold l.mu.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewPrettyHandler(l.output, opts))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error and its causes.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}

	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// collectErrorEntries walks the chain of zerr errors, one entry per message.
// The first error without a Message method ends the walk with its full text.
func collectErrorEntries(err error) []string {
	var entries []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, current.Error())
			break
		}
		entries = append(entries, m.Message())
		current = errors.Unwrap(current)
	}
	return entries
}

// formatErrorEntries renders the main error followed by an indented list of causes.
func formatErrorEntries(entries []string) string {
	var out []string

	for i, entry := range entries {
		lines := strings.Split(entry, "\n")

		if i == 0 {
			out = append(out, "Error: "+lines[0])
			for _, line := range lines[1:] {
				out = append(out, "       "+line)
			}
			continue
		}

		if i == 1 {
			out = append(out, "", "  Caused by:")
		}
		out = append(out, "    → "+lines[0])
		for _, line := range lines[1:] {
			out = append(out, "      "+line)
		}
	}

	return strings.Join(out, "\n")
}
