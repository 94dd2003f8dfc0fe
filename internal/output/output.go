// Package output provides colored user-facing output for the CLI.
//
// Log entries go to logrus on stderr; this package is for the short
// progress and result lines the operator actually reads on stdout.
package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Writer defines the interface for user-facing output.
type Writer interface {
	Success(msg string)
	Successf(format string, args ...interface{})
	Info(msg string)
	Infof(format string, args ...interface{})
	Warn(msg string)
	Warnf(format string, args ...interface{})
	Error(msg string)
	Errorf(format string, args ...interface{})
	Plain(msg string)
	Plainf(format string, args ...interface{})
}

// ColoredWriter implements Writer with colored output. Informational
// messages go to stdout, warnings and errors to stderr.
type ColoredWriter struct {
	success *color.Color
	info    *color.Color
	warn    *color.Color
	errc    *color.Color
	stdout  io.Writer
	stderr  io.Writer
	mu      sync.Mutex
}

// NewColoredWriter creates a ColoredWriter over the given streams.
func NewColoredWriter(stdout, stderr io.Writer) *ColoredWriter {
	return &ColoredWriter{
		success: color.New(color.FgGreen, color.Bold),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		errc:    color.New(color.FgRed, color.Bold),
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Success prints a success message in green.
func (w *ColoredWriter) Success(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.success.Fprintln(w.stdout, msg)
}

// Successf prints a formatted success message.
func (w *ColoredWriter) Successf(format string, args ...interface{}) {
	w.Success(fmt.Sprintf(format, args...))
}

// Info prints an info message in cyan.
func (w *ColoredWriter) Info(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.info.Fprintln(w.stdout, msg)
}

// Infof prints a formatted info message.
func (w *ColoredWriter) Infof(format string, args ...interface{}) {
	w.Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message in yellow.
func (w *ColoredWriter) Warn(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.warn.Fprintln(w.stderr, msg)
}

// Warnf prints a formatted warning message.
func (w *ColoredWriter) Warnf(format string, args ...interface{}) {
	w.Warn(fmt.Sprintf(format, args...))
}

// Error prints an error message in red.
func (w *ColoredWriter) Error(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = w.errc.Fprintln(w.stderr, msg)
}

// Errorf prints a formatted error message.
func (w *ColoredWriter) Errorf(format string, args ...interface{}) {
	w.Error(fmt.Sprintf(format, args...))
}

// Plain prints a message without color.
func (w *ColoredWriter) Plain(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.stdout, msg)
}

// Plainf prints a formatted message without color.
func (w *ColoredWriter) Plainf(format string, args ...interface{}) {
	w.Plain(fmt.Sprintf(format, args...))
}

//nolint:gochecknoglobals // default writer for package-level convenience functions
var defaultWriter Writer = NewColoredWriter(os.Stdout, os.Stderr)

// SetDefault replaces the package-level writer, returning the previous one.
// Used by tests to capture output.
func SetDefault(w Writer) Writer {
	prev := defaultWriter
	defaultWriter = w
	return prev
}

// Success prints via the default writer.
func Success(msg string) { defaultWriter.Success(msg) }

// Successf prints via the default writer.
func Successf(format string, args ...interface{}) { defaultWriter.Successf(format, args...) }

// Info prints via the default writer.
func Info(msg string) { defaultWriter.Info(msg) }

// Infof prints via the default writer.
func Infof(format string, args ...interface{}) { defaultWriter.Infof(format, args...) }

// Warn prints via the default writer.
func Warn(msg string) { defaultWriter.Warn(msg) }

// Warnf prints via the default writer.
func Warnf(format string, args ...interface{}) { defaultWriter.Warnf(format, args...) }

// Error prints via the default writer.
func Error(msg string) { defaultWriter.Error(msg) }

// Errorf prints via the default writer.
func Errorf(format string, args ...interface{}) { defaultWriter.Errorf(format, args...) }

// Plain prints via the default writer.
func Plain(msg string) { defaultWriter.Plain(msg) }

// Plainf prints via the default writer.
func Plainf(format string, args ...interface{}) { defaultWriter.Plainf(format, args...) }
