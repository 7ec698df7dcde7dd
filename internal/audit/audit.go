// Package audit provides the append-only audit log shared by all commands.
//
// Every line is prefixed with a severity tag and mirrored to standard error,
// so a failed run leaves the same trail on the terminal and on disk.
package audit

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultLogPath is where install and uninstall runs append their audit trail.
const DefaultLogPath = "/var/log/rancherup.log"

// Logger is the logging surface handed to every component.
type Logger interface {
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}

// FileLogger writes prefixed lines to an audit file and mirrors them to
// standard error. It is safe for use from a single process only; concurrent
// runs on the same host interleave writes and are unsupported.
type FileLogger struct {
	mu   sync.Mutex
	file io.WriteCloser
	errw io.Writer
	now  func() time.Time
}

// Open creates or appends to the audit log at path. The parent directory is
// created if needed.
func Open(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &FileLogger{file: f, errw: os.Stderr, now: time.Now}, nil
}

// NewWithWriters creates a FileLogger over arbitrary writers. Used by tests.
func NewWithWriters(file io.WriteCloser, errw io.Writer) *FileLogger {
	return &FileLogger{file: file, errw: errw, now: time.Now}
}

// Close closes the underlying audit file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Infof logs an informational line.
func (l *FileLogger) Infof(format string, v ...any) {
	l.write("[INFO]", fmt.Sprintf(format, v...))
}

// Warnf logs a warning. Warnings share the error prefix in the audit file so
// teardown failures remain visible in a plain grep.
func (l *FileLogger) Warnf(format string, v ...any) {
	l.write("[ERROR]", "warning: "+fmt.Sprintf(format, v...))
}

// Errorf logs an error line.
func (l *FileLogger) Errorf(format string, v ...any) {
	l.write("[ERROR]", fmt.Sprintf(format, v...))
}

func (l *FileLogger) write(prefix, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%s %s %s\n", l.now().Format(time.RFC3339), prefix, msg)
	// Best effort on both sinks; a full disk must not mask the original error.
	_, _ = io.WriteString(l.file, line)
	_, _ = fmt.Fprintf(l.errw, "%s %s\n", prefix, msg)
}

// ConsoleLogger logs to standard error only. It backs --dry-run output and
// commands that have nothing durable to record.
type ConsoleLogger struct {
	w io.Writer
}

// NewConsole creates a ConsoleLogger writing to standard error.
func NewConsole() *ConsoleLogger {
	return &ConsoleLogger{w: os.Stderr}
}

// NewConsoleWriter creates a ConsoleLogger over w. Used by tests.
func NewConsoleWriter(w io.Writer) *ConsoleLogger {
	return &ConsoleLogger{w: w}
}

// Infof logs an informational line.
func (l *ConsoleLogger) Infof(format string, v ...any) {
	fmt.Fprintf(l.w, "[INFO] "+format+"\n", v...)
}

// Warnf logs a warning line.
func (l *ConsoleLogger) Warnf(format string, v ...any) {
	fmt.Fprintf(l.w, "[ERROR] warning: "+format+"\n", v...)
}

// Errorf logs an error line.
func (l *ConsoleLogger) Errorf(format string, v ...any) {
	fmt.Fprintf(l.w, "[ERROR] "+format+"\n", v...)
}
