package logbook

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kingrea/backoffice/internal/logging"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook records back-office activity to the application log and reads the
// most recent lines back for the on-screen log panel.
type Logbook struct {
	path    string
	logger  *zap.Logger
	closeFn func()
	mu      sync.Mutex
}

// New creates a logbook that writes to the provided path at the given level.
func New(path, level string) (*Logbook, error) {
	logger, closeFn, err := logging.New(path, level)
	if err != nil {
		return nil, err
	}
	return &Logbook{path: path, logger: logger, closeFn: closeFn}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Logger returns the structured logger shared with the API client and cache.
func (l *Logbook) Logger() *zap.Logger {
	if l == nil || l.logger == nil {
		return zap.NewNop()
	}
	return l.logger
}

// Close flushes and releases the log file.
func (l *Logbook) Close() {
	if l == nil || l.logger == nil {
		return
	}
	_ = l.logger.Sync()
	if l.closeFn != nil {
		l.closeFn()
	}
}

// Append writes a single entry to the logbook.
func (l *Logbook) Append(level Level, message string) {
	if l == nil || l.logger == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	message = strings.TrimSpace(message)
	switch level {
	case LevelWarn:
		l.logger.Warn(message)
	case LevelError:
		l.logger.Error(message)
	default:
		l.logger.Info(message)
	}
}

// Tail returns up to maxLines of the most recent log entries and the total
// number of lines in the log.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	file, err := os.Open(l.path)
	if err != nil {
		return nil, 0
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	total := len(lines)
	if total == 0 {
		return nil, 0
	}
	if total > maxLines {
		lines = lines[total-maxLines:]
	}
	return lines, total
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
