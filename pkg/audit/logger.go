package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"routing/pkg/logger"
)

// encode serializes an entry to a single JSON line.
func encode(entry *Entry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// StdoutLogger writes audit entries to a stream, one JSON line per entry.
// The default stream is stdout; tests substitute a buffer.
type StdoutLogger struct {
	config *Config
	out    io.Writer
	mu     sync.Mutex
}

// NewStdoutLogger creates a logger writing to stdout.
func NewStdoutLogger(cfg *Config) *StdoutLogger {
	return &StdoutLogger{config: cfg, out: os.Stdout}
}

// Log prints an entry prefixed with [AUDIT] so it can be grepped out of
// the mixed service output.
func (l *StdoutLogger) Log(_ context.Context, entry *Entry) error {
	if !l.config.Enabled {
		return nil
	}

	line, err := encode(entry)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, err = fmt.Fprintf(l.out, "[AUDIT] %s", line)
	return err
}

// Query is not supported: stdout is write-only.
func (l *StdoutLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, fmt.Errorf("query not supported for stdout logger")
}

// Close does nothing, stdout is not ours to close.
func (l *StdoutLogger) Close() error {
	return nil
}

// FileLogger writes audit entries to a rotating log file. Entries go through
// a buffered channel, so logging a route calculation does not wait for disk;
// a background goroutine drains the channel and flushes periodically.
type FileLogger struct {
	config *Config
	file   *lumberjack.Logger
	writer *bufio.Writer
	mu     sync.Mutex // guards writer and file
	buffer chan *Entry
	done   chan struct{}
}

// NewFileLogger creates a logger writing to cfg.FilePath (audit.log if empty).
// The file is rotated by size and age per the MaxSize, MaxAge and Compress
// settings, so a long-lived engine does not grow an unbounded audit trail.
func NewFileLogger(cfg *Config) (*FileLogger, error) {
	if cfg.FilePath == "" {
		cfg.FilePath = "audit.log"
	}

	file := &lumberjack.Logger{
		Filename: cfg.FilePath,
		MaxSize:  cfg.MaxSize,
		MaxAge:   cfg.MaxAge,
		Compress: cfg.Compress,
	}

	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	l := &FileLogger{
		config: cfg,
		file:   file,
		writer: bufio.NewWriter(file),
		buffer: make(chan *Entry, bufferSize),
		done:   make(chan struct{}),
	}

	go l.processLoop()

	return l, nil
}

// Log queues an entry for the background writer. When the buffer is full
// the entry is written synchronously instead of being dropped.
func (l *FileLogger) Log(_ context.Context, entry *Entry) error {
	if !l.config.Enabled {
		return nil
	}

	select {
	case l.buffer <- entry:
		return nil
	default:
		return l.write(entry)
	}
}

// Query is not supported: reading the trail back requires the database backend.
func (l *FileLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, fmt.Errorf("query not implemented for file logger")
}

// Close stops the background writer, drains whatever is still buffered
// and closes the file. Entries logged after Close may be lost.
func (l *FileLogger) Close() error {
	close(l.done)

	l.mu.Lock()
	defer l.mu.Unlock()

	for drained := false; !drained; {
		select {
		case entry := <-l.buffer:
			if err := l.writeLocked(entry); err != nil {
				logger.Log.Warn("Failed to write audit entry during shutdown", "error", err)
			}
		default:
			drained = true
		}
	}

	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("Failed to flush audit writer", "error", err)
	}
	return l.file.Close()
}

// processLoop writes buffered entries and flushes on a timer.
func (l *FileLogger) processLoop() {
	flushPeriod := l.config.FlushPeriod
	if flushPeriod <= 0 {
		flushPeriod = 5 * time.Second
	}

	ticker := time.NewTicker(flushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case entry := <-l.buffer:
			if err := l.write(entry); err != nil {
				logger.Log.Warn("Failed to write audit entry", "error", err)
			}
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *FileLogger) write(entry *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writeLocked(entry)
}

// writeLocked assumes the caller holds mu.
func (l *FileLogger) writeLocked(entry *Entry) error {
	line, err := encode(entry)
	if err != nil {
		return err
	}

	_, err = l.writer.Write(line)
	return err
}

func (l *FileLogger) flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		logger.Log.Warn("Failed to flush audit writer", "error", err)
	}
}

// New picks a Logger implementation for the configuration: NoopLogger when
// auditing is disabled, otherwise the configured backend. An unknown backend
// falls back to stdout rather than failing the engine start.
func New(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if !cfg.Enabled {
		return &NoopLogger{}, nil
	}

	switch cfg.Backend {
	case "file":
		return NewFileLogger(cfg)
	case "stdout", "":
		return NewStdoutLogger(cfg), nil
	default:
		logger.Log.Warn("Unknown audit backend, using stdout", "backend", cfg.Backend)
		return NewStdoutLogger(cfg), nil
	}
}

// NoopLogger discards everything. Used when auditing is disabled so callers
// never have to check for a nil logger.
type NoopLogger struct{}

func (l *NoopLogger) Log(_ context.Context, _ *Entry) error { return nil }

func (l *NoopLogger) Query(_ context.Context, _ *QueryFilter) ([]*Entry, error) {
	return nil, nil
}

func (l *NoopLogger) Close() error { return nil }

var (
	globalLogger Logger = &NoopLogger{}
	globalMu     sync.RWMutex
)

// SetGlobal replaces the process-wide audit logger.
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Get returns the process-wide audit logger.
func Get() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Log records an entry through the process-wide logger.
func Log(ctx context.Context, entry *Entry) error {
	return Get().Log(ctx, entry)
}
