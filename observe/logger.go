package observe

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel orders log severities from debug up to error.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel maps a level name to its LogLevel. Unknown names fall
// back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// jsonLogger writes one JSON object per log line. Loggers derived via
// WithStore share the writer and its mutex.
type jsonLogger struct {
	level LogLevel
	meta  *StoreMeta

	mu *sync.Mutex
	w  io.Writer
}

var _ Logger = (*jsonLogger)(nil)

// NewLogger returns a JSON line logger writing to stderr.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON line logger writing to w. Lines
// below level are dropped.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	return &jsonLogger{level: ParseLogLevel(level), mu: &sync.Mutex{}, w: w}
}

// WithStore returns a logger that stamps every line with the cache
// identity in meta.
func (l *jsonLogger) WithStore(meta StoreMeta) Logger {
	return &jsonLogger{level: l.level, meta: &meta, mu: l.mu, w: l.w}
}

func (l *jsonLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields)
}

func (l *jsonLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields)
}

func (l *jsonLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields)
}

func (l *jsonLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(LevelError, msg, fields)
}

func (l *jsonLogger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}

	entry := make(map[string]any, len(fields)+7)
	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	if l.meta != nil {
		entry["cache.id"] = l.meta.CacheID()
		entry["cache.device"] = l.meta.Device
		entry["cache.kernel"] = l.meta.Kernel
		if l.meta.Path != "" {
			entry["cache.path"] = l.meta.Path
		}
	}

	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return // a line that cannot marshal is dropped
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(data)
	l.w.Write([]byte("\n"))
}
