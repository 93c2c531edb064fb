package report

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Fields map[string]interface{}

// RunLogger writes one JSON object per line. A nil *RunLogger discards
// everything, so callers never need to check whether logging is enabled.
type RunLogger struct {
	mu     sync.Mutex
	closer io.Closer
	enc    *json.Encoder
	now    func() time.Time
}

type RunEvent struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Event     string `json:"event"`
	Fields    Fields `json:"fields,omitempty"`
}

// NewRunLogger appends to the log at path, creating parent directories.
func NewRunLogger(path string) (*RunLogger, error) {
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	l := NewRunLoggerTo(f)
	l.closer = f
	return l, nil
}

func NewRunLoggerTo(w io.Writer) *RunLogger {
	return &RunLogger{enc: json.NewEncoder(w), now: time.Now}
}

func (l *RunLogger) Close() {
	if l == nil || l.closer == nil {
		return
	}
	_ = l.closer.Close()
}

func (l *RunLogger) Info(event string, fields Fields) {
	l.log("INFO", event, fields)
}

func (l *RunLogger) Warn(event string, fields Fields) {
	l.log("WARN", event, fields)
}

func (l *RunLogger) Error(event string, err error, fields Fields) {
	merged := Fields{}
	for k, v := range fields {
		merged[k] = v
	}
	if err != nil {
		merged["error"] = err.Error()
	}
	l.log("ERROR", event, merged)
}

func (l *RunLogger) log(level, event string, fields Fields) {
	if l == nil || l.enc == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(RunEvent{
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Event:     event,
		Fields:    fields,
	})
}
