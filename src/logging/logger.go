package logging

import (
	"fmt"
	"time"
)

type LoggerEntry struct {
	Messages  []string
	Timestamp time.Time
}

// Logger writes prefixed entries to a shared channel. Entries are dropped when the channel
// is nil or full so that replica loops never block on log rendering.
type Logger struct {
	Logs   chan LoggerEntry
	prefix string
}

func CreateLogger(prefix string, logs chan LoggerEntry) *Logger {
	return &Logger{
		Logs:   logs,
		prefix: prefix,
	}
}

func (logg *Logger) Log(message string) {
	if logg == nil {
		return
	}
	logg.push(LoggerEntry{
		Messages: []string{
			fmt.Sprintf("%s %s", logg.prefix, message),
		},
		Timestamp: time.Now(),
	})
}

func (logg *Logger) Logf(format string, args ...any) {
	if logg == nil {
		return
	}
	logg.Log(fmt.Sprintf(format, args...))
}

func (logg *Logger) LogMultiple(messages []string) {
	if logg == nil {
		return
	}
	prefixed := make([]string, len(messages))
	for idx, message := range messages {
		prefixed[idx] = fmt.Sprintf("%s %s", logg.prefix, message)
	}
	logg.push(LoggerEntry{
		Messages:  prefixed,
		Timestamp: time.Now(),
	})
}

func (logg *Logger) push(entry LoggerEntry) {
	if logg == nil || logg.Logs == nil {
		return
	}

	select {
	case logg.Logs <- entry:
	default:
	}
}
