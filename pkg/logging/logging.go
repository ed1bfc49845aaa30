// Package logging provides severity-filtered fan-out of log messages to
// registered receivers, such as console shells
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message, ordered from most to
// least severe
type Level int8

const (
	LevelOff Level = iota - 1
	LevelEmerg
	LevelAlert
	LevelCrit
	LevelError
	LevelWarning
	LevelNotice
	LevelInfo
	LevelDebug
	LevelTrace
	LevelAll
)

// String returns the string representation of Level
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelEmerg:
		return "emerg"
	case LevelAlert:
		return "alert"
	case LevelCrit:
		return "crit"
	case LevelError:
		return "err"
	case LevelWarning:
		return "warning"
	case LevelNotice:
		return "notice"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelTrace:
		return "trace"
	case LevelAll:
		return "all"
	default:
		return "unknown"
	}
}

// Char returns the single character form of Level used in rendered log lines
func (l Level) Char() byte {
	switch l {
	case LevelEmerg:
		return 'P'
	case LevelAlert:
		return 'A'
	case LevelCrit:
		return 'C'
	case LevelError:
		return 'E'
	case LevelWarning:
		return 'W'
	case LevelNotice:
		return 'N'
	case LevelInfo:
		return 'I'
	case LevelDebug:
		return 'D'
	case LevelTrace:
		return 'T'
	default:
		return ' '
	}
}

// ParseLevel converts a level name to a Level
func ParseLevel(name string) (Level, error) {
	for l := LevelOff; l <= LevelAll; l++ {
		if l.String() == strings.ToLower(name) {
			return l, nil
		}
	}

	return LevelOff, fmt.Errorf("unknown log level: %s", name)
}

// Message is an immutable log message shared by all receivers. Receivers
// must not modify it.
type Message struct {
	Uptime time.Duration // Monotonic time when the message was logged
	Level  Level
	Name   string // Name of the source logger
	Text   string
}

// Receiver consumes log messages delivered by the registry. Delivery can
// happen from any goroutine, so implementations must be safe for
// concurrent use.
type Receiver interface {
	ReceiveLogMessage(m *Message)
}

var (
	registryMu sync.RWMutex
	receivers  = make(map[Receiver]Level)
	startTime  = time.Now()
)

// RegisterReceiver registers a receiver for messages at or above the given
// minimum severity. Registering an existing receiver changes its level,
// which only affects newly received messages.
func RegisterReceiver(r Receiver, level Level) {
	registryMu.Lock()
	defer registryMu.Unlock()

	receivers[r] = level
}

// UnregisterReceiver removes a receiver. It is safe to call for a receiver
// that was never registered.
func UnregisterReceiver(r Receiver) {
	registryMu.Lock()
	defer registryMu.Unlock()

	delete(receivers, r)
}

// ReceiverLevel returns the minimum severity the receiver is registered
// for, or LevelOff if it is not registered.
func ReceiverLevel(r Receiver) Level {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if level, ok := receivers[r]; ok {
		return level
	}

	return LevelOff
}

// Uptime returns the monotonic time since the process started, used as the
// timestamp source for log messages
func Uptime() time.Duration {
	return time.Since(startTime)
}

// FormatUptime formats an uptime value as days+HH:MM:SS.mmm
func FormatUptime(uptime time.Duration) string {
	ms := uptime.Milliseconds()

	days := ms / 86400000
	ms %= 86400000
	hours := ms / 3600000
	ms %= 3600000
	minutes := ms / 60000
	ms %= 60000
	seconds := ms / 1000
	ms %= 1000

	return fmt.Sprintf("%d+%02d:%02d:%02d.%03d", days, hours, minutes, seconds, ms)
}

// Publish delivers a message to every receiver registered at or above the
// message's severity
func Publish(m *Message) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for r, min := range receivers {
		if m.Level <= min {
			r.ReceiveLogMessage(m)
		}
	}
}

// Logger produces log messages attributed to a named source
type Logger struct {
	Name string
}

// Log publishes a message at the given level
func (l Logger) Log(level Level, format string, args ...interface{}) {
	Publish(&Message{
		Uptime: Uptime(),
		Level:  level,
		Name:   l.Name,
		Text:   fmt.Sprintf(format, args...),
	})
}

// Emerg publishes a message at LevelEmerg
func (l Logger) Emerg(format string, args ...interface{}) {
	l.Log(LevelEmerg, format, args...)
}

// Alert publishes a message at LevelAlert
func (l Logger) Alert(format string, args ...interface{}) {
	l.Log(LevelAlert, format, args...)
}

// Crit publishes a message at LevelCrit
func (l Logger) Crit(format string, args ...interface{}) {
	l.Log(LevelCrit, format, args...)
}

// Err publishes a message at LevelError
func (l Logger) Err(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Warning publishes a message at LevelWarning
func (l Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, format, args...)
}

// Notice publishes a message at LevelNotice
func (l Logger) Notice(format string, args ...interface{}) {
	l.Log(LevelNotice, format, args...)
}

// Info publishes a message at LevelInfo
func (l Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Debug publishes a message at LevelDebug
func (l Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, format, args...)
}

// Trace publishes a message at LevelTrace
func (l Logger) Trace(format string, args ...interface{}) {
	l.Log(LevelTrace, format, args...)
}
