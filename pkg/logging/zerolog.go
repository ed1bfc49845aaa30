package logging

import (
	"github.com/rs/zerolog"
)

// ShellHook is a zerolog hook that republishes log events to the receiver
// registry, so that messages logged by the application are interleaved with
// the prompt on connected shells
type ShellHook struct {
	Name string // Source name attached to republished messages
}

// Run implements zerolog.Hook
func (h ShellHook) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if message == "" {
		return
	}

	Publish(&Message{
		Uptime: Uptime(),
		Level:  fromZerologLevel(level),
		Name:   h.Name,
		Text:   message,
	})
}

// fromZerologLevel maps zerolog levels onto the syslog-style Level set
func fromZerologLevel(level zerolog.Level) Level {
	switch level {
	case zerolog.TraceLevel:
		return LevelTrace
	case zerolog.DebugLevel:
		return LevelDebug
	case zerolog.InfoLevel:
		return LevelInfo
	case zerolog.WarnLevel:
		return LevelWarning
	case zerolog.ErrorLevel:
		return LevelError
	case zerolog.FatalLevel:
		return LevelCrit
	case zerolog.PanicLevel:
		return LevelAlert
	default:
		return LevelInfo
	}
}
