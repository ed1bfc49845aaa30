package logging

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recordingReceiver collects delivered messages for inspection
type recordingReceiver struct {
	mu       sync.Mutex
	messages []*Message
}

func (r *recordingReceiver) ReceiveLogMessage(m *Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, m)
}

func (r *recordingReceiver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.messages)
}

func (r *recordingReceiver) last() *Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.messages) == 0 {
		return nil
	}
	return r.messages[len(r.messages)-1]
}

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelOff, "off"},
		{LevelEmerg, "emerg"},
		{LevelAlert, "alert"},
		{LevelCrit, "crit"},
		{LevelError, "err"},
		{LevelWarning, "warning"},
		{LevelNotice, "notice"},
		{LevelInfo, "info"},
		{LevelDebug, "debug"},
		{LevelTrace, "trace"},
		{LevelAll, "all"},
		{Level(100), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevel_Char(t *testing.T) {
	tests := []struct {
		level Level
		want  byte
	}{
		{LevelEmerg, 'P'},
		{LevelAlert, 'A'},
		{LevelCrit, 'C'},
		{LevelError, 'E'},
		{LevelWarning, 'W'},
		{LevelNotice, 'N'},
		{LevelInfo, 'I'},
		{LevelDebug, 'D'},
		{LevelTrace, 'T'},
		{LevelOff, ' '},
	}

	for _, tt := range tests {
		if got := tt.level.Char(); got != tt.want {
			t.Errorf("Level(%d).Char() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    Level
		wantErr bool
	}{
		{"info", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"trace", LevelTrace, false},
		{"off", LevelOff, false},
		{"all", LevelAll, false},
		{"err", LevelError, false},
		{"warning", LevelWarning, false},
		{"bogus", LevelOff, true},
		{"", LevelOff, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		uptime time.Duration
		want   string
	}{
		{0, "0+00:00:00.000"},
		{time.Millisecond, "0+00:00:00.001"},
		{time.Second, "0+00:00:01.000"},
		{61*time.Second + 500*time.Millisecond, "0+00:01:01.500"},
		{3 * time.Hour, "0+03:00:00.000"},
		{25 * time.Hour, "1+01:00:00.000"},
		{49*time.Hour + 30*time.Minute, "2+01:30:00.000"},
	}

	for _, tt := range tests {
		if got := FormatUptime(tt.uptime); got != tt.want {
			t.Errorf("FormatUptime(%v) = %q, want %q", tt.uptime, got, tt.want)
		}
	}
}

func TestRegistryFiltering(t *testing.T) {
	receiver := &recordingReceiver{}
	RegisterReceiver(receiver, LevelNotice)
	defer UnregisterReceiver(receiver)

	log := Logger{Name: "test"}

	log.Info("filtered out")
	if receiver.count() != 0 {
		t.Fatalf("received %d messages at info, want 0", receiver.count())
	}

	log.Notice("at the threshold")
	log.Err("above the threshold")
	if receiver.count() != 2 {
		t.Fatalf("received %d messages, want 2", receiver.count())
	}

	m := receiver.last()
	if m.Level != LevelError || m.Name != "test" || m.Text != "above the threshold" {
		t.Errorf("unexpected message %+v", m)
	}
}

func TestRegisterReceiverChangesLevel(t *testing.T) {
	receiver := &recordingReceiver{}
	RegisterReceiver(receiver, LevelNotice)
	defer UnregisterReceiver(receiver)

	if got := ReceiverLevel(receiver); got != LevelNotice {
		t.Fatalf("ReceiverLevel = %v, want %v", got, LevelNotice)
	}

	RegisterReceiver(receiver, LevelDebug)
	if got := ReceiverLevel(receiver); got != LevelDebug {
		t.Fatalf("ReceiverLevel = %v, want %v", got, LevelDebug)
	}

	Logger{Name: "test"}.Debug("now visible")
	if receiver.count() != 1 {
		t.Errorf("received %d messages after raising level, want 1", receiver.count())
	}
}

func TestUnregisterReceiver(t *testing.T) {
	receiver := &recordingReceiver{}
	RegisterReceiver(receiver, LevelAll)
	UnregisterReceiver(receiver)

	Logger{Name: "test"}.Info("nobody home")
	if receiver.count() != 0 {
		t.Errorf("received %d messages after unregister, want 0", receiver.count())
	}

	if got := ReceiverLevel(receiver); got != LevelOff {
		t.Errorf("ReceiverLevel after unregister = %v, want %v", got, LevelOff)
	}

	// Unregistering again must not panic
	UnregisterReceiver(receiver)
}

func TestLoggerFormats(t *testing.T) {
	receiver := &recordingReceiver{}
	RegisterReceiver(receiver, LevelAll)
	defer UnregisterReceiver(receiver)

	Logger{Name: "fmt"}.Warning("value %d of %d", 3, 5)

	m := receiver.last()
	if m == nil || m.Text != "value 3 of 5" {
		t.Errorf("unexpected message %+v", m)
	}
	if m.Uptime < 0 {
		t.Errorf("Uptime = %v, want non-negative", m.Uptime)
	}
}

func TestShellHook(t *testing.T) {
	receiver := &recordingReceiver{}
	RegisterReceiver(receiver, LevelAll)
	defer UnregisterReceiver(receiver)

	logger := zerolog.New(io.Discard).Hook(ShellHook{Name: "zl"})

	logger.Warn().Msg("spanner dropped")

	m := receiver.last()
	if m == nil {
		t.Fatal("no message delivered")
	}
	if m.Level != LevelWarning || m.Name != "zl" || m.Text != "spanner dropped" {
		t.Errorf("unexpected message %+v", m)
	}

	// Empty messages are not republished
	before := receiver.count()
	logger.Info().Msg("")
	if receiver.count() != before {
		t.Errorf("empty message was republished")
	}
}

func TestFromZerologLevel(t *testing.T) {
	tests := []struct {
		in   zerolog.Level
		want Level
	}{
		{zerolog.TraceLevel, LevelTrace},
		{zerolog.DebugLevel, LevelDebug},
		{zerolog.InfoLevel, LevelInfo},
		{zerolog.WarnLevel, LevelWarning},
		{zerolog.ErrorLevel, LevelError},
		{zerolog.FatalLevel, LevelCrit},
		{zerolog.PanicLevel, LevelAlert},
		{zerolog.NoLevel, LevelInfo},
	}

	for _, tt := range tests {
		if got := fromZerologLevel(tt.in); got != tt.want {
			t.Errorf("fromZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
