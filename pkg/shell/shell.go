// Package shell provides a non-blocking, line-oriented console shell driven
// one byte at a time from a cooperative loop
package shell

import (
	"fmt"
	"io"
	"sync"
	"time"

	"mcu-console/pkg/logging"
)

// Transport is the byte stream a shell reads from and writes to. Reads are
// non-blocking polls; Flush is signalled after each processed byte so that
// transports batching writes can push pending output.
type Transport interface {
	io.Writer

	// ReadByte returns the next available input byte, or false when no
	// input is available. It must never block.
	ReadByte() (byte, bool)

	// Flush pushes any buffered output to the underlying stream.
	Flush() error
}

// Completion is the result of a command completion operation. Help holds
// suggestions for matching commands, one argument sequence per line.
// Replacement, if non-empty, replaces the current command line.
type Completion struct {
	Help        [][]string
	Replacement []string
}

// Dispatcher executes and completes command lines for a shell. Execution
// failures are reported as an error whose text is displayed on the shell;
// the command loop always continues.
type Dispatcher interface {
	Execute(s *Shell, args []string) error
	Complete(s *Shell, args []string) Completion
}

// Hooks supplies the variant-specific behaviour of a shell: banner and
// prompt text plus lifecycle events. Embed BaseHooks to only implement the
// parts that matter.
type Hooks interface {
	// Banner returns the text displayed when the shell starts, or "".
	Banner(s *Shell) string
	// Hostname returns the hostname shown in the prompt, or "".
	Hostname(s *Shell) string
	// ContextText returns the description of the current context shown
	// in the prompt, or "".
	ContextText(s *Shell) string
	// PromptPrefix returns the text at the beginning of the prompt.
	PromptPrefix(s *Shell) string
	// PromptSuffix returns the text at the end of the prompt.
	PromptSuffix(s *Shell) string
	// Started is called after the shell has completed startup.
	Started(s *Shell)
	// Stopped is called exactly once when the shell is stopped.
	Stopped(s *Shell)
	// EndOfTransmission is called when ^D is received on an empty line.
	EndOfTransmission(s *Shell)
}

// BaseHooks implements Hooks with the default behaviour: no banner, no
// hostname or context text, a "$" prompt suffix and no-op events
type BaseHooks struct{}

// Banner implements Hooks
func (BaseHooks) Banner(s *Shell) string { return "" }

// Hostname implements Hooks
func (BaseHooks) Hostname(s *Shell) string { return "" }

// ContextText implements Hooks
func (BaseHooks) ContextText(s *Shell) string { return "" }

// PromptPrefix implements Hooks
func (BaseHooks) PromptPrefix(s *Shell) string { return "" }

// PromptSuffix implements Hooks
func (BaseHooks) PromptSuffix(s *Shell) string { return "$" }

// Started implements Hooks
func (BaseHooks) Started(s *Shell) {}

// Stopped implements Hooks
func (BaseHooks) Stopped(s *Shell) {}

// EndOfTransmission implements Hooks
func (BaseHooks) EndOfTransmission(s *Shell) {}

const (
	// DefaultMaxCommandLineLength is the default maximum length of a
	// command line
	DefaultMaxCommandLineLength = 80

	// DefaultMaxLogMessages is the default maximum number of log
	// messages queued before the oldest is dropped
	DefaultMaxLogMessages = 20
)

// Options configures a shell instance
type Options struct {
	// MaxCommandLineLength bounds the line buffer; printable input
	// beyond this length is silently dropped.
	MaxCommandLineLength int

	// MaxLogMessages bounds the queue of pending log messages; the
	// oldest unread message is dropped first.
	MaxLogMessages int

	// LogLevel is the minimum severity the shell receives log messages
	// for when it starts.
	LogLevel logging.Level

	// Registry the shell registers with on Start. The default registry
	// is used when nil.
	Registry *Registry
}

// DefaultOptions returns the default shell options
func DefaultOptions() Options {
	return Options{
		MaxCommandLineLength: DefaultMaxCommandLineLength,
		MaxLogMessages:       DefaultMaxLogMessages,
		LogLevel:             logging.LevelNotice,
	}
}

// Validate checks if the options are valid
func (o Options) Validate() error {
	if o.MaxCommandLineLength <= 0 {
		return fmt.Errorf("maximum command line length must be positive, got: %d", o.MaxCommandLineLength)
	}

	if o.MaxLogMessages <= 0 {
		return fmt.Errorf("maximum log messages must be positive, got: %d", o.MaxLogMessages)
	}

	if o.LogLevel < logging.LevelOff || o.LogLevel > logging.LevelAll {
		return fmt.Errorf("invalid log level: %d", o.LogLevel)
	}

	return nil
}

// queuedLogMessage is a log message waiting to be rendered, tagged with a
// per-shell sequence id so gaps caused by queue overflow are visible
type queuedLogMessage struct {
	id      uint64
	content *logging.Message
}

// Shell is one console shell instance. All state is mutated from the
// cooperative loop context only, except the log queue append path which may
// run concurrently.
type Shell struct {
	transport Transport
	commands  Dispatcher
	hooks     Hooks
	registry  *Registry

	maxLineLength   int
	maxLogMessages  int
	initialLogLevel logging.Level

	context []int
	flags   uint

	lineBuffer      []byte
	previous        byte
	mode            Mode
	modeData        modeData
	stopped         bool
	promptDisplayed bool

	logMu    sync.Mutex
	logQueue []queuedLogMessage
	logID    uint64

	now func() time.Time
}

// New creates a shell reading and writing on the given transport, with the
// given dispatcher, hooks and default context. The default context is put
// on the context stack and cannot be removed. A nil hooks uses BaseHooks.
func New(transport Transport, commands Dispatcher, hooks Hooks, context int, flags uint, opts Options) (*Shell, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport cannot be nil")
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	if hooks == nil {
		hooks = BaseHooks{}
	}

	registry := opts.Registry
	if registry == nil {
		registry = defaultRegistry
	}

	return &Shell{
		transport:       transport,
		commands:        commands,
		hooks:           hooks,
		registry:        registry,
		maxLineLength:   opts.MaxCommandLineLength,
		maxLogMessages:  opts.MaxLogMessages,
		initialLogLevel: opts.LogLevel,
		context:         []int{context},
		flags:           flags,
		mode:            ModeNormal,
		now:             time.Now,
	}, nil
}

// Start performs the startup process for this shell: it registers the shell
// as a log receiver, reserves the line buffer, displays the banner and the
// initial prompt and registers the shell with its registry. The Started
// hook is called after startup is complete.
//
// Do not call Start more than once.
func (s *Shell) Start() {
	logging.RegisterReceiver(s, s.initialLogLevel)
	s.lineBuffer = make([]byte, 0, s.maxLineLength)

	if banner := s.hooks.Banner(s); banner != "" {
		s.Println(banner)
	}

	s.displayPrompt()
	s.transport.Flush()
	s.registry.register(s)
	s.hooks.Started(s)
}

// Running reports whether the shell is still running
func (s *Shell) Running() bool {
	return !s.stopped
}

// Stop stops the shell. The Stopped hook is called exactly once; repeated
// calls are no-ops. The registry removes the shell on its next pass, which
// does not interrupt a callback already in progress.
func (s *Shell) Stop() {
	if !s.stopped {
		s.stopped = true
		s.hooks.Stopped(s)
	}
}

// Close unregisters the shell from the logging subsystem. The registry
// closes a shell when it prunes it; shells that were never started must be
// closed explicitly to avoid a dangling receiver registration.
func (s *Shell) Close() {
	logging.UnregisterReceiver(s)
}

// LoopOne performs one execution step of this shell: queued log messages
// are rendered, then depending on the current mode either one input byte is
// read and processed or the delay deadline is checked. It never blocks.
func (s *Shell) LoopOne() {
	s.outputLogs()

	switch s.mode {
	case ModeNormal:
		s.loopNormal()
	case ModePassword:
		s.loopPassword()
	case ModeDelay:
		s.loopDelay()
	}
}

// Context returns the context at the top of the stack. The shell stores
// context identifiers without interpreting them.
func (s *Shell) Context() int {
	return s.context[len(s.context)-1]
}

// EnterContext pushes a new context onto the stack
func (s *Shell) EnterContext(context int) {
	s.context = append(s.context, context)
}

// ExitContext pops a context off the stack. It returns false when only the
// default context remains, which cannot be exited.
func (s *Shell) ExitContext() bool {
	if len(s.context) > 1 {
		s.context = s.context[:len(s.context)-1]
		return true
	}

	return false
}

// AddFlags adds one or more flags to the current flags. Flags are not
// affected by the execution context.
func (s *Shell) AddFlags(flags uint) {
	s.flags |= flags
}

// RemoveFlags removes one or more flags from the current flags
func (s *Shell) RemoveFlags(flags uint) {
	s.flags &^= flags
}

// HasFlags reports whether the current flags include all of the given flags
func (s *Shell) HasFlags(flags uint) bool {
	return s.flags&flags == flags
}

// LogLevel returns the minimum severity the shell currently receives log
// messages for
func (s *Shell) LogLevel() logging.Level {
	return logging.ReceiverLevel(s)
}

// SetLogLevel changes the minimum severity the shell receives log messages
// for. This only affects newly received messages, not messages already
// queued.
func (s *Shell) SetLogLevel(level logging.Level) {
	logging.RegisterReceiver(s, level)
}

// ReceiveLogMessage implements logging.Receiver. The message is queued for
// output on the next loop step; once the queue is full the oldest unread
// message is dropped. Safe to call concurrently with the shell loop.
func (s *Shell) ReceiveLogMessage(m *logging.Message) {
	s.logMu.Lock()
	defer s.logMu.Unlock()

	if len(s.logQueue) >= s.maxLogMessages {
		s.logQueue = s.logQueue[1:]
	}

	s.logQueue = append(s.logQueue, queuedLogMessage{id: s.logID, content: m})
	s.logID++
}
