package shell

import (
	"fmt"
	"io"
	"strings"

	"mcu-console/pkg/logging"
)

const (
	// eraseLine moves the cursor to column 0 and erases to the end of
	// the line
	eraseLine = "\x1b[0G\x1b[K"

	// eraseToEnd erases from the cursor to the end of the line
	eraseToEnd = "\x1b[K"
)

// write outputs raw bytes on the transport. Transport write failures are
// not surfaced; nothing the shell does is fatal.
func (s *Shell) write(p []byte) {
	s.transport.Write(p)
}

// Print outputs a string
func (s *Shell) Print(data string) {
	io.WriteString(s.transport, data)
}

// Println outputs a string followed by CRLF end of line characters
func (s *Shell) Println(data string) {
	s.Print(data)
	s.Print("\r\n")
}

// Printf outputs a formatted message
func (s *Shell) Printf(format string, args ...interface{}) {
	fmt.Fprintf(s.transport, format, args...)
}

// Printfln outputs a formatted message followed by CRLF end of line
// characters
func (s *Shell) Printfln(format string, args ...interface{}) {
	s.Printf(format, args...)
	s.Print("\r\n")
}

// eraseCurrentLine erases the whole displayed line
func (s *Shell) eraseCurrentLine() {
	s.Print(eraseLine)
	s.promptDisplayed = false
}

// eraseCharacters erases count displayed characters before the cursor
func (s *Shell) eraseCharacters(count int) {
	s.Print(strings.Repeat("\b", count))
	s.Print(eraseToEnd)
}

// displayPrompt outputs the prompt for the current mode: nothing during a
// delay, the password prompt during password capture, otherwise the
// command prompt followed by the current line buffer
func (s *Shell) displayPrompt() {
	switch s.mode {
	case ModeDelay:

	case ModePassword:
		if data, ok := s.modeData.(*passwordData); ok {
			s.Print(data.prompt)
		}

	case ModeNormal:
		hostname := s.hooks.Hostname(s)
		context := s.hooks.ContextText(s)

		s.Print(s.hooks.PromptPrefix(s))
		if hostname != "" {
			s.Print(hostname)
			s.Print(" ")
		}
		if context != "" {
			s.Print(context)
			s.Print(" ")
		}
		s.Print(s.hooks.PromptSuffix(s))
		s.Print(" ")
		s.write(s.lineBuffer)
		s.promptDisplayed = true
	}
}

// outputLogs renders and removes every queued log message in arrival
// order, erasing the current display line first (unless delayed, when no
// line is being edited) and redrawing the prompt afterwards. The queue is
// detached in one critical section so concurrent appends never stall
// rendering.
func (s *Shell) outputLogs() {
	s.logMu.Lock()
	pending := s.logQueue
	s.logQueue = nil
	s.logMu.Unlock()

	if len(pending) == 0 {
		return
	}

	if s.mode != ModeDelay {
		s.eraseCurrentLine()
	}

	for _, m := range pending {
		s.Print(logging.FormatUptime(m.content.Uptime))
		s.Printf(" %c %d: [%s] ", m.content.Level.Char(), m.id, m.content.Name)
		s.Println(m.content.Text)
	}

	s.displayPrompt()
	s.transport.Flush()
}
