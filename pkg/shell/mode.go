package shell

import (
	"bytes"
	"time"
)

// Mode is the shell's current interpretation regime for incoming bytes
type Mode uint8

const (
	// ModeNormal is normal command line editing and execution
	ModeNormal Mode = iota

	// ModePassword is non-echoed password capture
	ModePassword

	// ModeDelay defers execution until a deadline is reached, ignoring
	// all input
	ModeDelay
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModePassword:
		return "password"
	case ModeDelay:
		return "delay"
	default:
		return "unknown"
	}
}

// PasswordFunc handles the response to a password entry prompt. The entry
// was either confirmed (completed true) or cancelled; the captured text may
// be empty. The shell is back in normal mode when the function runs.
type PasswordFunc func(s *Shell, completed bool, password string)

// DelayFunc handles the end of an execution delay. The shell is back in
// normal mode when the function runs.
type DelayFunc func(s *Shell)

// modeData carries the state of the active non-normal mode. Exactly one
// variant is live at a time; it is cleared before its callback runs so the
// callback may enter a new mode.
type modeData interface {
	mode() Mode
}

type passwordData struct {
	prompt string
	fn     PasswordFunc
}

func (*passwordData) mode() Mode { return ModePassword }

type delayData struct {
	deadline time.Time
	fn       DelayFunc
}

func (*delayData) mode() Mode { return ModeDelay }

// EnterPassword prompts for a password to be entered on this shell.
// Password input is not echoed and can be cancelled by the user. No-op
// unless the shell is in normal mode.
func (s *Shell) EnterPassword(prompt string, fn PasswordFunc) {
	if s.mode == ModeNormal {
		s.mode = ModePassword
		s.modeData = &passwordData{prompt: prompt, fn: fn}
	}
}

// DelayFor stops executing anything on this shell for the given duration,
// then calls fn before resuming normal execution. It never blocks the
// loop; the deadline is re-checked on every loop step. No-op unless the
// shell is in normal mode.
func (s *Shell) DelayFor(d time.Duration, fn DelayFunc) {
	s.DelayUntil(s.now().Add(d), fn)
}

// DelayUntil stops executing anything on this shell until the given time is
// reached, then calls fn before resuming normal execution. No-op unless
// the shell is in normal mode.
func (s *Shell) DelayUntil(deadline time.Time, fn DelayFunc) {
	if s.mode == ModeNormal {
		s.mode = ModeDelay
		s.modeData = &delayData{deadline: deadline, fn: fn}
	}
}

// loopNormal reads zero or one input bytes and dispatches them as command
// line editing actions
func (s *Shell) loopNormal() {
	c, ok := s.transport.ReadByte()
	if !ok {
		return
	}

	switch c {
	case 0x03:
		// Interrupt (^C)
		s.lineBuffer = s.lineBuffer[:0]
		s.Println("")
		s.promptDisplayed = false
		s.displayPrompt()

	case 0x04:
		// End of transmission (^D)
		if len(s.lineBuffer) == 0 {
			s.hooks.EndOfTransmission(s)
		}

	case 0x08, 0x7F:
		// Backspace (^H), Delete (^?)
		if len(s.lineBuffer) > 0 {
			s.eraseCharacters(1)
			s.lineBuffer = s.lineBuffer[:len(s.lineBuffer)-1]
		}

	case 0x09:
		// Tab (^I)
		s.processCompletion()

	case 0x0A:
		// Line feed (^J), ignored directly after a carriage return
		if s.previous != 0x0D {
			s.processCommand()
		}

	case 0x0C:
		// New page (^L)
		s.eraseCurrentLine()
		s.displayPrompt()

	case 0x0D:
		// Carriage return (^M)
		s.processCommand()

	case 0x15:
		// Delete line (^U)
		s.eraseCurrentLine()
		s.lineBuffer = s.lineBuffer[:0]
		s.displayPrompt()

	case 0x17:
		// Delete word (^W)
		s.deleteBufferWord(true)

	default:
		if c >= 0x20 && c <= 0x7E {
			// Printable ASCII, dropped once the buffer is full
			if len(s.lineBuffer) < s.maxLineLength {
				s.lineBuffer = append(s.lineBuffer, c)
				s.write([]byte{c})
			}
		}
	}

	s.previous = c
	s.transport.Flush()
}

// loopPassword reads zero or one input bytes during password capture. No
// input is echoed.
func (s *Shell) loopPassword() {
	c, ok := s.transport.ReadByte()
	if !ok {
		return
	}

	switch c {
	case 0x03:
		// Interrupt (^C)
		s.processPassword(false)

	case 0x08, 0x7F:
		// Backspace (^H), Delete (^?)
		if len(s.lineBuffer) > 0 {
			s.lineBuffer = s.lineBuffer[:len(s.lineBuffer)-1]
		}

	case 0x0A:
		// Line feed (^J), ignored directly after a carriage return
		if s.previous != 0x0D {
			s.processPassword(true)
		}

	case 0x0C:
		// New page (^L)
		s.eraseCurrentLine()
		s.displayPrompt()

	case 0x0D:
		// Carriage return (^M)
		s.processPassword(true)

	case 0x15:
		// Delete line (^U)
		s.lineBuffer = s.lineBuffer[:0]

	case 0x17:
		// Delete word (^W)
		s.deleteBufferWord(false)

	default:
		if c >= 0x20 && c <= 0x7E {
			if len(s.lineBuffer) < s.maxLineLength {
				s.lineBuffer = append(s.lineBuffer, c)
			}
		}
	}

	s.previous = c
	s.transport.Flush()
}

// loopDelay checks the delay deadline, ignoring all input. Once the
// deadline is reached the mode reverts to normal before the resume
// function runs, so it may start a new delay.
func (s *Shell) loopDelay() {
	data, ok := s.modeData.(*delayData)
	if !ok {
		return
	}

	if s.now().Before(data.deadline) {
		return
	}

	fn := data.fn
	s.mode = ModeNormal
	s.modeData = nil

	fn(s)

	if s.Running() {
		s.displayPrompt()
	}

	s.transport.Flush()
}

// processPassword finishes password capture. The captured text is in the
// line buffer; the mode reverts to normal before the stored function runs
// and the buffer is cleared afterwards.
func (s *Shell) processPassword(completed bool) {
	s.Println("")

	data, ok := s.modeData.(*passwordData)
	if !ok {
		return
	}

	fn := data.fn
	s.mode = ModeNormal
	s.modeData = nil

	fn(s, completed, string(s.lineBuffer))
	s.lineBuffer = s.lineBuffer[:0]

	if s.Running() {
		s.displayPrompt()
	}
}

// deleteBufferWord deletes the trailing word from the line buffer. With no
// space in the buffer the whole buffer is cleared. Erased characters are
// only displayed when display is set (not during password capture).
func (s *Shell) deleteBufferWord(display bool) {
	pos := bytes.LastIndexByte(s.lineBuffer, ' ')

	if pos < 0 {
		s.lineBuffer = s.lineBuffer[:0]
		if display {
			s.eraseCurrentLine()
			s.displayPrompt()
		}
	} else {
		if display {
			s.eraseCharacters(len(s.lineBuffer) - pos)
		}
		s.lineBuffer = s.lineBuffer[:pos]
	}
}
