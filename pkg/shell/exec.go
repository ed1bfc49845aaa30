package shell

import (
	"mcu-console/pkg/commandline"
)

// processCommand tokenizes and clears the line buffer, then hands the
// arguments to the dispatcher. A dispatcher error is displayed and
// otherwise ignored.
func (s *Shell) processCommand() {
	args := commandline.Parse(string(s.lineBuffer))

	s.lineBuffer = s.lineBuffer[:0]
	s.Println("")
	s.promptDisplayed = false

	if len(args) > 0 && s.commands != nil {
		if err := s.commands.Execute(s, args); err != nil {
			s.Println(err.Error())
		}
	}

	if s.Running() {
		s.displayPrompt()
	}
}

// processCompletion asks the dispatcher to complete the current command
// line. Help lines are displayed first; a replacement reassembles the line
// buffer. The prompt is redrawn when either was present.
func (s *Shell) processCompletion() {
	args := commandline.Parse(string(s.lineBuffer))

	if len(args) == 0 || s.commands == nil {
		return
	}

	completion := s.commands.Complete(s, args)
	redisplay := false

	if len(completion.Help) > 0 {
		s.Println("")
		redisplay = true

		for _, help := range completion.Help {
			s.Println(commandline.Format(help))
		}
	}

	if len(completion.Replacement) > 0 {
		if !redisplay {
			s.eraseCurrentLine()
			redisplay = true
		}

		line := commandline.Format(completion.Replacement)
		if len(line) > s.maxLineLength {
			line = line[:s.maxLineLength]
		}
		s.lineBuffer = append(s.lineBuffer[:0], line...)
	}

	if redisplay {
		s.displayPrompt()
	}
}

// InvokeCommand outputs a prompt with the given command line and then
// executes it. Intended for use from an EndOfTransmission hook to run an
// "exit" or "logout" command.
func (s *Shell) InvokeCommand(line string) {
	if len(s.lineBuffer) > 0 {
		s.Println("")
		s.promptDisplayed = false
	}

	if !s.promptDisplayed {
		s.displayPrompt()
	}

	if len(line) > s.maxLineLength {
		line = line[:s.maxLineLength]
	}

	s.lineBuffer = append(s.lineBuffer[:0], line...)
	s.Print(line)
	s.processCommand()
}
