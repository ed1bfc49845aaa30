package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"mcu-console/pkg/logging"
	"mcu-console/pkg/shell"
)

// Shell contexts for the demo command table
const (
	contextMain = iota
	contextSystem
)

// flagAdmin marks a shell that has authenticated with "su"
const flagAdmin uint = 1 << 0

// command is one entry in the demo command table
type command struct {
	context int
	flags   uint
	name    []string
	args    []string // Help text for arguments; "<x>" marks a required one
	run     func(s *shell.Shell, args []string) error
}

// minimumArguments returns the number of required arguments
func (c command) minimumArguments() int {
	count := 0
	for _, arg := range c.args {
		if strings.HasPrefix(arg, "<") {
			count++
		}
	}
	return count
}

// maximumArguments returns the highest number of arguments accepted, or -1
// when the last argument is variadic
func (c command) maximumArguments() int {
	if len(c.args) > 0 && strings.HasSuffix(c.args[len(c.args)-1], "...]") {
		return -1
	}
	return len(c.args)
}

// consoleDispatcher is the demo command table used by the run and connect
// commands
type consoleDispatcher struct {
	commands []command
	log      logging.Logger
}

// newConsoleDispatcher creates the demo command table
func newConsoleDispatcher() *consoleDispatcher {
	d := &consoleDispatcher{
		log: logging.Logger{Name: "console"},
	}

	d.commands = []command{
		{
			context: contextMain,
			name:    []string{"help"},
			run:     d.runHelp,
		},
		{
			context: contextSystem,
			name:    []string{"help"},
			run:     d.runHelp,
		},
		{
			context: contextMain,
			name:    []string{"echo"},
			args:    []string{"[text...]"},
			run: func(s *shell.Shell, args []string) error {
				s.Println(strings.Join(args, " "))
				return nil
			},
		},
		{
			context: contextMain,
			name:    []string{"exit"},
			run:     runExit,
		},
		{
			context: contextMain,
			name:    []string{"logout"},
			run:     runExit,
		},
		{
			context: contextSystem,
			name:    []string{"exit"},
			run:     runExit,
		},
		{
			context: contextMain,
			name:    []string{"system"},
			run: func(s *shell.Shell, args []string) error {
				s.EnterContext(contextSystem)
				return nil
			},
		},
		{
			context: contextMain,
			name:    []string{"su"},
			run: func(s *shell.Shell, args []string) error {
				s.EnterPassword("Password: ", func(s *shell.Shell, completed bool, password string) {
					if completed && password != "" {
						s.AddFlags(flagAdmin)
						d.log.Notice("shell authenticated")
					} else {
						s.Println("su: authentication cancelled")
					}
				})
				return nil
			},
		},
		{
			context: contextMain,
			name:    []string{"sleep"},
			args:    []string{"<milliseconds>"},
			run: func(s *shell.Shell, args []string) error {
				ms, err := strconv.Atoi(args[0])
				if err != nil || ms < 0 {
					return fmt.Errorf("sleep: invalid duration: %s", args[0])
				}

				s.DelayFor(time.Duration(ms)*time.Millisecond, func(s *shell.Shell) {
					s.Printfln("Slept for %dms", ms)
				})
				return nil
			},
		},
		{
			context: contextMain,
			name:    []string{"log", "level"},
			args:    []string{"[level]"},
			run: func(s *shell.Shell, args []string) error {
				if len(args) == 0 {
					s.Printfln("Log level: %s", s.LogLevel())
					return nil
				}

				level, err := logging.ParseLevel(args[0])
				if err != nil {
					return err
				}

				s.SetLogLevel(level)
				return nil
			},
		},
	}

	return d
}

// runExit leaves the current context, stopping the shell when the default
// context is the only one left
func runExit(s *shell.Shell, args []string) error {
	if !s.ExitContext() {
		s.Println("Bye.")
		s.Stop()
	}
	return nil
}

// available reports whether a command can be used by the shell in its
// current context and with its current flags
func (d *consoleDispatcher) available(s *shell.Shell, c command) bool {
	return c.context == s.Context() && s.HasFlags(c.flags)
}

// Execute implements shell.Dispatcher
func (d *consoleDispatcher) Execute(s *shell.Shell, args []string) error {
	var match *command
	var rest []string

	for i := range d.commands {
		c := &d.commands[i]
		if !d.available(s, *c) || len(args) < len(c.name) {
			continue
		}

		matched := true
		for j, word := range c.name {
			if args[j] != word {
				matched = false
				break
			}
		}

		if matched && (match == nil || len(c.name) > len(match.name)) {
			match = c
			rest = args[len(c.name):]
		}
	}

	if match == nil {
		return fmt.Errorf("Command not found")
	}

	if len(rest) < match.minimumArguments() {
		return fmt.Errorf("Not enough arguments for command")
	}

	if max := match.maximumArguments(); max >= 0 && len(rest) > max {
		return fmt.Errorf("Too many arguments for command")
	}

	return match.run(s, rest)
}

// Complete implements shell.Dispatcher. Command names beginning with the
// typed words are offered as help; a single match replaces the line.
func (d *consoleDispatcher) Complete(s *shell.Shell, args []string) shell.Completion {
	var completion shell.Completion
	var matches []command

	for _, c := range d.commands {
		if d.available(s, c) && namePrefixMatch(c.name, args) {
			matches = append(matches, c)
		}
	}

	for _, c := range matches {
		completion.Help = append(completion.Help, append(append([]string{}, c.name...), c.args...))
	}

	if len(matches) == 1 {
		completion.Replacement = matches[0].name
	}

	return completion
}

// namePrefixMatch reports whether the typed words are a prefix of the
// command name, with the last word allowed to be partial
func namePrefixMatch(name, args []string) bool {
	if len(args) > len(name) {
		return false
	}

	for i, arg := range args {
		if i == len(args)-1 {
			if !strings.HasPrefix(name[i], arg) {
				return false
			}
		} else if name[i] != arg {
			return false
		}
	}

	return true
}

// runHelp lists the commands available in the current context with their
// argument help, aligned in columns
func (d *consoleDispatcher) runHelp(s *shell.Shell, args []string) error {
	type entry struct {
		name string
		args string
	}

	var entries []entry
	width := 0

	for _, c := range d.commands {
		if !d.available(s, c) {
			continue
		}

		e := entry{
			name: strings.Join(c.name, " "),
			args: strings.Join(c.args, " "),
		}

		if w := runewidth.StringWidth(e.name); w > width {
			width = w
		}

		entries = append(entries, e)
	}

	for _, e := range entries {
		if e.args == "" {
			s.Println(e.name)
			continue
		}

		s.Printfln("%s  %s", runewidth.FillRight(e.name, width), e.args)
	}

	return nil
}

// consoleHooks supplies the prompt and lifecycle behaviour of the demo
// console
type consoleHooks struct {
	shell.BaseHooks

	hostname string
}

// Banner implements shell.Hooks
func (h *consoleHooks) Banner(s *shell.Shell) string {
	return "mcu-console (type \"help\" for commands)"
}

// Hostname implements shell.Hooks
func (h *consoleHooks) Hostname(s *shell.Shell) string {
	return h.hostname
}

// ContextText implements shell.Hooks
func (h *consoleHooks) ContextText(s *shell.Shell) string {
	if s.Context() == contextSystem {
		return "system"
	}
	return ""
}

// PromptSuffix implements shell.Hooks
func (h *consoleHooks) PromptSuffix(s *shell.Shell) string {
	if s.HasFlags(flagAdmin) {
		return "#"
	}
	return "$"
}

// EndOfTransmission implements shell.Hooks
func (h *consoleHooks) EndOfTransmission(s *shell.Shell) {
	s.InvokeCommand("exit")
}
