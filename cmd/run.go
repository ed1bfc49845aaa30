package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mcu-console/pkg/logging"
	"mcu-console/pkg/shell"
)

var (
	runHostname  string
	runLogLevel  string
	runHeartbeat bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a console shell on the local terminal",
	Long: `Run a console shell on the local terminal.

The terminal is switched to raw mode so that every key press reaches the
shell as a single byte. Type "help" for the available commands; "exit" or
^D stops the shell and restores the terminal.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runHostname, "hostname", "", "hostname shown in the prompt")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "minimum log level shown on the shell")
	runCmd.Flags().BoolVar(&runHeartbeat, "heartbeat", false, "log a heartbeat message every 5s")
}

func runRun(cmd *cobra.Command, args []string) error {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	level, err := logging.ParseLevel(runLogLevel)
	if err != nil {
		return err
	}

	opts := shell.DefaultOptions()
	opts.LogLevel = level

	return driveConsole(newStdioTransport(), runHostname, opts)
}

// consoleOptions applies the global flags to the shell options: --verbose
// raises the shell's log level to debug
func consoleOptions(opts shell.Options) shell.Options {
	if verbose && opts.LogLevel < logging.LevelDebug {
		opts.LogLevel = logging.LevelDebug
	}
	return opts
}

// driveConsole starts one shell on the transport and drives the registry
// from a cooperative tick until the shell stops
func driveConsole(transport shell.Transport, hostname string, opts shell.Options) error {
	opts = consoleOptions(opts)
	opts.Registry = shell.NewRegistry()

	s, err := shell.New(transport, newConsoleDispatcher(), &consoleHooks{hostname: hostname}, contextMain, 0, opts)
	if err != nil {
		return fmt.Errorf("failed to create shell: %w", err)
	}

	if runHeartbeat {
		stop := make(chan struct{})
		defer close(stop)
		go heartbeatLoop(stop)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	s.Start()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for s.Running() {
		select {
		case <-sigChan:
			s.Stop()
		case <-ticker.C:
			opts.Registry.LoopAll()
		}
	}

	// Final pass prunes the stopped shell and unregisters its receiver
	opts.Registry.LoopAll()
	transport.Flush()

	return nil
}

// heartbeatLoop logs through zerolog so the messages travel the same path
// as application logs, interleaving with the prompt on the shell
func heartbeatLoop(stop <-chan struct{}) {
	logger := zerolog.New(io.Discard).Hook(logging.ShellHook{Name: "heartbeat"})

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			logger.Info().Msg("heartbeat")
		}
	}
}

// stdioTransport is a non-blocking shell transport over stdin/stdout. A
// reader goroutine feeds a channel so that ReadByte never blocks the
// cooperative loop.
type stdioTransport struct {
	in  chan byte
	out *bufio.Writer
}

// newStdioTransport creates a transport reading os.Stdin and writing
// buffered output to os.Stdout
func newStdioTransport() *stdioTransport {
	t := &stdioTransport{
		in:  make(chan byte, 256),
		out: bufio.NewWriter(os.Stdout),
	}

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				t.in <- buf[0]
			}
			if err != nil {
				close(t.in)
				return
			}
		}
	}()

	return t
}

// ReadByte implements shell.Transport
func (t *stdioTransport) ReadByte() (byte, bool) {
	select {
	case b, ok := <-t.in:
		if !ok {
			// Stdin closed: deliver end of transmission
			return 0x04, true
		}
		return b, true
	default:
		return 0, false
	}
}

// Write implements shell.Transport
func (t *stdioTransport) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

// Flush implements shell.Transport
func (t *stdioTransport) Flush() error {
	return t.out.Flush()
}
