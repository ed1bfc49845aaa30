package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcu-console/pkg/config"
	"mcu-console/pkg/logging"
	"mcu-console/pkg/serial"
	"mcu-console/pkg/shell"
)

var (
	connectBaud     int
	connectDataBits int
	connectStopBits int
	connectParity   string
	connectProfile  string
	connectSave     string
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Run a console shell over a serial port",
	Long: `Run a console shell over a serial port.

The port and serial parameters can be given on the command line or loaded
from a saved profile. With --save the parameters are stored as a profile
for later use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().IntVarP(&connectBaud, "baud", "b", 115200, "baud rate")
	connectCmd.Flags().IntVar(&connectDataBits, "data-bits", 8, "data bits (5-8)")
	connectCmd.Flags().IntVar(&connectStopBits, "stop-bits", 1, "stop bits (1-2)")
	connectCmd.Flags().StringVar(&connectParity, "parity", "none", "parity (none, odd, even, mark, space)")
	connectCmd.Flags().StringVarP(&connectProfile, "profile", "p", "", "load serial parameters from a saved profile")
	connectCmd.Flags().StringVar(&connectSave, "save", "", "save the serial parameters as a profile")
	connectCmd.Flags().BoolVar(&runHeartbeat, "heartbeat", false, "log a heartbeat message every 5s")
}

func runConnect(cmd *cobra.Command, args []string) error {
	manager := config.NewFileProfileManager("")

	profile := config.DefaultProfile()

	if connectProfile != "" {
		loaded, err := manager.LoadProfile(connectProfile)
		if err != nil {
			return fmt.Errorf("failed to load profile %q: %w", connectProfile, err)
		}
		profile = loaded
	} else {
		profile.Serial.BaudRate = connectBaud
		profile.Serial.DataBits = connectDataBits
		profile.Serial.StopBits = connectStopBits
		profile.Serial.Parity = connectParity
	}

	if len(args) > 0 {
		profile.Serial.Port = args[0]
	}

	if err := profile.Validate(); err != nil {
		return err
	}

	if connectSave != "" {
		if err := manager.SaveProfile(connectSave, profile); err != nil {
			return fmt.Errorf("failed to save profile %q: %w", connectSave, err)
		}
		fmt.Printf("Saved profile %q\n", connectSave)
	}

	transport, err := serial.Open(profile.Serial)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", profile.Serial.Port, err)
	}
	defer transport.Close()

	hostname := profile.Hostname
	if hostname == "" {
		hostname = profile.Serial.Port
	}

	level, err := logging.ParseLevel(profile.LogLevel)
	if err != nil {
		return err
	}

	opts := shell.DefaultOptions()
	opts.LogLevel = level
	opts.MaxCommandLineLength = profile.MaxCommandLineLength
	opts.MaxLogMessages = profile.MaxLogMessages

	return driveConsole(transport, hostname, opts)
}
