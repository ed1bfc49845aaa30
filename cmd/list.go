package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mcu-console/pkg/config"
	"mcu-console/pkg/serial"
)

var listProfiles bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans the system for available serial ports and displays
them in a list. On different platforms:
  - Windows: Lists COM ports
  - Linux: Lists /dev/tty* devices
  - macOS: Lists /dev/cu.* and /dev/tty.* devices

With --profiles the saved connection profiles are listed instead.`,
	Aliases: []string{"ls", "ports"},
	Run:     runList,
}

func init() {
	listCmd.Flags().BoolVar(&listProfiles, "profiles", false, "list saved connection profiles")
}

func runList(cmd *cobra.Command, args []string) {
	if listProfiles {
		runListProfiles()
		return
	}

	ports, err := serial.ListPorts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
		os.Exit(1)
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return
	}

	fmt.Printf("Found %d serial port(s):\n", len(ports))
	for _, port := range ports {
		fmt.Printf("  %s\n", port)
	}
}

func runListProfiles() {
	manager := config.NewFileProfileManager("")

	profiles, err := manager.ListProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing profiles: %v\n", err)
		os.Exit(1)
	}

	if len(profiles) == 0 {
		fmt.Println("No saved profiles.")
		return
	}

	fmt.Printf("Found %d profile(s):\n", len(profiles))
	for _, info := range profiles {
		fmt.Printf("  %-16s %s @ %d baud (last used %s)\n",
			info.Name, info.Profile.Serial.Port, info.Profile.Serial.BaudRate,
			info.LastUsedAt.Format("2006-01-02 15:04"))
	}
}
