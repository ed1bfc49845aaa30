// Package cmd implements the mcu-console command line interface
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Root command flags
	verbose bool

	// Root command
	rootCmd = &cobra.Command{
		Use:               "mcu-console",
		Short:             "An interactive console shell for embedded devices",
		Version:           "1.0.0",
		Run:               runRoot,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(listCmd)
}

// runRoot shows the help when the root command is called without subcommands
func runRoot(cmd *cobra.Command, args []string) {
	cmd.Help()
}
