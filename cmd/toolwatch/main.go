package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/common/output"
	"github.com/agentdev/toolwatch/internal/common/version"
)

var (
	verbose    bool
	quiet      bool
	noColor    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "toolwatch",
	Short: "Automated tool watching for documentation",
	Long: `toolwatch tracks upstream versions of developer tools and trending
community discussions, and keeps a section of your documentation current.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Credentials live in the environment; a local .env is a convenience
	// for development and is absent in CI.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
