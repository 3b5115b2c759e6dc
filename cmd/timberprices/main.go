// Command timberprices serves the Mississippi Timber Price Report dashboard
// and its JSON API, and exports filtered stumpage data from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timberprices.msstate.edu/internal/appconf"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// cfg is loaded once for every subcommand.
var cfg *appconf.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "timberprices",
	Short: "Mississippi Timber Price Report",
	Long: `Serves the Mississippi Timber Price Report: statewide stumpage prices
for common forest products, filterable by product type, quarter and year,
with a price chart and CSV download.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		loaded, err := appconf.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/timberprices.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("timberprices %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}
