package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "sunledger",
	Short: "Solar generation loss decomposition",
	Long: `sunledger maintains a local archive of hourly solar meter data,
fits a potential-generation envelope against solar position, and reports
loss ratios, capacity factors, and degradation trends.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }
