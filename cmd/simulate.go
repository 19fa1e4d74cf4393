package cmd

import "github.com/spf13/cobra"

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run dispatch episodes from config and CSV inputs",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}
