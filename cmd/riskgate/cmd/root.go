package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskgate",
	Short: "Risk gating and position sizing for automated trading strategies",
	Long: `Riskgate decides whether a trading bot may open a new position and how
large that position should be.

It provides tools for:
  - Layered daily, monthly, drawdown and total loss limits
  - Cooldown pauses and a permanent halt
  - Streak-aware dynamic position sizing
  - Replaying recorded trade outcomes through the gate
  - Querying the trade and decision journal

Complete documentation is available at https://github.com/rustyeddy/riskgate`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
