package cmd

import (
	"fmt"

	"github.com/rustyeddy/riskgate/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage risk gate configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  riskgate config init -o riskgate.yaml
  riskgate config validate -f riskgate.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default limits.

Example:
  riskgate config init -o riskgate.yaml`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check if a configuration file is valid and can be loaded.
CAPITAL_USD in the environment (or --env-file) overrides capital.total_usd.

Example:
  riskgate config validate -f riskgate.yaml`,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
	configValidateEnv  string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "riskgate.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.Flags().StringVar(&configValidateEnv, "env-file", "", "optional .env file to load first")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nEdit the file and replay trades with:")
	fmt.Fprintf(out, "  riskgate replay -c %s -t trades.csv\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if configValidateEnv != "" {
		if err := config.LoadEnvFile(configValidateEnv); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	r := cfg.Risk
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Capital: $%.2f (base position %.1f%%)\n", cfg.Capital.TotalUSD, cfg.Capital.BasePositionPct*100)
	fmt.Fprintf(out, "  Limits: daily %.1f%%, monthly %.1f%%, drawdown %.1f%%, total %.1f%%\n",
		r.DailyMaxLossPct*100, r.MonthlyMaxLossPct*100, r.MaxDrawdownFromPeak*100, r.TotalMaxLossPct*100)
	fmt.Fprintf(out, "  Pause on breach: %d min\n", r.PauseOnBreachMinutes)
	fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
	return nil
}
