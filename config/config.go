package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvCapitalUSD overrides capital.total_usd when set.
const EnvCapitalUSD = "CAPITAL_USD"

// Config represents the complete risk gate configuration
type Config struct {
	Capital CapitalConfig `json:"capital" yaml:"capital"`
	Risk    RiskConfig    `json:"risk" yaml:"risk"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// CapitalConfig is read once at startup and never re-read
type CapitalConfig struct {
	TotalUSD           float64            `json:"total_usd" yaml:"total_usd"`
	BasePositionPct    float64            `json:"base_position_pct" yaml:"base_position_pct"`
	StrategyAllocation map[string]float64 `json:"strategy_allocation,omitempty" yaml:"strategy_allocation,omitempty"`
}

// RiskConfig holds loss limits and dynamic sizing bounds. Percentages are
// fractions: 0.05 means 5%.
type RiskConfig struct {
	DailyMaxLossPct      float64 `json:"daily_max_loss_pct" yaml:"daily_max_loss_pct"`
	MonthlyMaxLossPct    float64 `json:"monthly_max_loss_pct" yaml:"monthly_max_loss_pct"`
	MaxDrawdownFromPeak  float64 `json:"max_drawdown_from_peak" yaml:"max_drawdown_from_peak"`
	TotalMaxLossPct      float64 `json:"total_max_loss_pct" yaml:"total_max_loss_pct"`
	PauseOnBreachMinutes int     `json:"pause_on_breach_minutes" yaml:"pause_on_breach_minutes"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`

	EnableDynamicSizing bool    `json:"enable_dynamic_sizing" yaml:"enable_dynamic_sizing"`
	MinPositionPct      float64 `json:"min_position_pct" yaml:"min_position_pct"`
	MaxPositionPct      float64 `json:"max_position_pct" yaml:"max_position_pct"`
	LossSizingReduction float64 `json:"loss_sizing_reduction" yaml:"loss_sizing_reduction"`
	WinSizingIncrease   float64 `json:"win_sizing_increase" yaml:"win_sizing_increase"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TradesFile    string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DecisionsFile string `json:"decisions_file,omitempty" yaml:"decisions_file,omitempty"`
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // empty disables the server
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON fallback),
// applies environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set are left alone.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvCapitalUSD); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvCapitalUSD, err)
		}
		c.Capital.TotalUSD = f
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Capital.TotalUSD <= 0 {
		return fmt.Errorf("capital.total_usd must be positive")
	}
	if c.Capital.BasePositionPct <= 0 || c.Capital.BasePositionPct > 1 {
		return fmt.Errorf("capital.base_position_pct must be between 0 and 1")
	}
	sum := 0.0
	for tag, share := range c.Capital.StrategyAllocation {
		if _, err := risk.ParseStrategy(tag); err != nil {
			return fmt.Errorf("capital.strategy_allocation: %w", err)
		}
		if share < 0 || share > 1 {
			return fmt.Errorf("capital.strategy_allocation.%s must be between 0 and 1", tag)
		}
		sum += share
	}
	if sum > 1+1e-9 {
		return fmt.Errorf("capital.strategy_allocation must sum to at most 1 (got %.2f)", sum)
	}

	r := c.Risk
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"risk.daily_max_loss_pct", r.DailyMaxLossPct},
		{"risk.monthly_max_loss_pct", r.MonthlyMaxLossPct},
		{"risk.max_drawdown_from_peak", r.MaxDrawdownFromPeak},
		{"risk.total_max_loss_pct", r.TotalMaxLossPct},
	} {
		if f.v <= 0 || f.v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", f.name)
		}
	}
	if r.PauseOnBreachMinutes <= 0 {
		return fmt.Errorf("risk.pause_on_breach_minutes must be positive")
	}
	if r.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("risk.max_consecutive_losses must not be negative")
	}
	if r.MinPositionPct <= 0 || r.MinPositionPct > 1 {
		return fmt.Errorf("risk.min_position_pct must be between 0 and 1")
	}
	if r.MaxPositionPct <= 0 || r.MaxPositionPct > 1 {
		return fmt.Errorf("risk.max_position_pct must be between 0 and 1")
	}
	if r.MinPositionPct > r.MaxPositionPct {
		return fmt.Errorf("risk.min_position_pct must not exceed risk.max_position_pct")
	}
	if r.LossSizingReduction < 0 || r.LossSizingReduction >= 1 {
		return fmt.Errorf("risk.loss_sizing_reduction must be in [0, 1)")
	}
	if r.WinSizingIncrease < 0 {
		return fmt.Errorf("risk.win_sizing_increase must not be negative")
	}

	switch c.Journal.Type {
	case "none", "":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.DecisionsFile == "" {
			return fmt.Errorf("journal trades_file and decisions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Policy converts the file settings into the engine's decimal policy.
func (c *Config) Policy() risk.Policy {
	r := c.Risk
	p := risk.Policy{
		TotalCapitalUSD:      decimal.NewFromFloat(c.Capital.TotalUSD),
		DailyMaxLossPct:      decimal.NewFromFloat(r.DailyMaxLossPct),
		MonthlyMaxLossPct:    decimal.NewFromFloat(r.MonthlyMaxLossPct),
		TotalMaxLossPct:      decimal.NewFromFloat(r.TotalMaxLossPct),
		MaxDrawdownFromPeak:  decimal.NewFromFloat(r.MaxDrawdownFromPeak),
		PauseOnBreach:        time.Duration(r.PauseOnBreachMinutes) * time.Minute,
		MaxConsecutiveLosses: r.MaxConsecutiveLosses,
		EnableDynamicSizing:  r.EnableDynamicSizing,
		MinPositionPct:       decimal.NewFromFloat(r.MinPositionPct),
		MaxPositionPct:       decimal.NewFromFloat(r.MaxPositionPct),
		LossSizingReduction:  decimal.NewFromFloat(r.LossSizingReduction),
		WinSizingIncrease:    decimal.NewFromFloat(r.WinSizingIncrease),
		Allocation:           make(map[risk.Strategy]decimal.Decimal, len(c.Capital.StrategyAllocation)),
	}
	for tag, share := range c.Capital.StrategyAllocation {
		if s, err := risk.ParseStrategy(tag); err == nil {
			p.Allocation[s] = decimal.NewFromFloat(share)
		}
	}
	return p
}

// BasePosition returns the configured base size as a decimal fraction.
func (c *Config) BasePosition() decimal.Decimal {
	return decimal.NewFromFloat(c.Capital.BasePositionPct)
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Capital: CapitalConfig{
			TotalUSD:        250,
			BasePositionPct: 0.02,
			StrategyAllocation: map[string]float64{
				"smartMoney": 0.60,
				"arbitrage":  0.20,
				"dipArb":     0.10,
				"direct":     0.10,
			},
		},
		Risk: RiskConfig{
			DailyMaxLossPct:      0.05,
			MonthlyMaxLossPct:    0.15,
			MaxDrawdownFromPeak:  0.25,
			TotalMaxLossPct:      0.40,
			PauseOnBreachMinutes: 60,
			MaxConsecutiveLosses: 6,
			EnableDynamicSizing:  true,
			MinPositionPct:       0.01,
			MaxPositionPct:       0.05,
			LossSizingReduction:  0.20,
			WinSizingIncrease:    0.10,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./riskgate.sqlite",
		},
		Log: LogConfig{Level: "info"},
	}
}
