package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/riskgate/config"
	"github.com/rustyeddy/riskgate/journal"
	"github.com/rustyeddy/riskgate/metrics"
	"github.com/rustyeddy/riskgate/pkg/logging"
	"github.com/rustyeddy/riskgate/replay"
	"github.com/rustyeddy/riskgate/risk"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded trade outcomes through the risk gate",
	Long: `Feed a CSV of realized trade outcomes through the gate, using each row's
timestamp as the clock. Denied rows are skipped; allowed rows are sized and
recorded. A session summary is printed in org-mode when the file is done.

CSV columns:
  time,strategy,base_size,profit

An empty base_size uses capital.base_position_pct from the config.

Example:
  riskgate replay -c riskgate.yaml -t trades.csv --metrics-addr :9102`,
	RunE: runReplay,
}

var (
	replayConfigPath  string
	replayTradesPath  string
	replayEnvFile     string
	replayMetricsAddr string
	replayLogLevel    string
	replayFrom        string
	replayTo          string
	replayHold        bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfigPath, "config", "c", "", "path to config file (YAML or JSON) (required)")
	replayCmd.Flags().StringVarP(&replayTradesPath, "trades", "t", "", "trade outcome CSV (required)")
	replayCmd.Flags().StringVar(&replayEnvFile, "env-file", "", "optional .env file (CAPITAL_USD)")
	replayCmd.Flags().StringVar(&replayMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	replayCmd.Flags().StringVar(&replayLogLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	replayCmd.Flags().StringVar(&replayFrom, "from", "", "optional RFC3339 start time")
	replayCmd.Flags().StringVar(&replayTo, "to", "", "optional RFC3339 end time")
	replayCmd.Flags().BoolVar(&replayHold, "hold", false, "keep the metrics server up after the replay until interrupted")
	replayCmd.MarkFlagRequired("config")
	replayCmd.MarkFlagRequired("trades")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayEnvFile != "" {
		if err := config.LoadEnvFile(replayEnvFile); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFromFile(replayConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if replayMetricsAddr != "" {
		cfg.Metrics.Addr = replayMetricsAddr
	}
	if replayLogLevel != "" {
		cfg.Log.Level = replayLogLevel
	}

	from, to, err := parseRange(replayFrom, replayTo)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	if j != nil {
		defer j.Close()
	}

	collector := metrics.NewCollector()
	srvCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	served := metrics.Serve(srvCtx, cfg.Metrics.Addr, collector.Registry(), log)

	opts := []risk.Option{risk.WithListener(collector.Observe)}
	if j != nil {
		opts = append(opts, risk.WithListener(journal.Listener(j, log)))
	}
	drv := replay.NewDriver(cfg.Policy(), cfg.BasePosition(), log, opts...)

	feed, err := replay.OpenFeed(replayTradesPath, from, to)
	if err != nil {
		return fmt.Errorf("open trades: %w", err)
	}
	defer feed.Close()

	log.Info("replay starting",
		zap.String("trades", replayTradesPath),
		zap.Float64("capital_usd", cfg.Capital.TotalUSD),
		zap.String("journal", cfg.Journal.Type))

	sess, err := drv.Run(ctx, feed)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	if err := sess.WriteSessionOrg(cmd.OutOrStdout()); err != nil {
		return err
	}

	if replayHold && cfg.Metrics.Addr != "" {
		log.Info("holding metrics server; interrupt to exit", zap.String("addr", cfg.Metrics.Addr))
		<-ctx.Done()
	}
	stopServer()
	<-served
	return nil
}

// openJournal returns nil when journaling is disabled.
func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.DecisionsFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	}
	return nil, nil
}

func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if fromStr != "" {
		if from, err = time.Parse(time.RFC3339Nano, fromStr); err != nil {
			return from, to, fmt.Errorf("bad --from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse(time.RFC3339Nano, toStr); err != nil {
			return from, to, fmt.Errorf("bad --to: %w", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return from, to, fmt.Errorf("--from must be before --to")
	}
	return from, to, nil
}
