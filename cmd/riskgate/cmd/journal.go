package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/riskgate/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query trade and gate decision journal data",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  trade      - Get details of a specific trade by ID
  trades     - List trades in a time range (default: today)
  decisions  - List gate pauses, resumes and halts in a time range

Examples:
  riskgate journal trade <trade-id>
  riskgate journal trades --from 2026-03-02
  riskgate journal decisions --from 2026-03-01 --to 2026-04-01`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List trades recorded in a time range",
	Args:  cobra.NoArgs,
	RunE:  runJournalTrades,
}

var journalDecisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "List gate transitions in a time range",
	Args:  cobra.NoArgs,
	RunE:  runJournalDecisions,
}

var (
	journalDBPath string
	journalFrom   string
	journalTo     string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalDecisionsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./riskgate.sqlite", "path to SQLite journal DB")
	for _, c := range []*cobra.Command{journalTradesCmd, journalDecisionsCmd} {
		c.Flags().StringVar(&journalFrom, "from", "", "start day (YYYY-MM-DD) or RFC3339 time; default today")
		c.Flags().StringVar(&journalTo, "to", "", "end (exclusive); default one day after --from")
	}
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	start, end, err := rangeBounds(time.Local, journalFrom, journalTo, time.Now())
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListTradesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalDecisions(cmd *cobra.Command, args []string) error {
	start, end, err := rangeBounds(time.Local, journalFrom, journalTo, time.Now())
	if err != nil {
		return err
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListDecisionsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query decisions: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatDecisionsOrg(recs))
	return nil
}

// rangeBounds turns --from/--to into [start, end). Bare days are midnight in
// loc; an empty --from means the day containing now.
func rangeBounds(loc *time.Location, from, to string, now time.Time) (time.Time, time.Time, error) {
	var start time.Time
	if from == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	} else {
		t, err := parseWhen(loc, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --from: %w", err)
		}
		start = t
	}

	end := start.AddDate(0, 0, 1)
	if to != "" {
		t, err := parseWhen(loc, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --to: %w", err)
		}
		end = t
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}
	return start, end, nil
}

func parseWhen(loc *time.Location, s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
