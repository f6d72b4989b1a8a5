package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

// addStatsCommands adds performance statistics commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Performance statistics",
		Long:  "Summaries, breakdowns and a monthly calendar of your trade history.",
	}

	cmd.AddCommand(newStatsSummaryCmd(app))
	cmd.AddCommand(newStatsBreakdownCmd(app))
	cmd.AddCommand(newStatsCalendarCmd(app))

	rootCmd.AddCommand(cmd)
}

func newStatsSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Overall performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			s := app.Journal.Summary()
			current := app.Journal.CurrentRun()
			longestWin, longestLoss := stats.LongestRuns(app.Journal.Trades(store.TradeFilter{}))

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"summary":      s,
					"current_run":  current,
					"longest_win":  longestWin,
					"longest_loss": longestLoss,
				})
			}
			if s.TotalTrades == 0 {
				output.Info("No trades logged yet.")
				return nil
			}

			output.Bold("Performance")
			output.Printf("  Trades:         %d (%d wins, %d losses)\n", s.TotalTrades, s.Wins, s.Losses)
			output.Printf("  Win rate:       %.1f%%\n", s.WinRate)
			output.Printf("  Net P&L:        %s\n", output.FormatPnL(s.NetProfit))
			output.Printf("  Gross profit:   %s\n", output.FormatPnL(s.GrossProfit))
			output.Printf("  Gross loss:     %s\n", output.FormatPnL(s.GrossLoss))
			output.Printf("  Profit factor:  %s\n", FormatRatio(s.ProfitFactor))
			output.Printf("  Expectancy:     %s\n", output.FormatPnL(s.Expectancy))
			output.Println()
			output.Bold("Trades")
			output.Printf("  Average win:    %s\n", output.FormatPnL(s.AverageWin))
			output.Printf("  Average loss:   %s\n", output.FormatPnL(s.AverageLoss))
			output.Printf("  Largest win:    %s\n", output.FormatPnL(s.LargestWin))
			output.Printf("  Largest loss:   %s\n", output.FormatPnL(s.LargestLoss))
			output.Println()
			output.Bold("Runs")
			output.Printf("  Current:        %s\n", describeRun(output, current))
			output.Printf("  Longest:        %d wins, %d losses\n", longestWin, longestLoss)
			return nil
		},
	}
}

func describeRun(output *Output, r stats.Run) string {
	switch r.Kind {
	case stats.RunWin:
		return output.Green(fmt.Sprintf("%d wins", r.Length))
	case stats.RunLoss:
		return output.Red(fmt.Sprintf("%d losses", r.Length))
	}
	return "-"
}

func newStatsBreakdownCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Results grouped by symbol, strategy, emotion or direction",
		Example: `  journal stats breakdown
  journal stats breakdown --by emotion`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			by, _ := cmd.Flags().GetString("by")
			key, err := stats.ParseGroupKey(by)
			if err != nil {
				return err
			}

			groups := app.Journal.Breakdown(key)
			if output.IsJSON() {
				if groups == nil {
					groups = []stats.Group{}
				}
				return output.JSON(groups)
			}
			if len(groups) == 0 {
				output.Info("No trades logged yet.")
				return nil
			}

			table := NewTable(output, strings.ToUpper(string(key)[:1])+string(key)[1:], "Trades", "Wins", "Win Rate", "Net P&L")
			for _, g := range groups {
				table.AddRow(g.Key, strconv.Itoa(g.Trades), strconv.Itoa(g.Wins),
					fmt.Sprintf("%.1f%%", g.WinRate), output.FormatPnL(g.NetProfit))
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().String("by", string(stats.BySymbol), "Group by: symbol, strategy, emotion, direction")
	return cmd
}

func newStatsCalendarCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Daily results for one month",
		Example: `  journal stats calendar
  journal stats calendar --month 2024-05`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			now := app.Journal.Now()
			year, month := now.Year(), now.Month()
			if raw, _ := cmd.Flags().GetString("month"); raw != "" {
				t, err := time.ParseInLocation("2006-01", raw, now.Location())
				if err != nil {
					return fmt.Errorf("month must be YYYY-MM: %q", raw)
				}
				year, month = t.Year(), t.Month()
			}

			days := app.Journal.Calendar(year, month, now.Location())
			if output.IsJSON() {
				return output.JSON(days)
			}

			output.Bold("%s %d", month, year)
			var net float64
			traded := 0
			table := NewTable(output, "Date", "Trades", "Wins", "Net P&L")
			for _, d := range days {
				if d.Trades == 0 {
					continue
				}
				traded++
				net += d.NetProfit
				table.AddRow(d.Date.Format("Mon 02"), strconv.Itoa(d.Trades), strconv.Itoa(d.Wins),
					output.FormatPnL(d.NetProfit))
			}
			if traded == 0 {
				output.Info("No trades this month.")
				return nil
			}
			table.Render()
			output.Println()
			output.Printf("%d trading days, net %s\n", traded, output.FormatPnL(net))
			return nil
		},
	}
	cmd.Flags().String("month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}
