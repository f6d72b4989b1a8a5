package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trade-journal/internal/models"
	"trade-journal/internal/service"
	"trade-journal/internal/store"
)

const commandTimeout = 30 * time.Second

// commandContext bounds a command's storage calls.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, commandTimeout)
}

// parseWhen accepts RFC 3339, "2006-01-02 15:04" or a plain date in local time.
func parseWhen(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, time.Local); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339)", raw)
	}
	return t, nil
}

// addTradeCommands adds trade logging commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Log and review trades",
		Long:  "Record closed trades and manage your trade history.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeEditCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <symbol> <long|short>",
		Short: "Log a closed trade",
		Long: `Log a closed trade. Profit and outcome are derived from the direction
and the entry and exit prices. Achievements and streaks update immediately.`,
		Example: `  journal trade add AAPL long --entry 150 --exit 155 --size 0.02
  journal trade add ES short --entry 5300 --exit 5280 --strategy breakout --emotion calm`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			entry, _ := cmd.Flags().GetFloat64("entry")
			exit, _ := cmd.Flags().GetFloat64("exit")
			stop, _ := cmd.Flags().GetFloat64("stop")
			target, _ := cmd.Flags().GetFloat64("target")
			size, _ := cmd.Flags().GetFloat64("size")
			at, _ := cmd.Flags().GetString("at")
			strategy, _ := cmd.Flags().GetString("strategy")
			emotions, _ := cmd.Flags().GetStringSlice("emotion")
			notes, _ := cmd.Flags().GetString("notes")
			screenshots, _ := cmd.Flags().GetStringSlice("screenshot")
			playbook, _ := cmd.Flags().GetString("playbook")

			ts, err := parseWhen(at)
			if err != nil {
				return err
			}
			if playbook == "" {
				if p, ok := app.Journal.ActivePlaybook(); ok {
					playbook = p.ID
				}
			}

			res, err := app.Journal.AddTrade(ctx, models.TradeInput{
				Symbol:       args[0],
				Direction:    models.Direction(strings.ToLower(args[1])),
				EntryPrice:   entry,
				ExitPrice:    exit,
				StopLoss:     stop,
				TakeProfit:   target,
				PositionSize: size,
				Timestamp:    ts,
				Strategy:     strategy,
				Emotions:     emotions,
				Notes:        notes,
				Screenshots:  screenshots,
				PlaybookID:   playbook,
			})
			if err != nil {
				output.Error("Failed to log trade: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Success("✓ Trade %s logged: %s %s %s", res.Trade.ID, res.Trade.Symbol,
				strings.ToUpper(string(res.Trade.Direction)), output.FormatPnL(res.Trade.Profit))
			printTradeResult(output, res)
			return nil
		},
	}

	cmd.Flags().Float64("entry", 0, "Entry price")
	cmd.Flags().Float64("exit", 0, "Exit price")
	cmd.Flags().Float64("stop", 0, "Stop loss price")
	cmd.Flags().Float64("target", 0, "Take profit price")
	cmd.Flags().Float64("size", 0, "Position size as a fraction of the account (0-1)")
	cmd.Flags().String("at", "", "Trade time (default: now)")
	cmd.Flags().String("strategy", "", "Strategy name")
	cmd.Flags().StringSlice("emotion", nil, "Emotion tags (repeatable)")
	cmd.Flags().String("notes", "", "Free-form notes")
	cmd.Flags().StringSlice("screenshot", nil, "Screenshot references (repeatable)")
	cmd.Flags().String("playbook", "", "Playbook id (default: active playbook)")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("exit")

	return cmd
}

// printTradeResult reports unlocks and streaks after a mutation.
func printTradeResult(output *Output, res service.TradeResult) {
	for _, a := range res.Unlocked {
		output.Printf("  %s %s unlocked (+%d XP)\n", a.Icon, output.Yellow(a.Title), a.XPReward)
	}
	for _, s := range res.Streaks {
		output.Dim("  %s streak: %d (longest %d)", s.Cadence, s.Current, s.Longest)
	}
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		Long:  "List logged trades, oldest first. Filters combine.",
		Example: `  journal trade list
  journal trade list --symbol AAPL --from 2024-05-01 --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			symbol, _ := cmd.Flags().GetString("symbol")
			strategy, _ := cmd.Flags().GetString("strategy")
			direction, _ := cmd.Flags().GetString("direction")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")
			limit, _ := cmd.Flags().GetInt("limit")

			filter := store.TradeFilter{
				Symbol:    strings.ToUpper(symbol),
				Strategy:  strategy,
				Direction: models.Direction(strings.ToLower(direction)),
				Limit:     limit,
			}
			if filter.Direction != "" && !filter.Direction.Valid() {
				return fmt.Errorf("direction must be long or short")
			}
			var err error
			if filter.StartDate, err = parseWhen(from); err != nil {
				return err
			}
			if filter.EndDate, err = parseWhen(to); err != nil {
				return err
			}

			trades := app.Journal.Trades(filter)
			if output.IsJSON() {
				if trades == nil {
					trades = []models.Trade{}
				}
				return output.JSON(trades)
			}
			if len(trades) == 0 {
				output.Info("No trades found.")
				return nil
			}

			var net float64
			table := NewTable(output, "ID", "Time", "Symbol", "Side", "Entry", "Exit", "P&L", "Size", "Strategy")
			for _, t := range trades {
				net += t.Profit
				table.AddRow(
					t.ID,
					FormatDate(t.Timestamp, app.Config.UI.DateFormat),
					t.Symbol,
					strings.ToUpper(string(t.Direction)),
					FormatMoney(t.EntryPrice),
					FormatMoney(t.ExitPrice),
					output.FormatPnL(t.Profit),
					fmt.Sprintf("%.1f%%", t.PositionSize*100),
					TruncateString(t.Strategy, 15),
				)
			}
			table.Render()
			output.Println()
			output.Printf("%d trades, net %s\n", len(trades), output.FormatPnL(net))
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "Filter by symbol")
	cmd.Flags().String("strategy", "", "Filter by strategy")
	cmd.Flags().String("direction", "", "Filter by direction (long, short)")
	cmd.Flags().String("from", "", "Only trades at or after this time")
	cmd.Flags().String("to", "", "Only trades at or before this time")
	cmd.Flags().Int("limit", 0, "Show only the most recent N trades")

	return cmd
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show one trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			t, err := app.Journal.GetTrade(args[0])
			if err != nil {
				output.Error("%v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(t)
			}

			output.Bold("Trade %s", t.ID)
			output.Printf("  Symbol:      %s\n", t.Symbol)
			output.Printf("  Direction:   %s\n", strings.ToUpper(string(t.Direction)))
			output.Printf("  Time:        %s\n", FormatDate(t.Timestamp, app.Config.UI.DateFormat))
			output.Printf("  Entry:       %s\n", FormatMoney(t.EntryPrice))
			output.Printf("  Exit:        %s\n", FormatMoney(t.ExitPrice))
			if t.StopLoss > 0 {
				output.Printf("  Stop:        %s\n", FormatMoney(t.StopLoss))
			}
			if t.TakeProfit > 0 {
				output.Printf("  Target:      %s\n", FormatMoney(t.TakeProfit))
			}
			output.Printf("  P&L:         %s (%s)\n", output.FormatPnL(t.Profit), output.FormatPercent(t.ProfitPercent))
			output.Printf("  Outcome:     %s\n", t.Outcome)
			output.Printf("  Size:        %.2f%%\n", t.PositionSize*100)
			output.Printf("  Strategy:    %s\n", orDash(t.Strategy))
			output.Printf("  Emotions:    %s\n", JoinOrDash(t.Emotions))
			output.Printf("  Playbook:    %s\n", orDash(t.PlaybookID))
			if t.Notes != "" {
				output.Println()
				output.Bold("Notes")
				output.Printf("  %s\n", t.Notes)
			}
			if len(t.Screenshots) > 0 {
				output.Println()
				output.Bold("Screenshots")
				for _, s := range t.Screenshots {
					output.Printf("  %s\n", s)
				}
			}
			return nil
		},
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newTradeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a trade",
		Long: `Edit a logged trade. Only the flags you pass are changed; profit is
recomputed when the direction or a price changes.`,
		Example: `  journal trade edit 01HX... --exit 157.5
  journal trade edit 01HX... --notes "moved stop too early" --emotion fearful`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			u, err := tradeUpdateFromFlags(cmd)
			if err != nil {
				return err
			}
			res, err := app.Journal.UpdateTrade(ctx, args[0], u)
			if err != nil {
				output.Error("Failed to update trade: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(res)
			}
			output.Success("✓ Trade %s updated: %s", res.Trade.ID, output.FormatPnL(res.Trade.Profit))
			printTradeResult(output, res)
			return nil
		},
	}

	cmd.Flags().String("symbol", "", "Symbol")
	cmd.Flags().String("direction", "", "Direction (long, short)")
	cmd.Flags().Float64("entry", 0, "Entry price")
	cmd.Flags().Float64("exit", 0, "Exit price")
	cmd.Flags().Float64("stop", 0, "Stop loss price")
	cmd.Flags().Float64("target", 0, "Take profit price")
	cmd.Flags().Float64("size", 0, "Position size as a fraction of the account (0-1)")
	cmd.Flags().String("at", "", "Trade time")
	cmd.Flags().String("strategy", "", "Strategy name")
	cmd.Flags().StringSlice("emotion", nil, "Replace emotion tags")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().StringSlice("screenshot", nil, "Replace screenshot references")
	cmd.Flags().String("playbook", "", "Playbook id")

	return cmd
}

// tradeUpdateFromFlags builds a partial update from the flags that were set.
func tradeUpdateFromFlags(cmd *cobra.Command) (models.TradeUpdate, error) {
	var u models.TradeUpdate
	flags := cmd.Flags()

	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	num := func(name string) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetFloat64(name)
		return &v
	}

	u.Symbol = str("symbol")
	if d := str("direction"); d != nil {
		dir := models.Direction(strings.ToLower(*d))
		u.Direction = &dir
	}
	u.EntryPrice = num("entry")
	u.ExitPrice = num("exit")
	u.StopLoss = num("stop")
	u.TakeProfit = num("target")
	u.PositionSize = num("size")
	u.Strategy = str("strategy")
	u.Notes = str("notes")
	u.PlaybookID = str("playbook")
	if at := str("at"); at != nil {
		ts, err := parseWhen(*at)
		if err != nil {
			return u, err
		}
		u.Timestamp = &ts
	}
	if flags.Changed("emotion") {
		u.Emotions, _ = flags.GetStringSlice("emotion")
		if u.Emotions == nil {
			u.Emotions = []string{}
		}
	}
	if flags.Changed("screenshot") {
		u.Screenshots, _ = flags.GetStringSlice("screenshot")
		if u.Screenshots == nil {
			u.Screenshots = []string{}
		}
	}
	return u, nil
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Long:  "Delete a trade. Achievements already unlocked stay unlocked.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := commandContext(cmd)
			defer cancel()

			if err := app.Journal.DeleteTrade(ctx, args[0]); err != nil {
				output.Error("Failed to delete trade: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Trade %s deleted", args[0])
			return nil
		},
	}
}
