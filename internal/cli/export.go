package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"trade-journal/internal/models"
	"trade-journal/internal/service"
	"trade-journal/internal/stats"
	"trade-journal/internal/store"
)

// csvTrade is one exported CSV row.
type csvTrade struct {
	ID            string  `csv:"id"`
	Timestamp     string  `csv:"timestamp"`
	Symbol        string  `csv:"symbol"`
	Direction     string  `csv:"direction"`
	EntryPrice    float64 `csv:"entry_price"`
	ExitPrice     float64 `csv:"exit_price"`
	StopLoss      float64 `csv:"stop_loss"`
	TakeProfit    float64 `csv:"take_profit"`
	Profit        float64 `csv:"profit"`
	ProfitPercent float64 `csv:"profit_percent"`
	Outcome       string  `csv:"outcome"`
	PositionSize  float64 `csv:"position_size"`
	Strategy      string  `csv:"strategy"`
	Emotions      string  `csv:"emotions"`
	PlaybookID    string  `csv:"playbook_id"`
	Notes         string  `csv:"notes"`
}

func toCSVRows(trades []models.Trade) []*csvTrade {
	rows := make([]*csvTrade, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &csvTrade{
			ID:            t.ID,
			Timestamp:     t.Timestamp.UTC().Format(time.RFC3339),
			Symbol:        t.Symbol,
			Direction:     string(t.Direction),
			EntryPrice:    t.EntryPrice,
			ExitPrice:     t.ExitPrice,
			StopLoss:      t.StopLoss,
			TakeProfit:    t.TakeProfit,
			Profit:        t.Profit,
			ProfitPercent: t.ProfitPercent,
			Outcome:       string(t.Outcome),
			PositionSize:  t.PositionSize,
			Strategy:      t.Strategy,
			Emotions:      strings.Join(t.Emotions, ";"),
			PlaybookID:    t.PlaybookID,
			Notes:         t.Notes,
		})
	}
	return rows
}

// exportBundle is the YAML document: the whole journal in one file.
type exportBundle struct {
	ExportedAt   time.Time         `yaml:"exported_at"`
	Profile      exportProfile     `yaml:"profile"`
	Summary      stats.Summary     `yaml:"summary"`
	Achievements []string          `yaml:"achievements"`
	Playbooks    []models.Playbook `yaml:"playbooks"`
	Trades       []models.Trade    `yaml:"trades"`
}

type exportProfile struct {
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email,omitempty"`
	Level      int      `yaml:"level"`
	Experience int      `yaml:"experience"`
	Badges     []string `yaml:"badges"`
}

func buildBundle(j *service.Journal, trades []models.Trade) exportBundle {
	p := j.Profile()
	playbooks, _ := j.Playbooks()
	var unlocked []string
	for _, s := range j.Achievements() {
		if s.Unlocked {
			unlocked = append(unlocked, s.ID)
		}
	}
	return exportBundle{
		ExportedAt: j.Now().UTC(),
		Profile: exportProfile{
			Name:       p.Name,
			Email:      p.Email,
			Level:      p.Level,
			Experience: p.Experience,
			Badges:     p.Badges,
		},
		Summary:      stats.Summarize(trades),
		Achievements: unlocked,
		Playbooks:    playbooks,
		Trades:       trades,
	}
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the journal",
		Long: `Export trades as CSV, or the whole journal (profile, unlocked
achievements, playbooks and trades) as YAML.`,
		Example: `  journal export --format csv > trades.csv
  journal export --format yaml --output journal.yaml
  journal export --format csv --from 2024-01-01 --symbol AAPL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("output")
			symbol, _ := cmd.Flags().GetString("symbol")
			from, _ := cmd.Flags().GetString("from")
			to, _ := cmd.Flags().GetString("to")

			filter := store.TradeFilter{Symbol: strings.ToUpper(symbol)}
			var err error
			if filter.StartDate, err = parseWhen(from); err != nil {
				return err
			}
			if filter.EndDate, err = parseWhen(to); err != nil {
				return err
			}
			trades := app.Journal.Trades(filter)

			var w io.Writer = cmd.OutOrStdout()
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer f.Close()
				w = f
			}

			switch strings.ToLower(format) {
			case "csv":
				err = gocsv.Marshal(toCSVRows(trades), w)
			case "yaml", "yml":
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err = enc.Encode(buildBundle(app.Journal, trades)); err == nil {
					err = enc.Close()
				}
			default:
				return fmt.Errorf("unknown export format %q (want csv or yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("writing %s export: %w", format, err)
			}

			app.Logger.Info().Str("format", format).Int("trades", len(trades)).Str("path", path).Msg("Journal exported")
			if path != "" {
				NewOutput(cmd).Success("✓ Exported %d trades to %s", len(trades), path)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "csv", "Export format: csv or yaml")
	cmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().String("symbol", "", "Only trades for this symbol")
	cmd.Flags().String("from", "", "Only trades at or after this time")
	cmd.Flags().String("to", "", "Only trades at or before this time")

	return cmd
}
