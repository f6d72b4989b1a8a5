package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: saving a trade and reading it back yields the same trade.
func TestProperty_TradeRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "trades_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "MSFT", "EURUSD", "BTCUSD", "ES", "NQ", "TSLA", "GBPJPY"}
	base := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	seq := 0

	properties.Property("Trade round-trip: save then get produces equivalent data", prop.ForAll(
		func(symbolIdx int, short bool, entry, exit, size float64, minutes int) bool {
			ctx := context.Background()
			seq++

			dir := models.DirectionLong
			if short {
				dir = models.DirectionShort
			}
			trade := models.Trade{
				ID:           fmt.Sprintf("prop-%06d", seq),
				Symbol:       symbols[symbolIdx%len(symbols)],
				Direction:    dir,
				EntryPrice:   entry,
				ExitPrice:    exit,
				PositionSize: size,
				Timestamp:    base.Add(time.Duration(minutes) * time.Minute),
				Strategy:     "breakout",
				Emotions:     []string{"calm"},
			}
			trade.Recalculate()

			if err := store.SaveTrade(ctx, &trade); err != nil {
				t.Logf("Failed to save trade: %v", err)
				return false
			}

			got, err := store.GetTrade(ctx, trade.ID)
			if err != nil {
				t.Logf("Failed to get trade: %v", err)
				return false
			}

			return got.Symbol == trade.Symbol &&
				got.Direction == trade.Direction &&
				floatEquals(got.EntryPrice, trade.EntryPrice) &&
				floatEquals(got.ExitPrice, trade.ExitPrice) &&
				floatEquals(got.Profit, trade.Profit) &&
				floatEquals(got.PositionSize, trade.PositionSize) &&
				got.Outcome == trade.Outcome &&
				got.Timestamp.Equal(trade.Timestamp) &&
				len(got.Emotions) == 1 && got.Emotions[0] == "calm"
		},
		gen.IntRange(0, 100),
		gen.Bool(),
		gen.Float64Range(1.0, 5000.0),
		gen.Float64Range(1.0, 5000.0),
		gen.Float64Range(0.0, 1.0),
		gen.IntRange(0, 60*24*365),
	))

	properties.TestingRun(t)
}

// Property: GetTrades returns trades in the order they were logged, whatever
// their timestamps.
func TestProperty_TradesKeepLogOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	run := 0

	properties.Property("GetTrades follows id order", prop.ForAll(
		func(offsets []int) bool {
			run++
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), fmt.Sprintf("order_%d.db", run)))
			if err != nil {
				t.Logf("Failed to create store: %v", err)
				return false
			}
			defer store.Close()

			ctx := context.Background()
			for i, off := range offsets {
				tr := models.Trade{
					ID:         fmt.Sprintf("t-%03d", i),
					Symbol:     "SPY",
					Direction:  models.DirectionLong,
					EntryPrice: 100,
					ExitPrice:  101,
					Timestamp:  base.Add(time.Duration(off) * time.Hour),
				}
				tr.Recalculate()
				if err := store.SaveTrade(ctx, &tr); err != nil {
					return false
				}
			}

			trades, err := store.GetTrades(ctx, TradeFilter{})
			if err != nil || len(trades) != len(offsets) {
				return false
			}
			for i, tr := range trades {
				if tr.ID != fmt.Sprintf("t-%03d", i) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.TestingRun(t)
}

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
