package journal

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: for any valid trade, Add followed by Get returns a record whose
// profit sign matches its direction and prices.
func TestProperty_ProfitSignMatchesDirection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("Add then Get preserves the profit invariant", prop.ForAll(
		func(short bool, entry, exit, size float64) bool {
			book := NewTradeBook(nil)
			dir := models.DirectionLong
			if short {
				dir = models.DirectionShort
			}

			added, err := book.Add(context.Background(), models.TradeInput{
				Symbol:       "ES",
				Direction:    dir,
				EntryPrice:   entry,
				ExitPrice:    exit,
				PositionSize: size,
			})
			if err != nil {
				t.Logf("Add failed: %v", err)
				return false
			}

			got, ok := book.Get(added.ID)
			if !ok {
				return false
			}

			want := exit - entry
			if short {
				want = entry - exit
			}
			if got.Profit != want {
				return false
			}
			if (got.Profit < 0) != (got.Outcome == models.OutcomeLoss) {
				return false
			}
			return true
		},
		gen.Bool(),
		gen.Float64Range(0, 10000),
		gen.Float64Range(0, 10000),
		gen.Float64Range(0, 1),
	))

	// Property: after any sequence of updates the derived fields match the
	// current direction and prices.
	properties.Property("Update keeps derived fields consistent", prop.ForAll(
		func(entry, exit, newExit float64, flip bool) bool {
			book := NewTradeBook(nil)
			ctx := context.Background()
			tr, err := book.Add(ctx, models.TradeInput{
				Symbol: "NQ", Direction: models.DirectionLong, EntryPrice: entry, ExitPrice: exit,
			})
			if err != nil {
				return false
			}

			u := models.TradeUpdate{ExitPrice: &newExit}
			if flip {
				d := models.DirectionShort
				u.Direction = &d
			}
			updated, err := book.Update(ctx, tr.ID, u)
			if err != nil {
				return false
			}
			return updated.Profit == models.CalculateProfit(updated.Direction, updated.EntryPrice, updated.ExitPrice)
		},
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 1000),
		gen.Float64Range(0, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
