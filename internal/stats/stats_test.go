package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal/internal/models"
)

func trade(symbol string, profit float64) models.Trade {
	return models.Trade{Symbol: symbol, Direction: models.DirectionLong, Profit: profit}
}

func TestSummarize(t *testing.T) {
	trades := []models.Trade{
		trade("ES", 10),
		trade("ES", -4),
		trade("NQ", 6),
		trade("NQ", 0),
		trade("CL", -6),
	}
	s := Summarize(trades)

	assert.Equal(t, 5, s.TotalTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.InDelta(t, 40.0, s.WinRate, 1e-9)
	assert.InDelta(t, 16.0, s.GrossProfit, 1e-9)
	assert.InDelta(t, -10.0, s.GrossLoss, 1e-9)
	assert.InDelta(t, 6.0, s.NetProfit, 1e-9)
	assert.InDelta(t, 1.6, s.ProfitFactor, 1e-9)
	assert.InDelta(t, 8.0, s.AverageWin, 1e-9)
	assert.InDelta(t, -5.0, s.AverageLoss, 1e-9)
	assert.InDelta(t, 10.0, s.LargestWin, 1e-9)
	assert.InDelta(t, -6.0, s.LargestLoss, 1e-9)
	assert.InDelta(t, 1.2, s.Expectancy, 1e-9)
}

func TestSummarizeEmptyAndNoLosses(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]models.Trade{trade("ES", 3)})
	assert.Equal(t, 0.0, s.ProfitFactor)
	assert.Equal(t, 100.0, s.WinRate)
}

func TestGroupBy(t *testing.T) {
	trades := []models.Trade{
		{Symbol: "ES", Direction: models.DirectionLong, Profit: 5, Strategy: "breakout", Emotions: []string{"calm"}},
		{Symbol: "ES", Direction: models.DirectionShort, Profit: -2, Emotions: []string{"fomo", "fomo", "anxious"}},
		{Symbol: "NQ", Direction: models.DirectionLong, Profit: 1, Strategy: "breakout"},
	}

	bySymbol := GroupBy(trades, BySymbol)
	require.Len(t, bySymbol, 2)
	assert.Equal(t, Group{Key: "ES", Trades: 2, Wins: 1, NetProfit: 3, WinRate: 50}, bySymbol[0])
	assert.Equal(t, "NQ", bySymbol[1].Key)

	byStrategy := GroupBy(trades, ByStrategy)
	require.Len(t, byStrategy, 2)
	assert.Equal(t, "breakout", byStrategy[0].Key)
	assert.Equal(t, Unlabeled, byStrategy[1].Key)

	byEmotion := GroupBy(trades, ByEmotion)
	require.Len(t, byEmotion, 3)
	assert.Equal(t, "calm", byEmotion[0].Key)
	// Ties on net profit sort by key.
	assert.Equal(t, "anxious", byEmotion[1].Key)
	assert.Equal(t, 1, byEmotion[2].Trades, "duplicate tags count once")

	byDirection := GroupBy(trades, ByDirection)
	require.Len(t, byDirection, 2)
	assert.Equal(t, "long", byDirection[0].Key)
}

func TestParseGroupKey(t *testing.T) {
	k, err := ParseGroupKey("emotion")
	require.NoError(t, err)
	assert.Equal(t, ByEmotion, k)

	_, err = ParseGroupKey("weekday")
	assert.Error(t, err)
}

func TestCalendar(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	trades := []models.Trade{
		{Profit: 4, Timestamp: time.Date(2024, 2, 1, 14, 0, 0, 0, time.UTC)},
		{Profit: -1, Timestamp: time.Date(2024, 2, 1, 16, 0, 0, 0, time.UTC)},
		// 03:00 UTC on March 1 is still February 29 in EST.
		{Profit: 2, Timestamp: time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)},
		{Profit: 9, Timestamp: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)},
	}

	days := Calendar(trades, 2024, time.February, loc)
	require.Len(t, days, 29)
	assert.Equal(t, 2, days[0].Trades)
	assert.Equal(t, 1, days[0].Wins)
	assert.InDelta(t, 3.0, days[0].NetProfit, 1e-9)
	assert.Equal(t, 1, days[28].Trades)
	assert.Equal(t, 0, days[10].Trades)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), days[28].Date)
}

func TestCurrentRun(t *testing.T) {
	tests := []struct {
		name    string
		profits []float64
		want    Run
	}{
		{"empty", nil, Run{}},
		{"wins at tail", []float64{-1, 2, 3}, Run{Kind: RunWin, Length: 2}},
		{"losses at tail", []float64{1, -1, -1, -1}, Run{Kind: RunLoss, Length: 3}},
		{"breakeven ends run", []float64{1, 1, 0}, Run{}},
		{"breakeven before run", []float64{0, -2}, Run{Kind: RunLoss, Length: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trades []models.Trade
			for _, p := range tt.profits {
				trades = append(trades, trade("ES", p))
			}
			assert.Equal(t, tt.want, CurrentRun(trades))
		})
	}
}

func TestLongestRuns(t *testing.T) {
	var trades []models.Trade
	for _, p := range []float64{1, 1, -1, 1, 1, 1, 0, -1, -1} {
		trades = append(trades, trade("ES", p))
	}
	win, loss := LongestRuns(trades)
	assert.Equal(t, 3, win)
	assert.Equal(t, 2, loss)
}
