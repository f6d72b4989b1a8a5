package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/kv"
	"trade-journal/internal/models"
)

var _ DataStore = (*SQLiteStore)(nil)
var _ kv.Store = (*SQLiteStore)(nil)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTrade(id, symbol string, dir models.Direction, entry, exit float64, ts time.Time) models.Trade {
	tr := models.Trade{
		ID:           id,
		Symbol:       symbol,
		Direction:    dir,
		EntryPrice:   entry,
		ExitPrice:    exit,
		PositionSize: 0.01,
		Timestamp:    ts,
		Strategy:     "breakout",
	}
	tr.Recalculate()
	return tr
}

func TestSaveAndGetTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

	tr := sampleTrade("01HX", "AAPL", models.DirectionShort, 180, 175, ts)
	tr.Emotions = []string{"confident", "patient"}
	tr.Screenshots = []string{"chart.png"}
	tr.Notes = "faded the open"
	tr.PlaybookID = "pb-1"
	require.NoError(t, s.SaveTrade(ctx, &tr))

	got, err := s.GetTrade(ctx, "01HX")
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Profit)
	assert.Equal(t, models.OutcomeProfit, got.Outcome)
	assert.Equal(t, []string{"confident", "patient"}, got.Emotions)
	assert.Equal(t, []string{"chart.png"}, got.Screenshots)
	assert.Equal(t, "faded the open", got.Notes)
	assert.Equal(t, "pb-1", got.PlaybookID)
	assert.True(t, got.Timestamp.Equal(ts))

	// Upsert replaces.
	tr.ExitPrice = 185
	tr.Recalculate()
	require.NoError(t, s.SaveTrade(ctx, &tr))
	got, err = s.GetTrade(ctx, "01HX")
	require.NoError(t, err)
	assert.Equal(t, -5.0, got.Profit)
	assert.Equal(t, models.OutcomeLoss, got.Outcome)
}

func TestGetTradeMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetTrade(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTradeNotFound))
}

func TestDeleteTrade(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	tr := sampleTrade("a", "AAPL", models.DirectionLong, 1, 2, time.Now())
	require.NoError(t, s.SaveTrade(ctx, &tr))

	require.NoError(t, s.DeleteTrade(ctx, "a"))
	require.NoError(t, s.DeleteTrade(ctx, "a"))

	trades, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestGetTradesFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }

	trades := []models.Trade{
		sampleTrade("1", "AAPL", models.DirectionLong, 100, 110, day(3)),
		sampleTrade("2", "MSFT", models.DirectionShort, 300, 310, day(1)),
		sampleTrade("3", "AAPL", models.DirectionShort, 120, 100, day(2)),
		sampleTrade("4", "TSLA", models.DirectionLong, 200, 190, day(4)),
	}
	trades[3].Strategy = "reversal"
	for i := range trades {
		require.NoError(t, s.SaveTrade(ctx, &trades[i]))
	}

	all, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(all))

	aapl, err := s.GetTrades(ctx, TradeFilter{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(aapl))

	shorts, err := s.GetTrades(ctx, TradeFilter{Direction: models.DirectionShort})
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3"}, ids(shorts))

	reversal, err := s.GetTrades(ctx, TradeFilter{Strategy: "reversal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"4"}, ids(reversal))

	window, err := s.GetTrades(ctx, TradeFilter{StartDate: day(2), EndDate: day(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(window))

	limited, err := s.GetTrades(ctx, TradeFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids(limited))
}

func TestBackdatedTradeKeepsLogOrderAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	trades := []models.Trade{
		sampleTrade("01A", "ES", models.DirectionLong, 10, 12, now),
		sampleTrade("01C", "ES", models.DirectionLong, 12, 10, now.AddDate(0, 0, -3)),
		sampleTrade("01D", "ES", models.DirectionLong, 10, 11, now.Add(time.Minute)),
	}
	for i := range trades {
		require.NoError(t, s.SaveTrade(ctx, &trades[i]))
	}
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	trades[1].Notes = "fat finger"
	require.NoError(t, s.SaveTrade(ctx, &trades[1]))

	all, err := s.GetTrades(ctx, TradeFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"01A", "01C", "01D"}, ids(all))
}

func TestPlaybooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

	p := models.Playbook{
		ID:             "pb-1",
		Name:           "Opening Range Breakout",
		Category:       "momentum",
		SetupChecklist: []string{"range defined", "volume above average"},
		ExitRules:      []string{"target 2R"},
		Version:        1,
		LastUpdated:    now,
	}
	require.NoError(t, s.SavePlaybook(ctx, &p))

	p.Version = 2
	require.NoError(t, s.SavePlaybook(ctx, &p))

	other := models.Playbook{ID: "pb-2", Name: "Bull Flag", Version: 1, LastUpdated: now}
	require.NoError(t, s.SavePlaybook(ctx, &other))

	list, err := s.GetPlaybooks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bull Flag", list[0].Name)
	assert.Equal(t, 2, list[1].Version)
	assert.Equal(t, []string{"range defined", "volume above average"}, list[1].SetupChecklist)
	assert.Nil(t, list[1].RiskRules)
	assert.True(t, list[1].LastUpdated.Equal(now))

	require.NoError(t, s.DeletePlaybook(ctx, "pb-1"))
	list, err = s.GetPlaybooks(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, "1")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrDataNotFound))

	u := models.User{
		ID:         "1",
		Name:       "Trader",
		Email:      "t@example.com",
		Experience: 1350,
		Badges:     []string{"beginner"},
		Settings:   models.DefaultSettings(),
	}
	u.Settings.Theme = models.ThemeLight
	require.NoError(t, s.SaveUser(ctx, &u))

	got, err := s.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1350, got.Experience)
	assert.Equal(t, []string{"beginner"}, got.Badges)
	assert.Equal(t, models.ThemeLight, got.Settings.Theme)
	assert.True(t, got.Settings.Notifications)
}

func TestKeyValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "unlocked_achievements")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "unlocked_achievements", `["first-trade"]`))
	require.NoError(t, s.Set(ctx, "unlocked_achievements", `["first-trade","winning-streak-3"]`))
	v, ok, err := s.Get(ctx, "unlocked_achievements")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["first-trade","winning-streak-3"]`, v)

	require.NoError(t, s.Remove(ctx, "unlocked_achievements"))
	_, ok, _ = s.Get(ctx, "unlocked_achievements")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "a", "1"))
	tr := sampleTrade("keep", "AAPL", models.DirectionLong, 1, 2, time.Now())
	require.NoError(t, s.SaveTrade(ctx, &tr))
	require.NoError(t, s.Clear(ctx))
	_, ok, _ = s.Get(ctx, "a")
	assert.False(t, ok)

	_, err = s.GetTrade(ctx, "keep")
	assert.NoError(t, err, "clearing the kv table leaves trades alone")
}

func TestClosedStoreReturnsStorageError(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Set(context.Background(), "k", "v")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrStorage))
}

func ids(trades []models.Trade) []string {
	out := make([]string, len(trades))
	for i, tr := range trades {
		out[i] = tr.ID
	}
	return out
}
