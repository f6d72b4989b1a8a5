// Package journal owns the trade and playbook collections.
package journal

import (
	"context"
	"math"
	"strings"
	"time"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Recorder persists trades as they change. A recorder error aborts the
// mutation.
type Recorder interface {
	SaveTrade(ctx context.Context, trade *models.Trade) error
	DeleteTrade(ctx context.Context, id string) error
}

// ChangeFunc observes the full collection after every add or update.
type ChangeFunc func(ctx context.Context, trades []models.Trade)

// TradeBook holds the ordered trade collection, newest last.
type TradeBook struct {
	trades   []models.Trade
	recorder Recorder
	hooks    []ChangeFunc
	now      func() time.Time
	newID    func() string
}

// NewTradeBook creates an empty book. recorder may be nil.
func NewTradeBook(recorder Recorder) *TradeBook {
	return &TradeBook{
		recorder: recorder,
		now:      time.Now,
		newID:    NewTradeID,
	}
}

// SetClock replaces the clock used for default timestamps.
func (b *TradeBook) SetClock(now func() time.Time) {
	b.now = now
}

// OnChange registers an observer for successful adds and updates.
func (b *TradeBook) OnChange(fn ChangeFunc) {
	b.hooks = append(b.hooks, fn)
}

// Load replaces the collection without firing observers.
func (b *TradeBook) Load(trades []models.Trade) {
	b.trades = make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		b.trades = append(b.trades, t.Clone())
	}
}

// Add validates in, assigns an id, derives profit and outcome, and appends
// the trade.
func (b *TradeBook) Add(ctx context.Context, in models.TradeInput) (models.Trade, error) {
	t := models.Trade{
		ID:           b.newID(),
		Symbol:       strings.ToUpper(strings.TrimSpace(in.Symbol)),
		Direction:    in.Direction,
		EntryPrice:   in.EntryPrice,
		ExitPrice:    in.ExitPrice,
		StopLoss:     in.StopLoss,
		TakeProfit:   in.TakeProfit,
		PositionSize: in.PositionSize,
		Timestamp:    in.Timestamp,
		Strategy:     strings.TrimSpace(in.Strategy),
		Emotions:     append([]string(nil), in.Emotions...),
		Notes:        in.Notes,
		Screenshots:  append([]string(nil), in.Screenshots...),
		PlaybookID:   in.PlaybookID,
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = b.now()
	}
	if err := ValidateTrade(t); err != nil {
		return models.Trade{}, err
	}
	t.Recalculate()

	if b.recorder != nil {
		if err := b.recorder.SaveTrade(ctx, &t); err != nil {
			return models.Trade{}, apperrors.Wrap(err, "recording trade")
		}
	}

	b.trades = append(b.trades, t)
	b.changed(ctx)
	return t.Clone(), nil
}

// Update merges u into the trade with the given id. Derived fields are
// recomputed when the direction or a price changed.
func (b *TradeBook) Update(ctx context.Context, id string, u models.TradeUpdate) (models.Trade, error) {
	idx := b.index(id)
	if idx < 0 {
		return models.Trade{}, apperrors.TradeNotFound(id)
	}

	t := b.trades[idx].Clone()
	u.Apply(&t)
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	if err := ValidateTrade(t); err != nil {
		return models.Trade{}, err
	}
	if u.AffectsProfit() {
		t.Recalculate()
	}

	if b.recorder != nil {
		if err := b.recorder.SaveTrade(ctx, &t); err != nil {
			return models.Trade{}, apperrors.Wrap(err, "recording trade")
		}
	}

	b.trades[idx] = t
	b.changed(ctx)
	return t.Clone(), nil
}

// Delete removes the trade with the given id. A missing id returns
// ErrTradeNotFound, which callers may ignore.
func (b *TradeBook) Delete(ctx context.Context, id string) error {
	idx := b.index(id)
	if idx < 0 {
		return apperrors.TradeNotFound(id)
	}

	if b.recorder != nil {
		if err := b.recorder.DeleteTrade(ctx, id); err != nil {
			return apperrors.Wrap(err, "deleting trade")
		}
	}

	b.trades = append(b.trades[:idx], b.trades[idx+1:]...)
	return nil
}

// Get returns the trade with the given id.
func (b *TradeBook) Get(id string) (models.Trade, bool) {
	idx := b.index(id)
	if idx < 0 {
		return models.Trade{}, false
	}
	return b.trades[idx].Clone(), true
}

// All returns a copy of the collection in logging order.
func (b *TradeBook) All() []models.Trade {
	out := make([]models.Trade, len(b.trades))
	for i, t := range b.trades {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of trades.
func (b *TradeBook) Len() int {
	return len(b.trades)
}

func (b *TradeBook) index(id string) int {
	for i := range b.trades {
		if b.trades[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *TradeBook) changed(ctx context.Context) {
	if len(b.hooks) == 0 {
		return
	}
	snapshot := b.All()
	for _, fn := range b.hooks {
		fn(ctx, snapshot)
	}
}

// ValidateTrade checks the fields a user supplies.
func ValidateTrade(t models.Trade) error {
	if t.Symbol == "" {
		return apperrors.NewValidationError("symbol", t.Symbol, "symbol is required")
	}
	if !t.Direction.Valid() {
		return apperrors.NewValidationError("direction", t.Direction, "must be long or short")
	}
	if invalidPrice(t.EntryPrice) {
		return apperrors.NewValidationError("entry_price", t.EntryPrice, "must be a non-negative number")
	}
	if invalidPrice(t.ExitPrice) {
		return apperrors.NewValidationError("exit_price", t.ExitPrice, "must be a non-negative number")
	}
	if invalidPrice(t.StopLoss) {
		return apperrors.NewValidationError("stop_loss", t.StopLoss, "must be a non-negative number")
	}
	if invalidPrice(t.TakeProfit) {
		return apperrors.NewValidationError("take_profit", t.TakeProfit, "must be a non-negative number")
	}
	if math.IsNaN(t.PositionSize) || t.PositionSize < 0 || t.PositionSize > 1 {
		return apperrors.NewValidationError("position_size", t.PositionSize, "must be a fraction between 0 and 1")
	}
	return nil
}

func invalidPrice(p float64) bool {
	return math.IsNaN(p) || math.IsInf(p, 0) || p < 0
}
