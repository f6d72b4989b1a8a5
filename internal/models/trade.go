package models

import "time"

// Direction is the side of a trade.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionLong || d == DirectionShort
}

// Outcome classifies a closed trade.
type Outcome string

const (
	OutcomeProfit Outcome = "profit"
	OutcomeLoss   Outcome = "loss"
)

// Trade represents one logged, closed trade.
type Trade struct {
	ID            string    `json:"id" yaml:"id"`
	Symbol        string    `json:"symbol" yaml:"symbol"`
	Direction     Direction `json:"direction" yaml:"direction"`
	EntryPrice    float64   `json:"entry_price" yaml:"entry_price"`
	ExitPrice     float64   `json:"exit_price" yaml:"exit_price"`
	StopLoss      float64   `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"`
	TakeProfit    float64   `json:"take_profit,omitempty" yaml:"take_profit,omitempty"`
	Profit        float64   `json:"profit" yaml:"profit"`
	ProfitPercent float64   `json:"profit_percent" yaml:"profit_percent"`
	Outcome       Outcome   `json:"outcome" yaml:"outcome"`
	PositionSize  float64   `json:"position_size" yaml:"position_size"` // fraction of account risked
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Strategy      string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Emotions      []string  `json:"emotions,omitempty" yaml:"emotions,omitempty"`
	Notes         string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Screenshots   []string  `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
	PlaybookID    string    `json:"playbook_id,omitempty" yaml:"playbook_id,omitempty"`
}

// IsWin reports whether the trade closed with a positive profit.
func (t Trade) IsWin() bool {
	return t.Profit > 0
}

// Recalculate derives Profit, ProfitPercent and Outcome from the direction
// and the entry/exit prices.
func (t *Trade) Recalculate() {
	t.Profit = CalculateProfit(t.Direction, t.EntryPrice, t.ExitPrice)
	t.ProfitPercent = 0
	if t.EntryPrice != 0 {
		t.ProfitPercent = t.Profit / t.EntryPrice * 100
	}
	t.Outcome = OutcomeProfit
	if t.Profit < 0 {
		t.Outcome = OutcomeLoss
	}
}

// Clone returns a deep copy of the trade.
func (t Trade) Clone() Trade {
	c := t
	if t.Emotions != nil {
		c.Emotions = append([]string(nil), t.Emotions...)
	}
	if t.Screenshots != nil {
		c.Screenshots = append([]string(nil), t.Screenshots...)
	}
	return c
}

// CalculateProfit returns the signed per-unit profit of a trade.
func CalculateProfit(dir Direction, entry, exit float64) float64 {
	if dir == DirectionShort {
		return entry - exit
	}
	return exit - entry
}

// TradeInput holds the fields supplied when a trade is logged.
type TradeInput struct {
	Symbol       string    `json:"symbol" yaml:"symbol"`
	Direction    Direction `json:"direction" yaml:"direction"`
	EntryPrice   float64   `json:"entry_price" yaml:"entry_price"`
	ExitPrice    float64   `json:"exit_price" yaml:"exit_price"`
	StopLoss     float64   `json:"stop_loss,omitempty" yaml:"stop_loss,omitempty"`
	TakeProfit   float64   `json:"take_profit,omitempty" yaml:"take_profit,omitempty"`
	PositionSize float64   `json:"position_size" yaml:"position_size"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Strategy     string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Emotions     []string  `json:"emotions,omitempty" yaml:"emotions,omitempty"`
	Notes        string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	Screenshots  []string  `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
	PlaybookID   string    `json:"playbook_id,omitempty" yaml:"playbook_id,omitempty"`
}

// TradeUpdate is a partial trade edit. Nil fields are left untouched.
type TradeUpdate struct {
	Symbol       *string    `json:"symbol,omitempty"`
	Direction    *Direction `json:"direction,omitempty"`
	EntryPrice   *float64   `json:"entry_price,omitempty"`
	ExitPrice    *float64   `json:"exit_price,omitempty"`
	StopLoss     *float64   `json:"stop_loss,omitempty"`
	TakeProfit   *float64   `json:"take_profit,omitempty"`
	PositionSize *float64   `json:"position_size,omitempty"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	Strategy     *string    `json:"strategy,omitempty"`
	Emotions     []string   `json:"emotions,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
	Screenshots  []string   `json:"screenshots,omitempty"`
	PlaybookID   *string    `json:"playbook_id,omitempty"`
}

// AffectsProfit reports whether applying u requires the derived fields to be
// recomputed.
func (u TradeUpdate) AffectsProfit() bool {
	return u.EntryPrice != nil || u.ExitPrice != nil || u.Direction != nil
}

// Apply merges u into t. Derived fields are not touched.
func (u TradeUpdate) Apply(t *Trade) {
	if u.Symbol != nil {
		t.Symbol = *u.Symbol
	}
	if u.Direction != nil {
		t.Direction = *u.Direction
	}
	if u.EntryPrice != nil {
		t.EntryPrice = *u.EntryPrice
	}
	if u.ExitPrice != nil {
		t.ExitPrice = *u.ExitPrice
	}
	if u.StopLoss != nil {
		t.StopLoss = *u.StopLoss
	}
	if u.TakeProfit != nil {
		t.TakeProfit = *u.TakeProfit
	}
	if u.PositionSize != nil {
		t.PositionSize = *u.PositionSize
	}
	if u.Timestamp != nil {
		t.Timestamp = *u.Timestamp
	}
	if u.Strategy != nil {
		t.Strategy = *u.Strategy
	}
	if u.Emotions != nil {
		t.Emotions = append([]string(nil), u.Emotions...)
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Screenshots != nil {
		t.Screenshots = append([]string(nil), u.Screenshots...)
	}
	if u.PlaybookID != nil {
		t.PlaybookID = *u.PlaybookID
	}
}
