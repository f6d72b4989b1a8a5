package achievements

import (
	"fmt"
	"time"

	"trade-journal/internal/models"
)

// RuleKind selects how a Rule is evaluated.
type RuleKind string

const (
	// RuleTradeCount: at least Count trades.
	RuleTradeCount RuleKind = "trade_count"
	// RuleWinningStreak: the last Count trades are all profitable.
	RuleWinningStreak RuleKind = "winning_streak"
	// RuleSizedTrades: at least Count trades risked no more than MaxPositionSize.
	RuleSizedTrades RuleKind = "sized_trades"
	// RuleProfitableMonth: at least Count trades this calendar month with a
	// positive total.
	RuleProfitableMonth RuleKind = "profitable_month"
)

// Rule is the unlock condition of an achievement. Satisfied and Progress
// read the same parameters.
type Rule struct {
	Kind            RuleKind `json:"kind"`
	Count           int      `json:"count"`
	MaxPositionSize float64  `json:"max_position_size,omitempty"`
}

// Satisfied reports whether trades meet the rule. now fixes the current
// month for RuleProfitableMonth.
func (r Rule) Satisfied(trades []models.Trade, now time.Time) bool {
	switch r.Kind {
	case RuleTradeCount:
		return len(trades) >= r.Count
	case RuleWinningStreak:
		if r.Count <= 0 || len(trades) < r.Count {
			return false
		}
		return countWins(trades[len(trades)-r.Count:]) == r.Count
	case RuleSizedTrades:
		return r.sizedCount(trades) >= r.Count
	case RuleProfitableMonth:
		n, profit := monthToDate(trades, now)
		return n >= r.Count && profit > 0
	default:
		panic(fmt.Sprintf("achievements: unknown rule kind %q", r.Kind))
	}
}

// Progress returns completion in [0,100]. It is 100 whenever Satisfied is
// true.
func (r Rule) Progress(trades []models.Trade, now time.Time) float64 {
	switch r.Kind {
	case RuleTradeCount:
		if len(trades) >= r.Count {
			return 100
		}
		return ratio(len(trades), r.Count)
	case RuleWinningStreak:
		n := len(trades)
		if n < r.Count {
			return ratio(n, r.Count)
		}
		wins := countWins(trades[n-r.Count:])
		if wins == r.Count {
			return 100
		}
		return ratio(wins, r.Count)
	case RuleSizedTrades:
		return ratio(r.sizedCount(trades), r.Count)
	case RuleProfitableMonth:
		n, profit := monthToDate(trades, now)
		profitPart := 0.0
		if profit > 0 {
			profitPart = 100
		}
		return (ratio(n, r.Count) + profitPart) / 2
	default:
		return 0
	}
}

func (r Rule) sizedCount(trades []models.Trade) int {
	n := 0
	for _, t := range trades {
		if t.PositionSize <= r.MaxPositionSize {
			n++
		}
	}
	return n
}

func countWins(trades []models.Trade) int {
	n := 0
	for _, t := range trades {
		if t.Profit > 0 {
			n++
		}
	}
	return n
}

// monthToDate counts and sums trades at or after the first instant of now's
// month, in now's location.
func monthToDate(trades []models.Trade, now time.Time) (int, float64) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	n := 0
	total := 0.0
	for _, t := range trades {
		if !t.Timestamp.Before(start) {
			n++
			total += t.Profit
		}
	}
	return n, total
}

// ratio returns part/whole as a percentage capped at 100.
func ratio(part, whole int) float64 {
	if whole <= 0 {
		return 100
	}
	p := float64(part) / float64(whole) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
