// Package stats computes performance figures over the trade history.
package stats

import (
	"fmt"
	"sort"
	"time"

	"trade-journal/internal/models"
)

// Summary holds aggregate performance over a set of trades. GrossLoss,
// AverageLoss and LargestLoss are negative or zero.
type Summary struct {
	TotalTrades  int     `json:"total_trades" yaml:"total_trades"`
	Wins         int     `json:"wins" yaml:"wins"`
	Losses       int     `json:"losses" yaml:"losses"`
	WinRate      float64 `json:"win_rate" yaml:"win_rate"`
	GrossProfit  float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss" yaml:"gross_loss"`
	NetProfit    float64 `json:"net_profit" yaml:"net_profit"`
	ProfitFactor float64 `json:"profit_factor" yaml:"profit_factor"`
	AverageWin   float64 `json:"average_win" yaml:"average_win"`
	AverageLoss  float64 `json:"average_loss" yaml:"average_loss"`
	LargestWin   float64 `json:"largest_win" yaml:"largest_win"`
	LargestLoss  float64 `json:"largest_loss" yaml:"largest_loss"`
	Expectancy   float64 `json:"expectancy" yaml:"expectancy"`
}

// Summarize aggregates trades. Zero-profit trades count toward the total
// only.
func Summarize(trades []models.Trade) Summary {
	var s Summary
	s.TotalTrades = len(trades)
	for _, t := range trades {
		switch {
		case t.Profit > 0:
			s.Wins++
			s.GrossProfit += t.Profit
			if t.Profit > s.LargestWin {
				s.LargestWin = t.Profit
			}
		case t.Profit < 0:
			s.Losses++
			s.GrossLoss += t.Profit
			if t.Profit < s.LargestLoss {
				s.LargestLoss = t.Profit
			}
		}
	}

	s.NetProfit = s.GrossProfit + s.GrossLoss
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
		s.Expectancy = s.NetProfit / float64(s.TotalTrades)
	}
	if s.Wins > 0 {
		s.AverageWin = s.GrossProfit / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AverageLoss = s.GrossLoss / float64(s.Losses)
	}
	if s.GrossLoss != 0 {
		s.ProfitFactor = s.GrossProfit / -s.GrossLoss
	}
	return s
}

// GroupKey selects the trade attribute a breakdown groups by.
type GroupKey string

const (
	BySymbol    GroupKey = "symbol"
	ByStrategy  GroupKey = "strategy"
	ByEmotion   GroupKey = "emotion"
	ByDirection GroupKey = "direction"
)

// Unlabeled groups trades with no strategy.
const Unlabeled = "Unspecified"

// ParseGroupKey validates a breakdown key.
func ParseGroupKey(s string) (GroupKey, error) {
	switch k := GroupKey(s); k {
	case BySymbol, ByStrategy, ByEmotion, ByDirection:
		return k, nil
	}
	return "", fmt.Errorf("unknown breakdown %q (want symbol, strategy, emotion or direction)", s)
}

// Group is one row of a breakdown.
type Group struct {
	Key       string  `json:"key" yaml:"key"`
	Trades    int     `json:"trades" yaml:"trades"`
	Wins      int     `json:"wins" yaml:"wins"`
	NetProfit float64 `json:"net_profit" yaml:"net_profit"`
	WinRate   float64 `json:"win_rate" yaml:"win_rate"`
}

// GroupBy breaks trades down by key, best net profit first. With ByEmotion a
// trade counts once per tag and untagged trades are skipped.
func GroupBy(trades []models.Trade, key GroupKey) []Group {
	groups := make(map[string]*Group)
	add := func(label string, t models.Trade) {
		g, ok := groups[label]
		if !ok {
			g = &Group{Key: label}
			groups[label] = g
		}
		g.Trades++
		g.NetProfit += t.Profit
		if t.IsWin() {
			g.Wins++
		}
	}

	for _, t := range trades {
		switch key {
		case BySymbol:
			add(t.Symbol, t)
		case ByStrategy:
			label := t.Strategy
			if label == "" {
				label = Unlabeled
			}
			add(label, t)
		case ByDirection:
			add(string(t.Direction), t)
		case ByEmotion:
			seen := make(map[string]bool, len(t.Emotions))
			for _, e := range t.Emotions {
				if e == "" || seen[e] {
					continue
				}
				seen[e] = true
				add(e, t)
			}
		}
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		g.WinRate = float64(g.Wins) / float64(g.Trades) * 100
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NetProfit != out[j].NetProfit {
			return out[i].NetProfit > out[j].NetProfit
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Day is one calendar cell.
type Day struct {
	Date      time.Time `json:"date" yaml:"date"`
	Trades    int       `json:"trades" yaml:"trades"`
	Wins      int       `json:"wins" yaml:"wins"`
	NetProfit float64   `json:"net_profit" yaml:"net_profit"`
}

// Calendar returns one entry per day of the month, in loc. Days without
// trades are included with zero counts.
func Calendar(trades []models.Trade, year int, month time.Month, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	days := first.AddDate(0, 1, -1).Day()

	out := make([]Day, days)
	for i := range out {
		out[i].Date = first.AddDate(0, 0, i)
	}
	for _, t := range trades {
		ts := t.Timestamp.In(loc)
		if ts.Year() != year || ts.Month() != month {
			continue
		}
		d := &out[ts.Day()-1]
		d.Trades++
		d.NetProfit += t.Profit
		if t.IsWin() {
			d.Wins++
		}
	}
	return out
}

// RunKind labels a run of consecutive results.
type RunKind string

const (
	RunNone RunKind = ""
	RunWin  RunKind = "win"
	RunLoss RunKind = "loss"
)

// Run is a sequence of consecutive wins or losses.
type Run struct {
	Kind   RunKind `json:"kind" yaml:"kind"`
	Length int     `json:"length" yaml:"length"`
}

// CurrentRun returns the run at the end of trades, which are expected in
// insertion order. A zero-profit trade ends any run.
func CurrentRun(trades []models.Trade) Run {
	var r Run
	for i := len(trades) - 1; i >= 0; i-- {
		k := kindOf(trades[i])
		if k == RunNone {
			break
		}
		if r.Kind == RunNone {
			r.Kind = k
		} else if k != r.Kind {
			break
		}
		r.Length++
	}
	return r
}

// LongestRuns returns the longest win and loss runs anywhere in trades.
func LongestRuns(trades []models.Trade) (win, loss int) {
	var cur Run
	for _, t := range trades {
		k := kindOf(t)
		if k == cur.Kind && k != RunNone {
			cur.Length++
		} else {
			cur = Run{Kind: k, Length: 1}
		}
		switch cur.Kind {
		case RunWin:
			win = max(win, cur.Length)
		case RunLoss:
			loss = max(loss, cur.Length)
		}
	}
	return win, loss
}

func kindOf(t models.Trade) RunKind {
	switch {
	case t.Profit > 0:
		return RunWin
	case t.Profit < 0:
		return RunLoss
	}
	return RunNone
}
