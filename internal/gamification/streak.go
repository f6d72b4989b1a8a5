package gamification

import (
	"math"
	"time"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

// Cadence is the recurrence unit of a streak or challenge.
type Cadence string

const (
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Streak counts consecutive cadence units with at least one trade.
type Streak struct {
	Cadence      Cadence   `json:"cadence"`
	Current      int       `json:"current"`
	Longest      int       `json:"longest"`
	LastUpdated  time.Time `json:"last_updated"`
	LastCredited time.Time `json:"last_credited,omitempty"`
}

// Streaks holds one streak per cadence, created on first update.
type Streaks struct {
	items map[Cadence]*Streak
	now   func() time.Time
}

// NewStreaks creates an empty set.
func NewStreaks() *Streaks {
	return &Streaks{items: make(map[Cadence]*Streak), now: time.Now}
}

// SetClock replaces the clock.
func (s *Streaks) SetClock(now func() time.Time) {
	s.now = now
}

// Load restores previously saved streaks.
func (s *Streaks) Load(streaks []Streak) {
	s.items = make(map[Cadence]*Streak, len(streaks))
	for _, st := range streaks {
		st := st
		if st.Longest < st.Current {
			st.Longest = st.Current
		}
		s.items[st.Cadence] = &st
	}
}

// Update re-evaluates the cadence streak against the last trade in trades.
//
// The gap is measured in whole calendar units (days, or Monday-started
// weeks) between the last trade and now. A trade in the current unit credits
// the streak once per unit: it grows if the previous credit was in the
// previous unit and restarts at 1 otherwise. A gap of one unit leaves the
// streak as is; a longer gap resets it to 0.
func (s *Streaks) Update(cadence Cadence, trades []models.Trade) (Streak, error) {
	if cadence != CadenceDaily && cadence != CadenceWeekly {
		return Streak{}, apperrors.NewValidationError("cadence", cadence, "streaks are daily or weekly")
	}

	now := s.now()
	st, ok := s.items[cadence]
	if !ok {
		st = &Streak{Cadence: cadence, LastUpdated: now}
		s.items[cadence] = st
	}

	if len(trades) > 0 {
		last := trades[len(trades)-1].Timestamp
		switch diff := UnitsBetween(cadence, last, now); {
		case diff == 0:
			s.credit(st, now)
		case diff > 1:
			st.Current = 0
		}
	}

	st.LastUpdated = now
	return *st, nil
}

func (s *Streaks) credit(st *Streak, now time.Time) {
	if !st.LastCredited.IsZero() {
		switch UnitsBetween(st.Cadence, st.LastCredited, now) {
		case 0:
			return
		case 1:
			st.Current++
		default:
			st.Current = 1
		}
	} else {
		st.Current = 1
	}
	st.LastCredited = now
	if st.Current > st.Longest {
		st.Longest = st.Current
	}
}

// Get returns the streak for cadence.
func (s *Streaks) Get(cadence Cadence) (Streak, bool) {
	st, ok := s.items[cadence]
	if !ok {
		return Streak{}, false
	}
	return *st, true
}

// All returns the known streaks, daily first.
func (s *Streaks) All() []Streak {
	var out []Streak
	for _, c := range []Cadence{CadenceDaily, CadenceWeekly} {
		if st, ok := s.items[c]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// UnitsBetween returns the number of whole calendar units from from to to,
// in to's location. A from after to counts as 0.
func UnitsBetween(cadence Cadence, from, to time.Time) int {
	if from.After(to) {
		return 0
	}
	loc := to.Location()
	start := startOfDay(from.In(loc))
	end := startOfDay(to)
	if cadence == CadenceWeekly {
		start = startOfWeek(start)
		end = startOfWeek(end)
	}
	days := int(math.Round(end.Sub(start).Hours() / 24))
	if cadence == CadenceWeekly {
		return days / 7
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
