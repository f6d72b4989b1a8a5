package gamification

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"trade-journal/internal/models"
)

// Property: CalculateLevel is non-decreasing in experience.
func TestProperty_LevelMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("more experience never lowers the level", prop.ForAll(
		func(xp, extra int) bool {
			return CalculateLevel(xp+extra) >= CalculateLevel(xp)
		},
		gen.IntRange(-1000, 10_000_000),
		gen.IntRange(0, 1_000_000),
	))

	properties.Property("the level's threshold is reached and the next is not", prop.ForAll(
		func(xp int) bool {
			level := CalculateLevel(xp)
			return ExperienceForLevel(level) <= xp && xp < ExperienceForLevel(level+1)
		},
		gen.IntRange(0, 10_000_000),
	))

	properties.Property("adding zero experience never changes the level", prop.ForAll(
		func(xp int) bool {
			p := NewProfile(models.User{Experience: xp})
			before := p.Level()
			change := p.AddExperience(0)
			return !change.LeveledUp() && p.Level() == before
		},
		gen.IntRange(0, 10_000_000),
	))

	properties.TestingRun(t)
}

// Property: Longest >= Current after every Update, for any sequence of
// trade gaps and clock steps.
func TestProperty_StreakLongestAtLeastCurrent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("longest >= current", prop.ForAll(
		func(steps []int, weekly bool) bool {
			cadence := CadenceDaily
			if weekly {
				cadence = CadenceWeekly
			}
			now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
			s := NewStreaks()
			s.SetClock(func() time.Time { return now })

			var trades []models.Trade
			for _, step := range steps {
				now = now.Add(time.Duration(step) * time.Hour)
				if step%3 != 0 {
					trades = append(trades, models.Trade{Timestamp: now})
				}
				st, err := s.Update(cadence, trades)
				if err != nil || st.Longest < st.Current || st.Current < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 120)),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
