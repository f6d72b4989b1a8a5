package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/models"
)

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-50, 0},
		{0, 0},
		{999, 0},
		{1000, 1},
		{2999, 1},
		{3000, 2},
		{5999, 2},
		{6000, 3},
		{500 * 10 * 11, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateLevel(tt.xp), "xp=%d", tt.xp)
	}
}

func TestExperienceForLevel(t *testing.T) {
	assert.Equal(t, 0, ExperienceForLevel(0))
	assert.Equal(t, 1000, ExperienceForLevel(1))
	assert.Equal(t, 3000, ExperienceForLevel(2))
	assert.Equal(t, 6000, ExperienceForLevel(3))

	for n := 0; n < 50; n++ {
		assert.Equal(t, n, CalculateLevel(ExperienceForLevel(n)), "level %d boundary", n)
	}
}

func TestExperienceToNextLevel(t *testing.T) {
	assert.Equal(t, 1000, ExperienceToNextLevel(0))
	assert.Equal(t, 900, ExperienceToNextLevel(100))
	assert.Equal(t, 2000, ExperienceToNextLevel(1000))
	assert.Equal(t, 3000, ExperienceToNextLevel(3000))
	assert.InDelta(t, 50.0, LevelProgress(2000), 1e-9)
}

func TestProfileAddExperience(t *testing.T) {
	p := NewProfile(models.User{ID: "1", Experience: 900})
	assert.Equal(t, 0, p.Level())

	change := p.AddExperience(100)
	assert.True(t, change.LeveledUp())
	assert.Equal(t, LevelChange{From: 0, To: 1, Experience: 1000}, change)

	change = p.AddExperience(0)
	assert.False(t, change.LeveledUp())
	assert.Equal(t, 1000, p.Experience())

	change = p.AddExperience(-500)
	assert.False(t, change.LeveledUp())
	assert.Equal(t, 1000, p.Experience())

	change = p.AddExperience(5000)
	assert.Equal(t, 1, change.From)
	assert.Equal(t, 3, change.To)
}

func TestProfileBadgesIdempotent(t *testing.T) {
	p := NewProfile(models.User{Badges: []string{"beginner", "beginner", ""}})
	assert.Equal(t, []string{"beginner"}, p.User().Badges)

	assert.False(t, p.AddBadge("beginner"))
	assert.True(t, p.AddBadge("streaker"))
	assert.False(t, p.AddBadge("streaker"))
	assert.Equal(t, []string{"beginner", "streaker"}, p.User().Badges)

	assert.True(t, p.RemoveBadge("beginner"))
	assert.False(t, p.RemoveBadge("beginner"))
	assert.Equal(t, []string{"streaker"}, p.SortedBadges())
}

func TestProfileSettings(t *testing.T) {
	p := NewProfile(models.User{})
	assert.Equal(t, models.ThemeDark, p.User().Settings.Theme)

	light := models.ThemeLight
	weekly := models.FeedbackWeekly
	s := p.UpdateSettings(models.SettingsUpdate{Theme: &light, FeedbackFrequency: &weekly})
	assert.Equal(t, models.ThemeLight, s.Theme)
	assert.Equal(t, models.FeedbackWeekly, p.User().Settings.FeedbackFrequency)

	p.UpdateIdentity("Ana", "")
	assert.Equal(t, "Ana", p.User().Name)
}

func TestProfileUserIsCopy(t *testing.T) {
	p := NewProfile(models.User{Badges: []string{"a"}})
	u := p.User()
	u.Badges[0] = "mutated"
	assert.True(t, p.HasBadge("a"))
}

func tradeAt(ts time.Time) models.Trade {
	return models.Trade{ID: ts.String(), Symbol: "X", Direction: models.DirectionLong, Timestamp: ts}
}

func TestStreakDaily(t *testing.T) {
	s := NewStreaks()
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC) // Monday
	s.SetClock(func() time.Time { return now })

	st, err := s.Update(CadenceDaily, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)
	assert.True(t, st.LastUpdated.Equal(now))

	trades := []models.Trade{tradeAt(now.Add(-time.Hour))}
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 1, st.Current)

	// Same day: credited once.
	now = now.Add(3 * time.Hour)
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 1, st.Current)

	// Next day with a trade: grows.
	now = now.Add(24 * time.Hour)
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 2, st.Current)
	assert.Equal(t, 2, st.Longest)

	// Day after, no trade yet: unchanged.
	now = now.Add(24 * time.Hour)
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 2, st.Current)
	assert.True(t, st.LastUpdated.Equal(now))

	// Two days without trading: reset.
	now = now.Add(24 * time.Hour)
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 2, st.Longest)

	// Trade again: restarts at 1.
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 1, st.Current)
	assert.Equal(t, 2, st.Longest)
}

func TestStreakMidnightBoundary(t *testing.T) {
	s := NewStreaks()
	now := time.Date(2024, 5, 6, 23, 50, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	trades := []models.Trade{tradeAt(now)}
	st, _ := s.Update(CadenceDaily, trades)
	assert.Equal(t, 1, st.Current)

	now = now.Add(20 * time.Minute) // 00:10 next day
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceDaily, trades)
	assert.Equal(t, 2, st.Current, "calendar days, not 24h windows")
}

func TestStreakWeekly(t *testing.T) {
	s := NewStreaks()
	now := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC) // Sunday
	s.SetClock(func() time.Time { return now })

	trades := []models.Trade{tradeAt(now)}
	st, _ := s.Update(CadenceWeekly, trades)
	assert.Equal(t, 1, st.Current)

	now = now.Add(24 * time.Hour) // Monday, new week
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceWeekly, trades)
	assert.Equal(t, 2, st.Current)

	now = now.Add(3 * 24 * time.Hour) // same week
	trades = append(trades, tradeAt(now))
	st, _ = s.Update(CadenceWeekly, trades)
	assert.Equal(t, 2, st.Current)

	now = now.Add(21 * 24 * time.Hour)
	st, _ = s.Update(CadenceWeekly, trades)
	assert.Equal(t, 0, st.Current)
}

func TestStreakFutureTradeCountsAsCurrentUnit(t *testing.T) {
	s := NewStreaks()
	now := time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return now })

	st, _ := s.Update(CadenceDaily, []models.Trade{tradeAt(now.Add(72 * time.Hour))})
	assert.Equal(t, 1, st.Current)
}

func TestStreakRejectsMonthly(t *testing.T) {
	_, err := NewStreaks().Update(CadenceMonthly, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
}

func TestStreakLoad(t *testing.T) {
	s := NewStreaks()
	s.Load([]Streak{{Cadence: CadenceWeekly, Current: 4, Longest: 2}})
	st, ok := s.Get(CadenceWeekly)
	require.True(t, ok)
	assert.Equal(t, 4, st.Longest)
	assert.Len(t, s.All(), 1)
}

func TestUnitsBetween(t *testing.T) {
	mon := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, UnitsBetween(CadenceDaily, mon, mon.Add(10*time.Hour)))
	assert.Equal(t, 1, UnitsBetween(CadenceDaily, mon, mon.Add(15*time.Hour)))
	assert.Equal(t, 0, UnitsBetween(CadenceWeekly, mon, mon.Add(6*24*time.Hour)))
	assert.Equal(t, 1, UnitsBetween(CadenceWeekly, mon.Add(-time.Hour*10), mon))
	assert.Equal(t, 0, UnitsBetween(CadenceDaily, mon.Add(time.Hour), mon))
}

func TestDailyStreakCountsCalendarDays(t *testing.T) {
	last := time.Date(2024, 5, 6, 23, 0, 0, 0, time.UTC)
	now := last.Add(26 * time.Hour)
	require.Equal(t, 2, UnitsBetween(CadenceDaily, last, now), "26h across two midnights is two days")

	s := NewStreaks()
	s.SetClock(func() time.Time { return now })
	s.Load([]Streak{{Cadence: CadenceDaily, Current: 5, Longest: 5, LastCredited: last}})

	st, err := s.Update(CadenceDaily, []models.Trade{{Timestamp: last}})
	require.NoError(t, err)
	assert.Equal(t, 0, st.Current)
	assert.Equal(t, 5, st.Longest)
}

func TestChallengesCatalog(t *testing.T) {
	c := NewChallenges()
	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "challenge-1", all[0].ID)
	assert.Equal(t, CadenceWeekly, all[0].Cadence)
	assert.Equal(t, 5, all[0].Target)
	assert.Equal(t, Reward{Type: RewardPoints, Points: 100}, all[0].Reward)
	assert.Equal(t, CadenceMonthly, all[1].Cadence)
	assert.Equal(t, Reward{Type: RewardBadge, Value: "risk-manager"}, all[1].Reward)
	assert.Equal(t, 7, all[2].Target)
}

func TestChallengeSetProgress(t *testing.T) {
	c := NewChallenges()

	ch, reward, err := c.SetProgress("challenge-1", 3)
	require.NoError(t, err)
	assert.False(t, ch.Completed)
	assert.Nil(t, reward)
	assert.InDelta(t, 60.0, ch.Percent(), 1e-9)

	ch, reward, err = c.SetProgress("challenge-1", 5)
	require.NoError(t, err)
	assert.True(t, ch.Completed)
	require.NotNil(t, reward)
	assert.Equal(t, 100, reward.Points)

	ch, reward, err = c.SetProgress("challenge-1", 7)
	require.NoError(t, err)
	assert.True(t, ch.Completed)
	assert.Nil(t, reward, "reward is granted once")
	assert.Equal(t, 100.0, ch.Percent())

	ch, _, err = c.SetProgress("challenge-1", 1)
	require.NoError(t, err)
	assert.False(t, ch.Completed, "completed tracks progress >= target")

	_, _, err = c.SetProgress("challenge-9", 1)
	assert.True(t, apperrors.Is(err, apperrors.ErrChallengeNotFound))

	_, _, err = c.SetProgress("challenge-1", -1)
	assert.True(t, apperrors.Is(err, apperrors.ErrInputValidation))
}

func TestChallengesLoad(t *testing.T) {
	c := NewChallenges()
	c.Load([]Challenge{
		{ID: "challenge-2", Progress: 12, Rewarded: true, Target: 1},
		{ID: "unknown", Progress: 3},
	})

	ch, ok := c.Get("challenge-2")
	require.True(t, ok)
	assert.Equal(t, 10, ch.Target, "catalog definition wins")
	assert.True(t, ch.Completed)

	_, reward, err := c.SetProgress("challenge-2", 15)
	require.NoError(t, err)
	assert.Nil(t, reward)

	_, ok = c.Get("unknown")
	assert.False(t, ok)
}
