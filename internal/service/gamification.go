package service

import (
	"context"
	"fmt"

	"trade-journal/internal/achievements"
	apperrors "trade-journal/internal/errors"
	"trade-journal/internal/gamification"
	"trade-journal/internal/logging"
	"trade-journal/internal/models"
	"trade-journal/internal/notify"
)

// ProfileView is the profile with its derived progression figures.
type ProfileView struct {
	models.User
	ExperienceToNext int     `json:"experience_to_next_level"`
	LevelProgress    float64 `json:"level_progress"`
}

// Achievements returns every achievement with its unlock state and progress.
func (j *Journal) Achievements() []achievements.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.engine.Statuses(j.allTrades())
}

// Achievement returns one achievement's status.
func (j *Journal) Achievement(id string) (achievements.Status, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	a, ok := j.engine.ByID(id)
	if !ok {
		return achievements.Status{}, apperrors.AchievementNotFound(id)
	}
	s := achievements.Status{Achievement: a, Unlocked: j.engine.IsUnlocked(id), Progress: 100}
	if !s.Unlocked {
		s.Progress = j.engine.Progress(id, j.allTrades())
	}
	return s, nil
}

// Profile returns the profile view.
func (j *Journal) Profile() ProfileView {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.profileView()
}

func (j *Journal) profileView() ProfileView {
	u := j.profile.User()
	u.Badges = j.profile.SortedBadges()
	return ProfileView{
		User:             u,
		ExperienceToNext: gamification.ExperienceToNextLevel(u.Experience),
		LevelProgress:    gamification.LevelProgress(u.Experience),
	}
}

// AddExperience grants amount XP and announces a level-up.
func (j *Journal) AddExperience(ctx context.Context, amount int) gamification.LevelChange {
	j.mu.Lock()
	defer j.mu.Unlock()

	change := j.grantExperience(ctx, amount)
	j.persist(ctx)
	return change
}

func (j *Journal) grantExperience(ctx context.Context, amount int) gamification.LevelChange {
	change := j.profile.AddExperience(amount)
	if change.LeveledUp() {
		logging.LogLevelUp(j.logger, change.From, change.To, change.Experience)
		j.send(ctx, notify.LevelUp(change.To, gamification.ExperienceToNextLevel(change.Experience)))
	}
	return change
}

// AddBadge grants a badge. It reports false if the badge was already held.
func (j *Journal) AddBadge(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, apperrors.NewValidationError("badge", name, "badge name is required")
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	added := j.profile.AddBadge(name)
	if added {
		j.persist(ctx)
	}
	return added, nil
}

// RemoveBadge revokes a badge. It reports false if the badge was not held.
func (j *Journal) RemoveBadge(ctx context.Context, name string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	removed := j.profile.RemoveBadge(name)
	if removed {
		j.persist(ctx)
	}
	return removed
}

// UpdateSettings merges u into the profile settings.
func (j *Journal) UpdateSettings(ctx context.Context, u models.SettingsUpdate) (models.UserSettings, error) {
	if err := validateSettings(u); err != nil {
		return models.UserSettings{}, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	if u.DefaultPlaybook != nil && *u.DefaultPlaybook != "" {
		if _, ok := j.playbooks.Get(*u.DefaultPlaybook); !ok {
			return models.UserSettings{}, apperrors.PlaybookNotFound(*u.DefaultPlaybook)
		}
	}
	s := j.profile.UpdateSettings(u)
	j.persist(ctx)
	return s, nil
}

func validateSettings(u models.SettingsUpdate) error {
	if u.Theme != nil && *u.Theme != models.ThemeLight && *u.Theme != models.ThemeDark {
		return apperrors.NewValidationError("theme", *u.Theme, "theme must be light or dark")
	}
	if u.FeedbackFrequency != nil {
		switch *u.FeedbackFrequency {
		case models.FeedbackImmediate, models.FeedbackDaily, models.FeedbackWeekly:
		default:
			return apperrors.NewValidationError("feedback_frequency", *u.FeedbackFrequency,
				"feedback frequency must be immediate, daily or weekly")
		}
	}
	return nil
}

// UpdateIdentity changes the profile name and email. Empty values are kept.
func (j *Journal) UpdateIdentity(ctx context.Context, name, email string) ProfileView {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.profile.UpdateIdentity(name, email)
	j.persist(ctx)
	return j.profileView()
}

// Streaks refreshes and returns the daily and weekly streaks.
func (j *Journal) Streaks(ctx context.Context) []gamification.Streak {
	j.mu.Lock()
	defer j.mu.Unlock()

	streaks := j.refreshStreaks()
	j.saveJSON(ctx, StreaksKey, streaks)
	return streaks
}

// Challenges returns the challenges with their progress.
func (j *Journal) Challenges() []gamification.Challenge {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.challenges.All()
}

// SetChallengeProgress records progress on a challenge. The reward is granted
// the first time the challenge completes.
func (j *Journal) SetChallengeProgress(ctx context.Context, id string, value int) (gamification.Challenge, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	ch, reward, err := j.challenges.SetProgress(id, value)
	if err != nil {
		return gamification.Challenge{}, err
	}
	if reward != nil {
		j.grantReward(ctx, ch, *reward)
	}
	j.persist(ctx)
	return ch, nil
}

func (j *Journal) grantReward(ctx context.Context, ch gamification.Challenge, r gamification.Reward) {
	log := j.logger.Info().Str("challenge", ch.ID).Str("reward", string(r.Type))
	var desc string
	switch r.Type {
	case gamification.RewardPoints:
		j.grantExperience(ctx, r.Points)
		desc = fmt.Sprintf("%d XP", r.Points)
		log = log.Int("xp", r.Points)
	case gamification.RewardBadge:
		j.profile.AddBadge(r.Value)
		desc = fmt.Sprintf("badge %q", r.Value)
		log = log.Str("badge", r.Value)
	default:
		desc = fmt.Sprintf("feature %q", r.Value)
		log = log.Str("feature", r.Value)
	}
	log.Msg("Challenge completed")
	j.send(ctx, notify.Success(fmt.Sprintf("Challenge completed: %s! Reward: %s", ch.Title, desc)))
}
